package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/infras/metrics"
	"cafebook/infras/otel"
	"cafebook/internal/domains/reservation/model"
	"cafebook/internal/domains/reservation/model/dto"
	"cafebook/internal/domains/reservation/repository"
	"cafebook/internal/notifier"
	"cafebook/shared"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/shared/timeslot"
	"cafebook/shared/timezone"
)

// Reservation is the engine every front end goes through. Each call reads
// the store afresh; row positions from one call are never trusted by the next.
type Reservation interface {
	CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	Reserve(ctx context.Context, req dto.ReserveRequest, ownerID string) (model.Reservation, error)
	AddParticipants(ctx context.Context, req dto.ParticipantsRequest, callerID string) (model.Reservation, error)
	FindReservations(ctx context.Context, req dto.FindRequest) ([]model.Reservation, error)
	Cancel(ctx context.Context, req dto.SlotRequest, callerID string) (model.Reservation, error)
	RecentReservations(ctx context.Context, limit int) ([]model.Reservation, error)
	MarkReminded(ctx context.Context, reservation model.Reservation) error
}

type serviceImpl struct {
	repo     repository.Reservation
	notifier notifier.Notifier
	cfg      *config.Config
	otel     otel.Otel
	now      func() time.Time
}

func New(repo repository.Reservation, notify notifier.Notifier, cfg *config.Config, otel otel.Otel) Reservation {
	return NewWithClock(repo, notify, cfg, otel, timezone.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(repo repository.Reservation, notify notifier.Notifier, cfg *config.Config, otel otel.Otel, now func() time.Time) Reservation {
	return &serviceImpl{
		repo:     repo,
		notifier: notify,
		cfg:      cfg,
		otel:     otel,
		now:      now,
	}
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	resources, date, slot, err := req.ToQuery()
	if err != nil {
		return res, err
	}

	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations for availability")

		return res, fmt.Errorf("failed to check availability: %w", err)
	}

	sameDay := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Date == date {
			sameDay = append(sameDay, r)
		}
	}

	res = dto.AvailabilityResponse{
		Date:      date.String(),
		StartTime: slot.Start.String(),
		EndTime:   slot.End.String(),
		Available: make([]string, 0, len(resources)),
	}

	for _, resource := range resources {
		if !blocked(sameDay, resource, date, slot) {
			res.Available = append(res.Available, resource)
		}
	}

	scope.SetAttributes(map[string]any{
		"reservation.candidates": len(resources),
		"reservation.available":  len(res.Available),
	})

	return res, nil
}

func (s *serviceImpl) Reserve(ctx context.Context, req dto.ReserveRequest, ownerID string) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reserve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if ownerID == "" {
		return res, failure.Unauthorized("owner is required to reserve")
	}

	resource, date, slot, err := req.ToSlot()
	if err != nil {
		return res, err
	}

	// Re-read immediately before the append to keep the race window small.
	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations before reserve")

		return res, fmt.Errorf("failed to reserve: %w", err)
	}

	if blocked(existing, resource, date, slot) {
		metrics.ReservationConflicts.Inc()

		return res, failure.SlotTaken(fmt.Sprintf("%s is already reserved on %s within %s", resource, date, slot))
	}

	display := req.ReserverDisplay
	if display == "" {
		display, _ = ctx.Value(constant.ContextKeyUserName).(string)
	}

	if display == "" {
		display = ownerID
	}

	res = model.Reservation{
		ReserverDisplay: display,
		ResourceName:    resource,
		Date:            date,
		Slot:            slot,
		OwnerID:         ownerID,
		CreatedAt:       s.now().Truncate(time.Second),
		Participants:    []model.Participant{},
	}

	res.Row, err = s.repo.Insert(ctx, res)

	switch {
	case errors.Is(err, failure.ErrIndexUnknown):
		res.Row = s.locate(ctx, res)
	case err != nil:
		log.Error().Err(err).Msg("failed to append reservation")

		return model.Reservation{}, fmt.Errorf("failed to reserve: %w", err)
	}

	metrics.ReservationsCreated.Inc()
	scope.SetAttribute("reservation.row", res.Row)

	s.announce(ctx, res)

	return res, nil
}

// locate finds a just-appended reservation by its full content. It returns
// 0 when the row cannot be found; the reservation still exists.
func (s *serviceImpl) locate(ctx context.Context, created model.Reservation) int {
	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reservation appended but re-fetch failed, row unknown")

		return 0
	}

	for _, r := range reservations {
		if r.OwnerID == created.OwnerID &&
			r.SameSlot(created.ResourceName, created.Date, created.Slot) &&
			r.CreatedAt.Equal(created.CreatedAt) {
			return r.Row
		}
	}

	log.Warn().
		Str("resource", created.ResourceName).
		Str("date", created.Date.String()).
		Str("slot", created.Slot.String()).
		Msg("reservation appended but not found on re-fetch, row unknown")

	return 0
}

func (s *serviceImpl) announce(ctx context.Context, r model.Reservation) {
	channel := s.cfg.Reservation.AnnounceChannel
	if channel == "" {
		return
	}

	text := fmt.Sprintf("%s reserved %s on %s %s", r.ReserverDisplay, r.ResourceName, r.Date, r.Slot)

	if err := s.notifier.Send(ctx, channel, text); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to announce reservation")
	}
}

func (s *serviceImpl) AddParticipants(ctx context.Context, req dto.ParticipantsRequest, callerID string) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AddParticipants")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	resource, date, slot, err := req.ToSlot()
	if err != nil {
		return res, err
	}

	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations before adding participants")

		return res, fmt.Errorf("failed to add participants: %w", err)
	}

	res, err = resolveOwned(reservations, req.Row, resource, date, slot, callerID)
	if err != nil {
		return model.Reservation{}, err
	}

	res.Participants = req.ToParticipants(res.OwnerID)

	if len(req.Participants) > len(res.Participants) {
		log.Debug().
			Int("requested", len(req.Participants)).
			Int("kept", len(res.Participants)).
			Msg("participants trimmed")
	}

	if err = s.repo.UpdateParticipants(ctx, res.Row, res.Participants); err != nil {
		log.Error().Err(err).Int("row", res.Row).Msg("failed to write participants")

		return model.Reservation{}, fmt.Errorf("failed to add participants: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) FindReservations(ctx context.Context, req dto.FindRequest) (res []model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FindReservations")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter, err := req.ToFilter()
	if err != nil {
		return nil, err
	}

	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations")

		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}

	now := s.now()
	res = make([]model.Reservation, 0, len(reservations))

	for _, r := range reservations {
		if r.Matches(filter, now) {
			res = append(res, r)
		}
	}

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, req dto.SlotRequest, callerID string) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	resource, date, slot, err := req.ToSlot()
	if err != nil {
		return res, err
	}

	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations before cancel")

		return res, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	// Ended reservations are history and cannot be cancelled.
	now := s.now()
	live := make([]model.Reservation, 0, len(reservations))

	for _, r := range reservations {
		if !r.Expired(now) {
			live = append(live, r)
		}
	}

	res, err = resolveOwned(live, 0, resource, date, slot, callerID)
	if err != nil {
		return model.Reservation{}, err
	}

	if err = s.repo.Delete(ctx, res.Row); err != nil {
		log.Error().Err(err).Int("row", res.Row).Msg("failed to delete reservation")

		return model.Reservation{}, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	metrics.ReservationsCancelled.Inc()

	return res, nil
}

func (s *serviceImpl) RecentReservations(ctx context.Context, limit int) (res []model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecentReservations")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	def := s.cfg.Reservation.RecentLimit
	if def <= 0 {
		def = constant.DefaultRecentLimit
	}

	limit = shared.ClampLimit(limit, def, constant.MaxRecentLimit)

	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent reservations")

		return nil, fmt.Errorf("failed to list recent reservations: %w", err)
	}

	start := max(len(reservations)-limit, 0)
	res = make([]model.Reservation, 0, len(reservations)-start)

	for i := len(reservations) - 1; i >= start; i-- {
		res = append(res, reservations[i])
	}

	return res, nil
}

func (s *serviceImpl) MarkReminded(ctx context.Context, reservation model.Reservation) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkReminded")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservations, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations before marking reminded")

		return fmt.Errorf("failed to mark reminded: %w", err)
	}

	current, err := resolveOwned(reservations, reservation.Row,
		reservation.ResourceName, reservation.Date, reservation.Slot, reservation.OwnerID)
	if err != nil {
		return err
	}

	if current.Reminded {
		return nil
	}

	if err = s.repo.MarkReminded(ctx, current.Row); err != nil {
		log.Error().Err(err).Int("row", current.Row).Msg("failed to mark reminded")

		return fmt.Errorf("failed to mark reminded: %w", err)
	}

	return nil
}

// blocked reports whether any reservation of resource on date overlaps slot.
func blocked(reservations []model.Reservation, resource string, date timeslot.Date, slot timeslot.Range) bool {
	for _, r := range reservations {
		if r.Conflicts(resource, date, slot) {
			return true
		}
	}

	return false
}

// resolveOwned picks the reservation occupying the slot. A row hint is used
// only while the row still holds the slot. Among duplicates the first one
// owned by ownerID wins; when none is owned the result is NotOwner.
func resolveOwned(reservations []model.Reservation, hint int, resource string, date timeslot.Date, slot timeslot.Range, ownerID string) (model.Reservation, error) {
	var matches []model.Reservation

	for _, r := range reservations {
		if !r.SameSlot(resource, date, slot) {
			continue
		}

		if r.Row == hint && r.OwnerID == ownerID {
			return r, nil
		}

		matches = append(matches, r)
	}

	if len(matches) == 0 {
		return model.Reservation{}, failure.NotFound(fmt.Sprintf("no reservation of %s on %s at %s", resource, date, slot))
	}

	for _, r := range matches {
		if r.OwnerID == ownerID {
			return r, nil
		}
	}

	return model.Reservation{}, failure.NotOwner(fmt.Sprintf("the reservation of %s on %s at %s belongs to someone else", resource, date, slot))
}
