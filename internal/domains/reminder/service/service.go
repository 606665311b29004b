package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/infras/metrics"
	"cafebook/infras/otel"
	"cafebook/internal/domains/reservation/model"
	"cafebook/internal/domains/reservation/model/dto"
	reservationService "cafebook/internal/domains/reservation/service"
	"cafebook/internal/notifier"
	"cafebook/shared/cache"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/shared/logger"
	"cafebook/shared/timezone"
)

const (
	lockKey             = "reminder:tick"
	defaultTickInterval = time.Minute
)

// TickResult summarises one scheduler pass.
type TickResult struct {
	Disabled bool `json:"disabled"`
	Skipped  bool `json:"skipped"`
	Checked  int  `json:"checked"`
	Due      int  `json:"due"`
	Sent     int  `json:"sent"`
	Failed   int  `json:"failed"`
}

type Reminder interface {
	// Run ticks until ctx is cancelled. It returns nil at once when
	// reminders are disabled.
	Run(ctx context.Context) error
	Tick(ctx context.Context) (TickResult, error)
}

type serviceImpl struct {
	reservations reservationService.Reservation
	notifier     notifier.Notifier
	cache        cache.RedisCache
	cfg          *config.Config
	otel         otel.Otel
	now          func() time.Time

	running atomic.Bool
}

func New(reservations reservationService.Reservation, notify notifier.Notifier, redisCache cache.RedisCache, cfg *config.Config, otel otel.Otel) Reminder {
	return NewWithClock(reservations, notify, redisCache, cfg, otel, timezone.Now)
}

func NewWithClock(reservations reservationService.Reservation, notify notifier.Notifier, redisCache cache.RedisCache, cfg *config.Config, otel otel.Otel, now func() time.Time) Reminder {
	return &serviceImpl{
		reservations: reservations,
		notifier:     notify,
		cache:        redisCache,
		cfg:          cfg,
		otel:         otel,
		now:          now,
	}
}

func (s *serviceImpl) lead() time.Duration {
	return time.Duration(s.cfg.Reminder.MinutesBefore) * time.Minute
}

func (s *serviceImpl) interval() time.Duration {
	if s.cfg.Reminder.TickSeconds <= 0 {
		return defaultTickInterval
	}

	return time.Duration(s.cfg.Reminder.TickSeconds) * time.Second
}

// lockTTL outlives the longest possible tick, which is bounded by interval.
func (s *serviceImpl) lockTTL() time.Duration {
	return 2 * s.interval()
}

func (s *serviceImpl) enabled() bool {
	return s.lead() > 0 && s.cfg.Reminder.Channel != ""
}

func (s *serviceImpl) Run(ctx context.Context) error {
	l := logger.Component("reminder")

	if !s.enabled() {
		l.Info().
			Int("minutes_before", s.cfg.Reminder.MinutesBefore).
			Bool("channel_set", s.cfg.Reminder.Channel != "").
			Msg("Reminders disabled")

		return nil
	}

	l.Info().
		Dur("interval", s.interval()).
		Dur("lead", s.lead()).
		Str("channel", s.cfg.Reminder.Channel).
		Msg("Reminder scheduler started")

	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("reminder tick failed")
		}

		select {
		case <-ctx.Done():
			l.Info().Msg("Reminder scheduler stopped")

			return nil
		case <-ticker.C:
		}
	}
}

func (s *serviceImpl) Tick(ctx context.Context) (res TickResult, err error) {
	if !s.enabled() {
		return TickResult{Disabled: true}, nil
	}

	if !s.running.CompareAndSwap(false, true) {
		metrics.SchedulerTicksSkipped.Inc()

		return TickResult{Skipped: true}, nil
	}
	defer s.running.Store(false)

	ctx, scope := s.otel.NewScope(ctx, constant.OtelSchedulerScopeName, constant.OtelSchedulerScopeName+".Tick")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	token, acquired, lockErr := s.cache.Lock(ctx, lockKey, s.lockTTL())

	switch {
	case lockErr != nil:
		log.Warn().Err(lockErr).Msg("tick lock unavailable, relying on local guard")
	case !acquired:
		metrics.SchedulerTicksSkipped.Inc()

		return TickResult{Skipped: true}, nil
	default:
		defer func() {
			if unlockErr := s.cache.Unlock(context.WithoutCancel(ctx), lockKey, token); unlockErr != nil {
				log.Warn().Err(unlockErr).Msg("failed to release tick lock")
			}
		}()
	}

	started := time.Now()
	defer func() { metrics.TickDuration.Observe(time.Since(started).Seconds()) }()

	metrics.SchedulerTicks.Inc()

	// The tick must finish before the lock can expire under it.
	tickCtx, cancel := context.WithTimeout(ctx, s.interval())
	defer cancel()

	now := s.now()
	lead := s.lead()

	reservations, err := s.reservations.FindReservations(tickCtx, dto.FindRequest{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations for reminders")

		return res, fmt.Errorf("failed to run reminder tick: %w", err)
	}

	res.Checked = len(reservations)

	for _, r := range reservations {
		if r.Reminded || !due(r, now, lead) {
			continue
		}

		res.Due++

		if s.remind(tickCtx, r) {
			res.Sent++
		} else {
			res.Failed++
		}
	}

	scope.SetAttributes(map[string]any{
		"reminder.checked": res.Checked,
		"reminder.due":     res.Due,
		"reminder.sent":    res.Sent,
	})

	return res, nil
}

// remind sends one reminder and marks it. It reports whether the message was
// delivered; a failed mark is logged and the reminder may be sent again.
func (s *serviceImpl) remind(ctx context.Context, r model.Reservation) bool {
	text := Message(r, s.cfg.Reminder.MinutesBefore)

	if err := s.notifier.Send(ctx, s.cfg.Reminder.Channel, text); err != nil {
		metrics.ReminderSendFailures.Inc()
		log.Warn().Err(err).
			Int("row", r.Row).
			Str("resource", r.ResourceName).
			Msg("failed to send reminder, retrying next tick")

		return false
	}

	metrics.RemindersSent.Inc()

	if err := s.reservations.MarkReminded(ctx, r); err != nil {
		metrics.ReminderMarkFailures.Inc()

		event := log.Error()
		if errors.Is(err, failure.ErrNotFound) {
			event = log.Warn()
		}

		event.Err(err).Int("row", r.Row).Msg("reminder sent but not marked")
	}

	return true
}

// due reports whether now falls inside [start-lead, start].
func due(r model.Reservation, now time.Time, lead time.Duration) bool {
	start := r.StartsAt()

	return !now.Before(start.Add(-lead)) && !now.After(start)
}

// Message renders the reminder text: a mention line followed by the slot.
func Message(r model.Reservation, minutesBefore int) string {
	mentions := r.Mentions()

	tags := make([]string, len(mentions))
	for i, id := range mentions {
		tags[i] = "<@" + id + ">"
	}

	line := fmt.Sprintf("Starting in %d minutes: %s %s-%s / %s",
		minutesBefore, r.Date, r.Slot.Start, r.Slot.End, r.ResourceName)

	if len(tags) == 0 {
		return line
	}

	return strings.Join(tags, " ") + "\n" + line
}
