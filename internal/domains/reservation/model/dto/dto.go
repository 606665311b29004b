package dto

import (
	"fmt"
	"strings"

	"cafebook/internal/domains/reservation/model"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/shared/timeslot"
)

type AvailabilityRequest struct {
	Resources []string `json:"resources"  validate:"required,min=1,dive,notblank"`
	Date      string   `json:"date"       validate:"required"`
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time"   validate:"required"`
}

// ToQuery normalizes the window and de-duplicates candidates, keeping order.
func (r AvailabilityRequest) ToQuery() ([]string, timeslot.Date, timeslot.Range, error) {
	date, slot, err := parseWindow(r.Date, r.StartTime, r.EndTime)
	if err != nil {
		return nil, date, slot, err
	}

	seen := map[string]bool{}
	resources := make([]string, 0, len(r.Resources))

	for _, name := range r.Resources {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true
		resources = append(resources, name)
	}

	return resources, date, slot, nil
}

type AvailabilityResponse struct {
	Date      string   `json:"date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Available []string `json:"available"`
}

// SlotRequest names one reservation by its slot tuple.
type SlotRequest struct {
	ResourceName string `json:"resource_name" validate:"required,notblank,max=100"`
	Date         string `json:"date"          validate:"required"`
	StartTime    string `json:"start_time"    validate:"required"`
	EndTime      string `json:"end_time"      validate:"required"`
}

func (r SlotRequest) ToSlot() (string, timeslot.Date, timeslot.Range, error) {
	resource := strings.TrimSpace(r.ResourceName)
	if resource == "" {
		return "", timeslot.Date{}, timeslot.Range{}, failure.InvalidFormat("resource name is required")
	}

	date, slot, err := parseWindow(r.Date, r.StartTime, r.EndTime)

	return resource, date, slot, err
}

type ReserveRequest struct {
	SlotRequest

	ReserverDisplay string `json:"reserver_display" validate:"omitempty,max=100"`
}

type ParticipantRequest struct {
	ID   string `json:"id"   validate:"required,notblank"`
	Name string `json:"name" validate:"omitempty,max=100"`
}

// ParticipantsRequest replaces the participant list of a reservation. Row is
// a hint from an earlier listing; the slot decides which row is updated.
type ParticipantsRequest struct {
	SlotRequest

	Row          int                  `json:"row"          validate:"gte=0"`
	Participants []ParticipantRequest `json:"participants" validate:"max=100,dive"`
}

// ToParticipants trims ids, drops the owner and duplicates, and caps the list.
func (r ParticipantsRequest) ToParticipants(ownerID string) []model.Participant {
	seen := map[string]bool{ownerID: true}
	participants := make([]model.Participant, 0, len(r.Participants))

	for _, p := range r.Participants {
		id := strings.TrimSpace(p.ID)
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		participants = append(participants, model.Participant{ID: id, Name: strings.TrimSpace(p.Name)})

		if len(participants) == constant.MaxParticipants {
			break
		}
	}

	return participants
}

type FindRequest struct {
	OwnerID      string `json:"owner_id"`
	Date         string `json:"date"`
	ResourceName string `json:"resource_name"`
	ActiveOnly   bool   `json:"active_only"`
}

func (r FindRequest) ToFilter() (model.Filter, error) {
	filter := model.Filter{
		OwnerID:      strings.TrimSpace(r.OwnerID),
		ResourceName: strings.TrimSpace(r.ResourceName),
		ActiveOnly:   r.ActiveOnly,
	}

	if strings.TrimSpace(r.Date) != "" {
		date, err := timeslot.NormalizeDate(r.Date)
		if err != nil {
			return model.Filter{}, err
		}

		filter.Date = date
	}

	return filter, nil
}

type ParticipantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ReservationResponse struct {
	Row             int                   `json:"row"`
	ReserverDisplay string                `json:"reserver_display"`
	ResourceName    string                `json:"resource_name"`
	Date            string                `json:"date"`
	StartTime       string                `json:"start_time"`
	EndTime         string                `json:"end_time"`
	OwnerID         string                `json:"owner_id"`
	CreatedAt       string                `json:"created_at,omitempty"`
	Participants    []ParticipantResponse `json:"participants"`
	Reminded        bool                  `json:"reminded"`
}

func (r *ReservationResponse) FromModel(m model.Reservation) {
	r.Row = m.Row
	r.ReserverDisplay = m.ReserverDisplay
	r.ResourceName = m.ResourceName
	r.Date = m.Date.String()
	r.StartTime = m.Slot.Start.String()
	r.EndTime = m.Slot.End.String()
	r.OwnerID = m.OwnerID
	r.CreatedAt = model.FormatCreatedAt(m.CreatedAt)
	r.Reminded = m.Reminded

	r.Participants = make([]ParticipantResponse, len(m.Participants))
	for i, p := range m.Participants {
		r.Participants[i] = ParticipantResponse(p)
	}
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation) {
	r.Reservations = make([]ReservationResponse, len(models))
	for i, m := range models {
		r.Reservations[i].FromModel(m)
	}

	r.Total = len(models)
}

func parseWindow(dateText, startText, endText string) (timeslot.Date, timeslot.Range, error) {
	date, err := timeslot.NormalizeDate(dateText)
	if err != nil {
		return timeslot.Date{}, timeslot.Range{}, fmt.Errorf("invalid date: %w", err)
	}

	slot, err := timeslot.ParseRange(startText, endText)
	if err != nil {
		return date, timeslot.Range{}, fmt.Errorf("invalid time range: %w", err)
	}

	return date, slot, nil
}
