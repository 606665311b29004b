package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cafebook/shared/constant"
	"cafebook/shared/rowstore"
	"cafebook/shared/timeslot"
	"cafebook/shared/timezone"
)

const (
	EntityName = "reservation"

	remindedTrue  = "TRUE"
	remindedFalse = "FALSE"
)

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reservation is one confirmed row. Row is the store position observed by
// the fetch that produced it and must not be reused across fetches.
type Reservation struct {
	Row             int
	ReserverDisplay string
	ResourceName    string
	Date            timeslot.Date
	Slot            timeslot.Range
	OwnerID         string
	CreatedAt       time.Time
	Participants    []Participant
	Reminded        bool
}

// Filter selects reservations; zero fields match everything.
type Filter struct {
	OwnerID      string
	Date         timeslot.Date
	ResourceName string
	ActiveOnly   bool
}

// SameSlot reports whether r occupies exactly resource/date/slot.
func (r Reservation) SameSlot(resource string, date timeslot.Date, slot timeslot.Range) bool {
	return r.ResourceName == resource && r.Date == date && r.Slot == slot
}

// Conflicts reports whether r blocks slot on resource and date.
func (r Reservation) Conflicts(resource string, date timeslot.Date, slot timeslot.Range) bool {
	return r.ResourceName == resource && r.Date == date && r.Slot.Overlaps(slot)
}

func (r Reservation) StartsAt() time.Time {
	return r.Date.At(r.Slot.Start, timezone.GetLocation())
}

func (r Reservation) EndsAt() time.Time {
	return r.Date.At(r.Slot.End, timezone.GetLocation())
}

// Expired reports whether the reservation ended before now.
func (r Reservation) Expired(now time.Time) bool {
	return r.EndsAt().Before(now)
}

func (r Reservation) Matches(filter Filter, now time.Time) bool {
	switch {
	case filter.OwnerID != "" && r.OwnerID != filter.OwnerID:
		return false
	case !filter.Date.IsZero() && r.Date != filter.Date:
		return false
	case filter.ResourceName != "" && r.ResourceName != filter.ResourceName:
		return false
	case filter.ActiveOnly && r.Expired(now):
		return false
	}

	return true
}

// Mentions lists the owner then participants, without duplicates or blanks.
func (r Reservation) Mentions() []string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(r.Participants)+1)

	for _, id := range append([]string{r.OwnerID}, participantIDs(r.Participants)...) {
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}

func participantIDs(participants []Participant) []string {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}

	return ids
}

func (r Reservation) ToCells() []string {
	cells := make([]string, rowstore.NumColumns)

	cells[rowstore.ColReserverDisplay] = r.ReserverDisplay
	cells[rowstore.ColResourceName] = r.ResourceName
	cells[rowstore.ColDate] = r.Date.String()
	cells[rowstore.ColStartTime] = r.Slot.Start.String()
	cells[rowstore.ColEndTime] = r.Slot.End.String()
	cells[rowstore.ColOwnerID] = r.OwnerID
	cells[rowstore.ColCreatedAt] = FormatCreatedAt(r.CreatedAt)
	cells[rowstore.ColParticipants] = EncodeParticipants(r.Participants)
	cells[rowstore.ColReminded] = EncodeReminded(r.Reminded)

	return cells
}

// FromRow decodes a stored row. Rows whose date or times cannot be parsed
// are reported as errors; the remaining columns are decoded leniently.
func FromRow(row rowstore.Row) (Reservation, error) {
	date, err := timeslot.NormalizeDate(row.Cell(rowstore.ColDate))
	if err != nil {
		return Reservation{}, fmt.Errorf("row %d: %w", row.Index, err)
	}

	slot, err := timeslot.ParseRange(row.Cell(rowstore.ColStartTime), row.Cell(rowstore.ColEndTime))
	if err != nil {
		return Reservation{}, fmt.Errorf("row %d: %w", row.Index, err)
	}

	return Reservation{
		Row:             row.Index,
		ReserverDisplay: strings.TrimSpace(row.Cell(rowstore.ColReserverDisplay)),
		ResourceName:    strings.TrimSpace(row.Cell(rowstore.ColResourceName)),
		Date:            date,
		Slot:            slot,
		OwnerID:         strings.TrimSpace(row.Cell(rowstore.ColOwnerID)),
		CreatedAt:       ParseCreatedAt(row.Cell(rowstore.ColCreatedAt)),
		Participants:    DecodeParticipants(row.Cell(rowstore.ColParticipants)),
		Reminded:        DecodeReminded(row.Cell(rowstore.ColReminded)),
	}, nil
}

func FormatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.TimestampLayout)
}

// ParseCreatedAt returns the zero time for blank or malformed cells.
func ParseCreatedAt(value string) time.Time {
	t, err := timezone.Parse(constant.TimestampLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}

	return t
}

func EncodeReminded(reminded bool) string {
	if reminded {
		return remindedTrue
	}

	return remindedFalse
}

func DecodeReminded(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func EncodeParticipants(participants []Participant) string {
	if len(participants) == 0 {
		return "[]"
	}

	data, err := json.Marshal(participants)
	if err != nil {
		return "[]"
	}

	return string(data)
}

// DecodeParticipants accepts [{"id","name"}] as well as the older form, a
// plain array of ids given as strings or numbers. Anything else reads as none.
func DecodeParticipants(value string) []Participant {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil
	}

	participants := make([]Participant, 0, len(items))

	for _, item := range items {
		var p Participant
		if err := json.Unmarshal(item, &p); err == nil && p.ID != "" {
			participants = append(participants, p)

			continue
		}

		var id string
		if err := json.Unmarshal(item, &id); err == nil && id != "" {
			participants = append(participants, Participant{ID: id})

			continue
		}

		var number json.Number
		if err := json.Unmarshal(item, &number); err == nil && isWholeNumber(number.String()) {
			participants = append(participants, Participant{ID: number.String()})
		}
	}

	return participants
}

func isWholeNumber(value string) bool {
	if value == "" {
		return false
	}

	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
