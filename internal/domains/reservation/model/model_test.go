package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafebook/internal/domains/reservation/model"
	"cafebook/shared/rowstore"
	"cafebook/shared/timeslot"
	"cafebook/shared/timezone"
)

func TestDecodeParticipants(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []model.Participant
	}{
		{name: "blank", value: "", want: nil},
		{name: "empty array", value: "[]", want: []model.Participant{}},
		{
			name:  "objects",
			value: `[{"id":"1","name":"Bob"},{"id":"2"}]`,
			want:  []model.Participant{{ID: "1", Name: "Bob"}, {ID: "2"}},
		},
		{
			name:  "legacy string ids",
			value: `["111","222"]`,
			want:  []model.Participant{{ID: "111"}, {ID: "222"}},
		},
		{
			name:  "legacy numeric ids keep every digit",
			value: `[123456789012345678901]`,
			want:  []model.Participant{{ID: "123456789012345678901"}},
		},
		{
			name:  "junk entries are dropped",
			value: `[{"name":"no id"}, 1.5, null, "333"]`,
			want:  []model.Participant{{ID: "333"}},
		},
		{name: "not json", value: "bob, alice", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.DecodeParticipants(tt.value))
		})
	}
}

func TestEncodeParticipants(t *testing.T) {
	assert.Equal(t, "[]", model.EncodeParticipants(nil))
	assert.Equal(t, `[{"id":"1","name":"Bob"}]`, model.EncodeParticipants([]model.Participant{{ID: "1", Name: "Bob"}}))
}

func TestReminded(t *testing.T) {
	assert.Equal(t, "TRUE", model.EncodeReminded(true))
	assert.Equal(t, "FALSE", model.EncodeReminded(false))

	assert.True(t, model.DecodeReminded(" true "))
	assert.True(t, model.DecodeReminded("TRUE"))
	assert.False(t, model.DecodeReminded(""))
	assert.False(t, model.DecodeReminded("yes"))
}

func TestFromRow(t *testing.T) {
	row := rowstore.Row{
		Index: 4,
		Cells: []string{"Alice", "Room A", "2025-05-01", "9:00", "10:30", "u1", "2025-04-30 08:15:00", `["u2"]`, "TRUE"},
	}

	r, err := model.FromRow(row)
	require.NoError(t, err)

	assert.Equal(t, 4, r.Row)
	assert.Equal(t, "Room A", r.ResourceName)
	assert.Equal(t, "2025/05/01", r.Date.String())
	assert.Equal(t, "09:00-10:30", r.Slot.String())
	assert.Equal(t, time.Date(2025, 4, 30, 8, 15, 0, 0, timezone.GetLocation()), r.CreatedAt)
	assert.Equal(t, []model.Participant{{ID: "u2"}}, r.Participants)
	assert.True(t, r.Reminded)

	assert.Equal(t,
		[]string{"Alice", "Room A", "2025/05/01", "09:00", "10:30", "u1", "2025-04-30 08:15:00", `[{"id":"u2","name":""}]`, "TRUE"},
		r.ToCells())
}

func TestFromRow_Unreadable(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
	}{
		{name: "bad date", cells: []string{"A", "Room A", "someday", "09:00", "10:00", "u1"}},
		{name: "bad time", cells: []string{"A", "Room A", "2025/05/01", "nine", "10:00", "u1"}},
		{name: "inverted range", cells: []string{"A", "Room A", "2025/05/01", "11:00", "10:00", "u1"}},
		{name: "short row", cells: []string{"A", "Room A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.FromRow(rowstore.Row{Index: 1, Cells: tt.cells})
			assert.Error(t, err)
		})
	}
}

func TestReservation_Mentions(t *testing.T) {
	r := model.Reservation{
		OwnerID:      "u1",
		Participants: []model.Participant{{ID: "u2"}, {ID: "u1"}, {ID: ""}, {ID: "u2"}, {ID: "u3"}},
	}

	assert.Equal(t, []string{"u1", "u2", "u3"}, r.Mentions())
}

func TestReservation_Matches(t *testing.T) {
	date, err := timeslot.NormalizeDate("2025/05/01")
	require.NoError(t, err)

	slot, err := timeslot.ParseRange("10:00", "11:00")
	require.NoError(t, err)

	r := model.Reservation{ResourceName: "Room A", Date: date, Slot: slot, OwnerID: "u1"}
	loc := timezone.GetLocation()

	tests := []struct {
		name   string
		filter model.Filter
		now    time.Time
		want   bool
	}{
		{name: "empty filter", filter: model.Filter{}, now: time.Date(2025, 5, 2, 0, 0, 0, 0, loc), want: true},
		{name: "other owner", filter: model.Filter{OwnerID: "u2"}, want: false},
		{name: "other resource", filter: model.Filter{ResourceName: "Room B"}, want: false},
		{name: "active before end", filter: model.Filter{ActiveOnly: true}, now: time.Date(2025, 5, 1, 10, 59, 0, 0, loc), want: true},
		{name: "active exactly at end", filter: model.Filter{ActiveOnly: true}, now: time.Date(2025, 5, 1, 11, 0, 0, 0, loc), want: true},
		{name: "ended", filter: model.Filter{ActiveOnly: true}, now: time.Date(2025, 5, 1, 11, 1, 0, 0, loc), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Matches(tt.filter, tt.now))
		})
	}
}

func TestReservation_Conflicts(t *testing.T) {
	date, _ := timeslot.NormalizeDate("2025/05/01")
	slot, _ := timeslot.ParseRange("13:00", "14:00")
	r := model.Reservation{ResourceName: "Room A", Date: date, Slot: slot}

	overlapping, _ := timeslot.ParseRange("13:30", "14:30")
	abutting, _ := timeslot.ParseRange("14:00", "15:00")
	otherDay, _ := timeslot.NormalizeDate("2025/05/02")

	assert.True(t, r.Conflicts("Room A", date, overlapping))
	assert.False(t, r.Conflicts("Room A", date, abutting))
	assert.False(t, r.Conflicts("Room B", date, overlapping))
	assert.False(t, r.Conflicts("Room A", otherDay, overlapping))

	assert.True(t, r.SameSlot("Room A", date, slot))
	assert.False(t, r.SameSlot("Room A", date, overlapping))
}
