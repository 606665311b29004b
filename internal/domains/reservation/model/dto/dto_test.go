package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafebook/internal/domains/reservation/model"
	"cafebook/internal/domains/reservation/model/dto"
	"cafebook/shared/failure"
	"cafebook/shared/timeslot"
)

func TestSlotRequest_ToSlot(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.SlotRequest
		wantSlot string
		wantErr  error
	}{
		{
			name:     "normalizes every field",
			req:      dto.SlotRequest{ResourceName: "  Room A ", Date: "2025-05-01", StartTime: "0930", EndTime: "10:00"},
			wantSlot: "Room A 2025/05/01 09:30-10:00",
		},
		{
			name:    "blank resource",
			req:     dto.SlotRequest{ResourceName: " ", Date: "2025/05/01", StartTime: "09:00", EndTime: "10:00"},
			wantErr: failure.ErrInvalidFormat,
		},
		{
			name:    "impossible date",
			req:     dto.SlotRequest{ResourceName: "Room A", Date: "2025/02/30", StartTime: "09:00", EndTime: "10:00"},
			wantErr: failure.ErrInvalidFormat,
		},
		{
			name:    "inverted range",
			req:     dto.SlotRequest{ResourceName: "Room A", Date: "2025/05/01", StartTime: "10:00", EndTime: "09:00"},
			wantErr: failure.ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource, date, slot, err := tt.req.ToSlot()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSlot, resource+" "+date.String()+" "+slot.String())
		})
	}
}

func TestAvailabilityRequest_ToQuery(t *testing.T) {
	req := dto.AvailabilityRequest{
		Resources: []string{"Room B", " Room A", "Room B", ""},
		Date:      "2025/05/01",
		StartTime: "13:00",
		EndTime:   "14:00",
	}

	resources, _, _, err := req.ToQuery()
	require.NoError(t, err)

	assert.Equal(t, []string{"Room B", "Room A"}, resources)
}

func TestParticipantsRequest_ToParticipants(t *testing.T) {
	req := dto.ParticipantsRequest{
		Participants: []dto.ParticipantRequest{
			{ID: "owner"}, {ID: " u2 ", Name: " Bob "}, {ID: "u2"}, {ID: ""}, {ID: "u3"},
		},
	}

	assert.Equal(t,
		[]model.Participant{{ID: "u2", Name: "Bob"}, {ID: "u3"}},
		req.ToParticipants("owner"))
}

func TestFindRequest_ToFilter(t *testing.T) {
	filter, err := dto.FindRequest{OwnerID: " u1 ", Date: "2025-05-01", ActiveOnly: true}.ToFilter()
	require.NoError(t, err)

	assert.Equal(t, "u1", filter.OwnerID)
	assert.Equal(t, timeslot.Date{Year: 2025, Month: 5, Day: 1}, filter.Date)
	assert.True(t, filter.ActiveOnly)

	filter, err = dto.FindRequest{}.ToFilter()
	require.NoError(t, err)
	assert.True(t, filter.Date.IsZero())
}

func TestGetReservationsResponse_FromModels(t *testing.T) {
	date, _ := timeslot.NormalizeDate("2025/05/01")
	slot, _ := timeslot.ParseRange("13:00", "14:00")

	var res dto.GetReservationsResponse
	res.FromModels([]model.Reservation{{
		Row: 2, ResourceName: "Room A", Date: date, Slot: slot, OwnerID: "u1",
		Participants: []model.Participant{{ID: "u2", Name: "Bob"}},
	}})

	require.Len(t, res.Reservations, 1)
	assert.Equal(t, 1, res.Total)

	got := res.Reservations[0]
	assert.Equal(t, 2, got.Row)
	assert.Equal(t, "2025/05/01", got.Date)
	assert.Equal(t, "13:00", got.StartTime)
	assert.Equal(t, "14:00", got.EndTime)
	assert.Empty(t, got.CreatedAt)
	assert.Equal(t, []dto.ParticipantResponse{{ID: "u2", Name: "Bob"}}, got.Participants)
}
