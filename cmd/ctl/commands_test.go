package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cafebook/config"
	"cafebook/infras/jwt"
	otelMocks "cafebook/infras/otel/mocks"
	reminderService "cafebook/internal/domains/reminder/service"
	"cafebook/internal/domains/reservation/model/dto"
	"cafebook/internal/domains/reservation/repository"
	reservationService "cafebook/internal/domains/reservation/service"
	notifierMocks "cafebook/internal/notifier/mocks"
	"cafebook/shared/cache"
	"cafebook/shared/rowstore"
	"cafebook/shared/timezone"
)

func seededStore() *rowstore.Memory {
	return rowstore.NewMemory(
		[]string{"Alice", "Room A", "2025/05/01", "13:00", "14:00", "u1", "2025-05-01 09:00:00", `[{"id":"u2"}]`, "FALSE"},
		[]string{"Bob", "Room B", "2025/05/01", "15:00", "16:00", "u2", "2025-05-01 10:00:00", "[]", "FALSE"},
	)
}

func newTestDeps(t *testing.T, store *rowstore.Memory, now time.Time) (*deps, *notifierMocks.MockNotifier) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockOtel := otelMocks.NewOtel()
	mockNotifier := notifierMocks.NewMockNotifier(ctrl)
	clock := func() time.Time { return now }

	cfg := &config.Config{}
	cfg.Reminder.MinutesBefore = 15
	cfg.Reminder.TickSeconds = 60
	cfg.Reminder.Channel = "general"
	cfg.JWT.AccessSecret = "ctl-secret"
	cfg.JWT.AccessExpireMin = 30

	reservations := reservationService.NewWithClock(repository.New(store, mockOtel), mockNotifier, cfg, mockOtel, clock)

	return &deps{
		reservations: reservations,
		reminders:    reminderService.NewWithClock(reservations, mockNotifier, cache.NewRedisCache(nil, mockOtel), cfg, mockOtel, clock),
		jwt:          jwt.New(cfg),
	}, mockNotifier
}

func execute(t *testing.T, d *deps, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd(func() *deps { return d })
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestRecentCmd(t *testing.T) {
	d, _ := newTestDeps(t, seededStore(), time.Date(2025, 5, 1, 12, 0, 0, 0, timezone.GetLocation()))

	out, err := execute(t, d, "recent", "--limit", "1")
	require.NoError(t, err)

	var res dto.GetReservationsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	require.Len(t, res.Reservations, 1)
	assert.Equal(t, "Room B", res.Reservations[0].ResourceName)
}

func TestFindCmd(t *testing.T) {
	d, _ := newTestDeps(t, seededStore(), time.Date(2025, 5, 1, 12, 0, 0, 0, timezone.GetLocation()))

	out, err := execute(t, d, "find", "--owner", "u1")
	require.NoError(t, err)

	var res dto.GetReservationsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	require.Len(t, res.Reservations, 1)
	assert.Equal(t, "Alice", res.Reservations[0].ReserverDisplay)
	assert.Equal(t, 1, res.Reservations[0].Row)
}

func TestAvailabilityCmd(t *testing.T) {
	d, _ := newTestDeps(t, seededStore(), time.Date(2025, 5, 1, 12, 0, 0, 0, timezone.GetLocation()))

	out, err := execute(t, d, "availability", "Room A", "Room B", "--date", "2025/05/01", "--start", "13:30", "--end", "14:30")
	require.NoError(t, err)

	var res dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.Equal(t, []string{"Room B"}, res.Available)
}

func TestAvailabilityCmd_RequiresResource(t *testing.T) {
	d, _ := newTestDeps(t, seededStore(), time.Now())

	_, err := execute(t, d, "availability", "--date", "2025/05/01", "--start", "13:30", "--end", "14:30")
	assert.Error(t, err)
}

func TestCancelCmd(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		wantErr bool
		left    int
	}{
		{name: "owner cancels", owner: "u1", left: 1},
		{name: "someone else is refused", owner: "u9", wantErr: true, left: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			d, _ := newTestDeps(t, store, time.Date(2025, 5, 1, 12, 0, 0, 0, timezone.GetLocation()))

			_, err := execute(t, d, "cancel",
				"--owner", tt.owner,
				"--resource", "Room A",
				"--date", "2025/05/01",
				"--start", "13:00",
				"--end", "14:00",
			)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.left, store.Len())
		})
	}
}

func TestRemindOnceCmd(t *testing.T) {
	store := seededStore()
	d, mockNotifier := newTestDeps(t, store, time.Date(2025, 5, 1, 12, 50, 0, 0, timezone.GetLocation()))

	mockNotifier.EXPECT().
		Send(gomock.Any(), "general", "<@u1> <@u2>\nStarting in 15 minutes: 2025/05/01 13:00-14:00 / Room A").
		Return(nil)

	out, err := execute(t, d, "remind-once")
	require.NoError(t, err)

	var res reminderService.TickResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.Equal(t, 1, res.Sent)
}

func TestTokenCmd(t *testing.T) {
	d, _ := newTestDeps(t, seededStore(), time.Now())

	out, err := execute(t, d, "token", "u1", "--name", "Alice")
	require.NoError(t, err)

	var token jwt.Token
	require.NoError(t, json.Unmarshal([]byte(out), &token))

	claims, err := d.jwt.ValidateToken(token.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
}
