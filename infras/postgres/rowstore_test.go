package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafebook/config"
	otelMocks "cafebook/infras/otel/mocks"
	"cafebook/shared/failure"
	"cafebook/shared/rowstore"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "connection failure", err: &pq.Error{Code: "08006"}, want: failure.ErrStoreUnavailable},
		{name: "too many connections", err: &pq.Error{Code: "53300"}, want: failure.ErrStoreUnavailable},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01"}, want: failure.ErrStoreUnavailable},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: failure.ErrStoreUnavailable},
		{name: "undefined table", err: &pq.Error{Code: "42P01"}, want: failure.ErrStoreRejected},
		{name: "permission denied", err: &pq.Error{Code: "42501"}, want: failure.ErrStoreRejected},
		{name: "bad conn", err: driver.ErrBadConn, want: failure.ErrStoreUnavailable},
		{name: "conn done", err: sql.ErrConnDone, want: failure.ErrStoreUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, want: failure.ErrStoreUnavailable},
		{name: "other", err: errors.New("odd"), want: failure.ErrStoreRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	assert.NoError(t, classify(nil))
}

func TestRecordCellsFollowHeader(t *testing.T) {
	rec := record{
		ReserverDisplay:  "alice",
		ResourceName:     "Room A",
		Date:             "2025/05/01",
		StartTime:        "13:00",
		EndTime:          "14:00",
		OwnerID:          "u1",
		CreatedAt:        "2025-05-01 09:00:00",
		ParticipantsJSON: "[]",
		Reminded:         "FALSE",
	}

	cells := rec.cells()

	assert.Len(t, cells, rowstore.NumColumns)
	assert.Equal(t, "Room A", cells[rowstore.ColResourceName])
	assert.Equal(t, "u1", cells[rowstore.ColOwnerID])
	assert.Equal(t, "FALSE", cells[rowstore.ColReminded])
}

// refusedPort returns a local port with nothing listening on it.
func refusedPort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	return port
}

func unreachableConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.TimeoutSeconds = 1
	cfg.DB.Postgres.MaxRetry = 3
	cfg.DB.Postgres.RetryWaitTime = 2
	cfg.DB.Postgres.Write.Host = "127.0.0.1"
	cfg.DB.Postgres.Write.Port = refusedPort(t)
	cfg.DB.Postgres.Write.Username = "cafebook"
	cfg.DB.Postgres.Write.Name = "cafebook"
	cfg.DB.Postgres.Write.SSLMode = "disable"

	return cfg
}

func TestRowStore_ConnectHonoursDeadline(t *testing.T) {
	store := NewRowStore(unreachableConfig(t), otelMocks.NewOtel())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := store.FetchRows(ctx)

	assert.ErrorIs(t, err, failure.ErrStoreUnavailable)
	assert.Less(t, time.Since(started), time.Second)
}

func TestRowStore_ConnectUsesStoreTimeout(t *testing.T) {
	store := NewRowStore(unreachableConfig(t), otelMocks.NewOtel())

	started := time.Now()
	_, err := store.FetchRows(context.Background())

	assert.ErrorIs(t, err, failure.ErrStoreUnavailable)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestRowStore_WaitingCallerGivesUp(t *testing.T) {
	store := NewRowStore(unreachableConfig(t), otelMocks.NewOtel())

	// Another caller is mid-connect.
	store.connecting <- struct{}{}
	defer func() { <-store.connecting }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	err := store.DeleteRow(ctx, 1)

	assert.ErrorIs(t, err, failure.ErrStoreUnavailable)
	assert.Less(t, time.Since(started), time.Second)
}
