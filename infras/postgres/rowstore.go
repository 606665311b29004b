package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/helper"
	"cafebook/infras/metrics"
	"cafebook/infras/otel"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/shared/rowstore"
)

const tableName = "reservations"

// record is one reservations table row. Column names match rowstore.Header.
type record struct {
	ID               int64  `db:"id"`
	ReserverDisplay  string `db:"reserver_display"`
	ResourceName     string `db:"resource_name"`
	Date             string `db:"date"`
	StartTime        string `db:"start_time"`
	EndTime          string `db:"end_time"`
	OwnerID          string `db:"owner_id"`
	CreatedAt        string `db:"created_at"`
	ParticipantsJSON string `db:"participants_json"`
	Reminded         string `db:"reminded"`
}

func (r record) cells() []string {
	return []string{
		r.ReserverDisplay,
		r.ResourceName,
		r.Date,
		r.StartTime,
		r.EndTime,
		r.OwnerID,
		r.CreatedAt,
		r.ParticipantsJSON,
		r.Reminded,
	}
}

// RowStore implements rowstore.Store on a Postgres table. A row's index is
// its position when ordered by id.
type RowStore struct {
	cfg     *config.Config
	otel    otel.Otel
	timeout time.Duration

	// connecting is a one-slot semaphore so waiting callers give up when
	// their own context ends.
	connecting chan struct{}
	db         *sqlx.DB
}

func NewRowStore(cfg *config.Config, ot otel.Otel) *RowStore {
	timeout := time.Duration(cfg.Store.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &RowStore{
		cfg:        cfg,
		otel:       ot,
		timeout:    timeout,
		connecting: make(chan struct{}, 1),
	}
}

// NewRowStoreWithDB wraps an open connection.
func NewRowStoreWithDB(db *sqlx.DB, cfg *config.Config, ot otel.Otel) *RowStore {
	store := NewRowStore(cfg, ot)
	store.db = db

	return store
}

func (s *RowStore) conn(ctx context.Context) (*sqlx.DB, error) {
	select {
	case s.connecting <- struct{}{}:
	case <-ctx.Done():
		return nil, failure.StoreUnavailable(ctx.Err().Error())
	}
	defer func() { <-s.connecting }()

	if s.db != nil {
		return s.db, nil
	}

	db, err := CreatePostgresWriteConn(ctx, s.cfg)
	if err != nil {
		return nil, failure.StoreUnavailable(err.Error())
	}

	if s.cfg.DB.Postgres.AutoMigrate {
		if err = helper.Up(s.cfg); err != nil {
			log.Error().Err(err).Msg("failed to run migrations")

			_ = db.Close()

			return nil, failure.StoreRejected(err.Error())
		}
	}

	s.db = db

	return db, nil
}

// FetchRows implements rowstore.Store.
func (s *RowStore) FetchRows(ctx context.Context) (rows []rowstore.Row, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".FetchRows")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.conn(ctx)
	if err != nil {
		return nil, s.fail("fetch", err)
	}

	var records []record

	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(rowstore.Header, ", "), tableName)
	if err = db.SelectContext(ctx, &records, query); err != nil {
		log.Error().Err(err).Msg("failed to select reservations")

		return nil, s.fail("fetch", classify(err))
	}

	rows = make([]rowstore.Row, 0, len(records))
	for i, rec := range records {
		rows = append(rows, rowstore.Row{Index: i + 1, Cells: rec.cells()})
	}

	return rows, nil
}

// AppendRow implements rowstore.Store.
func (s *RowStore) AppendRow(ctx context.Context, cells []string) (index int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".AppendRow")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.conn(ctx)
	if err != nil {
		return 0, s.fail("append", err)
	}

	padded := rowstore.Pad(cells)
	args := make([]any, len(padded))
	placeholders := make([]string, len(padded))

	for i, c := range padded {
		args[i] = c
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var id int64

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		tableName, strings.Join(rowstore.Header, ", "), strings.Join(placeholders, ", "))
	if err = db.GetContext(ctx, &id, query, args...); err != nil {
		log.Error().Err(err).Msg("failed to insert reservation")

		return 0, s.fail("append", classify(err))
	}

	query = fmt.Sprintf("SELECT count(*) FROM %s WHERE id <= $1", tableName)
	if err = db.GetContext(ctx, &index, query, id); err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("inserted reservation but could not count its position")

		return 0, s.fail("append", failure.IndexUnknown(err.Error()))
	}

	return index, nil
}

// UpdateCell implements rowstore.Store.
func (s *RowStore) UpdateCell(ctx context.Context, index, column int, value string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".UpdateCell")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if column < 0 || column >= rowstore.NumColumns {
		return s.fail("update", failure.StoreRejected(fmt.Sprintf("column %d out of range", column)))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.conn(ctx)
	if err != nil {
		return s.fail("update", err)
	}

	id, err := s.idAt(ctx, db, index)
	if err != nil {
		return s.fail("update", err)
	}

	query := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE id = $2", tableName, rowstore.Header[column])
	if _, err = db.ExecContext(ctx, query, value, id); err != nil {
		log.Error().Err(err).Int("row", index).Msg("failed to update reservation cell")

		return s.fail("update", classify(err))
	}

	return nil
}

// DeleteRow implements rowstore.Store.
func (s *RowStore) DeleteRow(ctx context.Context, index int) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".DeleteRow")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := s.conn(ctx)
	if err != nil {
		return s.fail("delete", err)
	}

	id, err := s.idAt(ctx, db, index)
	if err != nil {
		return s.fail("delete", err)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", tableName)
	if _, err = db.ExecContext(ctx, query, id); err != nil {
		log.Error().Err(err).Int("row", index).Msg("failed to delete reservation")

		return s.fail("delete", classify(err))
	}

	return nil
}

func (s *RowStore) idAt(ctx context.Context, db *sqlx.DB, index int) (int64, error) {
	if index < 1 {
		return 0, failure.StoreRejected(fmt.Sprintf("row %d is not a data row", index))
	}

	var id int64

	query := fmt.Sprintf("SELECT id FROM %s ORDER BY id OFFSET $1 LIMIT 1", tableName)

	err := db.GetContext(ctx, &id, query, index-1)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, failure.StoreRejected(fmt.Sprintf("row %d out of range", index))
	}

	if err != nil {
		return 0, classify(err)
	}

	return id, nil
}

func (s *RowStore) fail(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op, string(failure.GetKind(err))).Inc()

	return err
}

// classify maps driver errors onto the store failure kinds. Connection,
// resource and operator-intervention classes are transient.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if failure.IsStoreError(err) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57", "40":
			return failure.StoreUnavailable(err.Error())
		default:
			return failure.StoreRejected(err.Error())
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return failure.StoreUnavailable(err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return failure.StoreUnavailable(err.Error())
	}

	return failure.StoreRejected(err.Error())
}
