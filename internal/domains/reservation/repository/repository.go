package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"cafebook/infras/otel"
	"cafebook/internal/domains/reservation/model"
	"cafebook/shared/constant"
	"cafebook/shared/rowstore"
)

type Reservation interface {
	// GetAll decodes every row in store order. Rows that cannot be decoded
	// are skipped with a warning.
	GetAll(ctx context.Context) ([]model.Reservation, error)
	Insert(ctx context.Context, reservation model.Reservation) (int, error)
	UpdateParticipants(ctx context.Context, row int, participants []model.Participant) error
	MarkReminded(ctx context.Context, row int) error
	Delete(ctx context.Context, row int) error
}

type repositoryImpl struct {
	store rowstore.Store
	otel  otel.Otel
}

func New(store rowstore.Store, otel otel.Otel) Reservation {
	return &repositoryImpl{
		store: store,
		otel:  otel,
	}
}

func (r *repositoryImpl) GetAll(ctx context.Context) (res []model.Reservation, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	rows, err := r.store.FetchRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s rows: %w", model.EntityName, err)
	}

	res = make([]model.Reservation, 0, len(rows))

	for _, row := range rows {
		reservation, err := model.FromRow(row)
		if err != nil {
			log.Warn().Err(err).Int("row", row.Index).Msg("skipping unreadable reservation row")

			continue
		}

		res = append(res, reservation)
	}

	scope.SetAttribute("reservation.count", len(res))

	return res, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, reservation model.Reservation) (row int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Insert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	row, err = r.store.AppendRow(ctx, reservation.ToCells())
	if err != nil {
		return 0, fmt.Errorf("failed to append %s: %w", model.EntityName, err)
	}

	return row, nil
}

func (r *repositoryImpl) UpdateParticipants(ctx context.Context, row int, participants []model.Participant) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".UpdateParticipants")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	err = r.store.UpdateCell(ctx, row, rowstore.ColParticipants, model.EncodeParticipants(participants))
	if err != nil {
		return fmt.Errorf("failed to update participants on row %d: %w", row, err)
	}

	return nil
}

func (r *repositoryImpl) MarkReminded(ctx context.Context, row int) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".MarkReminded")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = r.store.UpdateCell(ctx, row, rowstore.ColReminded, model.EncodeReminded(true)); err != nil {
		return fmt.Errorf("failed to mark row %d reminded: %w", row, err)
	}

	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, row int) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = r.store.DeleteRow(ctx, row); err != nil {
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}

	return nil
}
