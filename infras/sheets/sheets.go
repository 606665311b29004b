// Package sheets implements rowstore.Store on a Google Sheets worksheet.
//
// The first sheet row is the header; data row N lives on sheet row N+1. The
// API session is opened on first use and reopened on the next call if
// opening failed.
package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"cafebook/config"
	"cafebook/infras/metrics"
	"cafebook/infras/otel"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/shared/rowstore"
)

const (
	valueInputRaw  = "RAW"
	insertRows     = "INSERT_ROWS"
	dimensionRows  = "ROWS"
	lastColumn     = "I"
	headerRowRange = "A1:" + lastColumn + "1"
	allRowsRange   = "A:" + lastColumn
)

type session struct {
	api     *gsheets.Service
	sheetID int64
}

type Store struct {
	cfg     *config.Config
	otel    otel.Otel
	timeout time.Duration

	mu      sync.Mutex
	current *session
}

func New(cfg *config.Config, ot otel.Otel) *Store {
	timeout := time.Duration(cfg.Store.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Store{
		cfg:     cfg,
		otel:    ot,
		timeout: timeout,
	}
}

func (s *Store) spreadsheetID() string {
	return s.cfg.Store.Sheets.SpreadsheetID
}

func (s *Store) sheetName() string {
	return s.cfg.Store.Sheets.SheetName
}

// session returns the open session, opening it if needed.
func (s *Store) session(ctx context.Context) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}

	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	s.current = sess

	return sess, nil
}

func (s *Store) open(ctx context.Context) (*session, error) {
	if s.spreadsheetID() == "" {
		return nil, failure.StoreRejected("spreadsheet id is not configured")
	}

	credentials, source, err := loadCredentials(s.cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to load google credentials")

		return nil, failure.StoreRejected(err.Error())
	}

	api, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create sheets service")

		return nil, classify(err)
	}

	sheetID, err := s.ensureSheet(ctx, api)
	if err != nil {
		return nil, err
	}

	if err = s.ensureHeader(ctx, api, sheetID); err != nil {
		return nil, err
	}

	log.Info().
		Str("spreadsheet", s.spreadsheetID()).
		Str("sheet", s.sheetName()).
		Str("credentials", source).
		Msg("Sheets session opened")

	return &session{api: api, sheetID: sheetID}, nil
}

// ensureSheet finds the worksheet by title, creating it when absent, and
// widens it to the schema width.
func (s *Store) ensureSheet(ctx context.Context, api *gsheets.Service) (int64, error) {
	spreadsheet, err := api.Spreadsheets.Get(s.spreadsheetID()).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Msg("failed to read spreadsheet")

		return 0, classify(err)
	}

	for _, sheet := range spreadsheet.Sheets {
		props := sheet.Properties
		if props == nil || props.Title != s.sheetName() {
			continue
		}

		if props.GridProperties == nil || props.GridProperties.ColumnCount < rowstore.NumColumns {
			if err = s.widen(ctx, api, props.SheetId); err != nil {
				return 0, err
			}
		}

		return props.SheetId, nil
	}

	resp, err := api.Spreadsheets.BatchUpdate(s.spreadsheetID(), &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: s.sheetName()},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Str("sheet", s.sheetName()).Msg("failed to add sheet")

		return 0, classify(err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, failure.StoreRejected("add sheet reply carried no properties")
	}

	sheetID := resp.Replies[0].AddSheet.Properties.SheetId

	log.Info().Str("sheet", s.sheetName()).Int64("sheetId", sheetID).Msg("Created worksheet")

	return sheetID, s.widen(ctx, api, sheetID)
}

func (s *Store) widen(ctx context.Context, api *gsheets.Service, sheetID int64) error {
	_, err := api.Spreadsheets.BatchUpdate(s.spreadsheetID(), &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
				Properties: &gsheets.SheetProperties{
					SheetId:         sheetID,
					GridProperties:  &gsheets.GridProperties{ColumnCount: rowstore.NumColumns},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.columnCount",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Int64("sheetId", sheetID).Msg("failed to widen sheet")

		return classify(err)
	}

	return nil
}

// ensureHeader writes the header into an empty first row. A first row
// holding anything else is pushed down so existing data is kept.
func (s *Store) ensureHeader(ctx context.Context, api *gsheets.Service, sheetID int64) error {
	first, err := api.Spreadsheets.Values.Get(s.spreadsheetID(), a1(s.sheetName(), headerRowRange)).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Msg("failed to read header row")

		return classify(err)
	}

	var cells []string
	if len(first.Values) > 0 {
		cells = toCells(first.Values[0])
	}

	if rowstore.IsHeader(cells) {
		return nil
	}

	if !blank(cells) {
		log.Warn().Strs("firstRow", cells).Msg("First row is not the header, inserting header above it")

		_, err = api.Spreadsheets.BatchUpdate(s.spreadsheetID(), &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				InsertDimension: &gsheets.InsertDimensionRequest{
					Range: &gsheets.DimensionRange{
						SheetId:         sheetID,
						Dimension:       dimensionRows,
						StartIndex:      0,
						EndIndex:        1,
						ForceSendFields: []string{"SheetId", "StartIndex"},
					},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			log.Error().Err(err).Msg("failed to insert header row")

			return classify(err)
		}
	}

	_, err = api.Spreadsheets.Values.Update(s.spreadsheetID(), a1(s.sheetName(), headerRowRange), &gsheets.ValueRange{
		Values: [][]any{toValues(rowstore.Header)},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Msg("failed to write header row")

		return classify(err)
	}

	return nil
}

// FetchRows implements rowstore.Store.
func (s *Store) FetchRows(ctx context.Context) (rows []rowstore.Row, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".FetchRows")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return nil, s.fail("fetch", err)
	}

	resp, err := sess.api.Spreadsheets.Values.Get(s.spreadsheetID(), a1(s.sheetName(), allRowsRange)).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch rows")

		return nil, s.fail("fetch", classify(err))
	}

	rows = make([]rowstore.Row, 0, len(resp.Values))

	for i, values := range resp.Values {
		if i == 0 {
			continue
		}

		rows = append(rows, rowstore.Row{Index: i, Cells: rowstore.Pad(toCells(values))})
	}

	scope.SetAttribute("store.rows", len(rows))

	return rows, nil
}

// AppendRow implements rowstore.Store.
func (s *Store) AppendRow(ctx context.Context, cells []string) (index int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".AppendRow")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return 0, s.fail("append", err)
	}

	resp, err := sess.api.Spreadsheets.Values.Append(s.spreadsheetID(), a1(s.sheetName(), allRowsRange), &gsheets.ValueRange{
		Values: [][]any{toValues(rowstore.Pad(cells))},
	}).ValueInputOption(valueInputRaw).InsertDataOption(insertRows).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Msg("failed to append row")

		return 0, s.fail("append", classify(err))
	}

	var updatedRange string
	if resp.Updates != nil {
		updatedRange = resp.Updates.UpdatedRange
	}

	sheetRow, ok := parseUpdatedRow(updatedRange)
	if !ok || sheetRow < 2 {
		log.Warn().Str("updatedRange", updatedRange).Msg("append response carried no usable range")

		return 0, s.fail("append", failure.IndexUnknown(fmt.Sprintf("cannot derive row from range %q", updatedRange)))
	}

	scope.SetAttribute("store.row", sheetRow-1)

	return sheetRow - 1, nil
}

// UpdateCell implements rowstore.Store.
func (s *Store) UpdateCell(ctx context.Context, index, column int, value string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".UpdateCell")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if index < 1 {
		return s.fail("update", failure.StoreRejected(fmt.Sprintf("row %d is not a data row", index)))
	}

	if column < 0 || column >= rowstore.NumColumns {
		return s.fail("update", failure.StoreRejected(fmt.Sprintf("column %d out of range", column)))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return s.fail("update", err)
	}

	target := a1(s.sheetName(), cellRef(index, column))

	_, err = sess.api.Spreadsheets.Values.Update(s.spreadsheetID(), target, &gsheets.ValueRange{
		Values: [][]any{{value}},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Str("range", target).Msg("failed to update cell")

		return s.fail("update", classify(err))
	}

	return nil
}

// DeleteRow implements rowstore.Store.
func (s *Store) DeleteRow(ctx context.Context, index int) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".DeleteRow")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if index < 1 {
		return s.fail("delete", failure.StoreRejected(fmt.Sprintf("row %d is not a data row", index)))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.session(ctx)
	if err != nil {
		return s.fail("delete", err)
	}

	// Data row N is grid row N counting from zero.
	_, err = sess.api.Spreadsheets.BatchUpdate(s.spreadsheetID(), &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:         sess.sheetID,
					Dimension:       dimensionRows,
					StartIndex:      int64(index),
					EndIndex:        int64(index + 1),
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		log.Error().Err(err).Int("row", index).Msg("failed to delete row")

		return s.fail("delete", classify(err))
	}

	return nil
}

func (s *Store) fail(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op, string(failure.GetKind(err))).Inc()

	return err
}
