// Package rowstore defines the tabular store reservations live in. Rows are
// addressed by their 1-based position among data rows; the header row is not
// addressable. A position is only meaningful for the fetch that returned it.
package rowstore

//go:generate go run go.uber.org/mock/mockgen -source=./store.go -destination=./mocks/rowstore_mock.go -package=mocks

import (
	"context"
	"strings"
)

// Column positions of the reservation schema.
const (
	ColReserverDisplay = iota
	ColResourceName
	ColDate
	ColStartTime
	ColEndTime
	ColOwnerID
	ColCreatedAt
	ColParticipants
	ColReminded

	NumColumns
)

// Header is the first row of every store.
var Header = []string{
	"reserver_display",
	"resource_name",
	"date",
	"start_time",
	"end_time",
	"owner_id",
	"created_at",
	"participants_json",
	"reminded",
}

type Row struct {
	Index int
	Cells []string
}

// Cell returns the cell at column or "" when the row is short.
func (r Row) Cell(column int) string {
	if column < 0 || column >= len(r.Cells) {
		return ""
	}

	return r.Cells[column]
}

type Store interface {
	FetchRows(ctx context.Context) ([]Row, error)
	// AppendRow returns the index of the new row. failure.ErrIndexUnknown
	// means the row was written but its position could not be derived.
	AppendRow(ctx context.Context, cells []string) (int, error)
	UpdateCell(ctx context.Context, index, column int, value string) error
	DeleteRow(ctx context.Context, index int) error
}

// Pad returns cells resized to NumColumns.
func Pad(cells []string) []string {
	out := make([]string, NumColumns)
	copy(out, cells)

	return out
}

// IsHeader reports whether cells equal Header, ignoring case and surrounding space.
func IsHeader(cells []string) bool {
	if len(cells) < NumColumns {
		return false
	}

	for i, name := range Header {
		if !strings.EqualFold(strings.TrimSpace(cells[i]), name) {
			return false
		}
	}

	return true
}
