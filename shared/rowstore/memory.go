package rowstore

import (
	"context"
	"fmt"
	"sync"

	"cafebook/shared/failure"
)

// Memory is a Store kept in process memory. It backs STORE_DRIVER=memory and tests.
type Memory struct {
	mu   sync.Mutex
	rows [][]string

	// HideAppendIndex makes AppendRow write the row and then report
	// failure.ErrIndexUnknown, the way a remote store does when its
	// response carries no range.
	HideAppendIndex bool
}

func NewMemory(rows ...[]string) *Memory {
	m := &Memory{}
	for _, cells := range rows {
		m.rows = append(m.rows, Pad(cells))
	}

	return m
}

func (m *Memory) FetchRows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure.StoreUnavailable(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]Row, 0, len(m.rows))
	for i, cells := range m.rows {
		rows = append(rows, Row{Index: i + 1, Cells: append([]string(nil), cells...)})
	}

	return rows, nil
}

func (m *Memory) AppendRow(ctx context.Context, cells []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, failure.StoreUnavailable(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, Pad(cells))

	if m.HideAppendIndex {
		return 0, failure.IndexUnknown("memory store hides append index")
	}

	return len(m.rows), nil
}

func (m *Memory) UpdateCell(ctx context.Context, index, column int, value string) error {
	if err := ctx.Err(); err != nil {
		return failure.StoreUnavailable(err.Error())
	}

	if column < 0 || column >= NumColumns {
		return failure.StoreRejected(fmt.Sprintf("column %d out of range", column))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 1 || index > len(m.rows) {
		return failure.StoreRejected(fmt.Sprintf("row %d out of range", index))
	}

	m.rows[index-1][column] = value

	return nil
}

func (m *Memory) DeleteRow(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return failure.StoreUnavailable(err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 1 || index > len(m.rows) {
		return failure.StoreRejected(fmt.Sprintf("row %d out of range", index))
	}

	m.rows = append(m.rows[:index-1], m.rows[index:]...)

	return nil
}

// Len returns the number of data rows.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rows)
}
