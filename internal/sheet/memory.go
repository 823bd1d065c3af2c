package sheet

import (
	"context"
	"fmt"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process worksheet used by tests and the "memory" backend.
type Memory struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemory returns a worksheet holding only the header row.
func NewMemory() *Memory {
	return &Memory{rows: [][]string{append([]string(nil), Header...)}}
}

func (m *Memory) ReadColumn(_ context.Context, col string) ([]string, error) {
	idx, err := ColumnIndex(col)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Trailing blanks are trimmed like the Sheets API does.
	out := make([]string, 0, len(m.rows))
	last := -1
	for i, r := range m.rows {
		v := ""
		if idx < len(r) {
			v = r[idx]
		}
		if v != "" {
			last = i
		}
		out = append(out, v)
	}
	return out[:last+1], nil
}

func (m *Memory) ReadRow(_ context.Context, row int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return nil, fmt.Errorf("read row %d: %w", row, ErrRowOutOfRange)
	}
	return Pad(m.rows[row-1], len(Columns)), nil
}

func (m *Memory) ReadRows(_ context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, 0, len(m.rows))
	for _, r := range m.rows[1:] {
		out = append(out, Pad(r, len(Columns)))
	}
	return out, nil
}

func (m *Memory) AppendRow(_ context.Context, values []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, Pad(values, len(Columns)))
	return len(m.rows), nil
}

func (m *Memory) UpdateCell(_ context.Context, col string, row int, value string) error {
	idx, err := ColumnIndex(col)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return fmt.Errorf("update %s: %w", Cell(col, row), ErrRowOutOfRange)
	}
	m.rows[row-1][idx] = value
	return nil
}

func (m *Memory) UpdateCells(_ context.Context, col string, row int, values []string) error {
	idx, err := ColumnIndex(col)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return fmt.Errorf("update row %d: %w", row, ErrRowOutOfRange)
	}
	copy(m.rows[row-1][idx:], values)
	return nil
}

func (m *Memory) UpdateRow(ctx context.Context, row int, values []string) error {
	return m.UpdateCells(ctx, ColFirstName, row, values)
}
