package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"n3portal/internal/sheet"
)

var _ sheet.Store = (*Store)(nil)

// Store keeps the orders worksheet in PostgreSQL. Row 1 is the header and is
// not stored; data rows start at 2 like in the spreadsheet.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var selectColumns = strings.Join(sheet.Header, ", ")

func columnName(col string) (string, error) {
	idx, err := sheet.ColumnIndex(col)
	if err != nil {
		return "", err
	}
	return sheet.Header[idx], nil
}

func (s *Store) ReadColumn(ctx context.Context, col string) ([]string, error) {
	name, err := columnName(col)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM order_rows ORDER BY sheet_row`, name))
	if err != nil {
		return nil, fmt.Errorf("query column %s: %w", col, err)
	}
	defer rows.Close()

	out := []string{name}
	last := 0
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan column %s: %w", col, err)
		}
		out = append(out, v)
		if v != "" {
			last = len(out) - 1
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return out[:last+1], nil
}

func (s *Store) ReadRow(ctx context.Context, row int) ([]string, error) {
	if row == 1 {
		return append([]string(nil), sheet.Header...), nil
	}

	vals := make([]string, len(sheet.Header))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}

	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM order_rows WHERE sheet_row = $1`, selectColumns), row,
	).Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("read row %d: %w", row, sheet.ErrRowOutOfRange)
		}
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	return vals, nil
}

func (s *Store) ReadRows(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM order_rows ORDER BY sheet_row`, selectColumns))
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals := make([]string, len(sheet.Header))
		dest := make([]any, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, vals)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return out, nil
}

func (s *Store) AppendRow(ctx context.Context, values []string) (int, error) {
	vals := sheet.Pad(values, len(sheet.Header))
	args := make([]any, len(vals))
	placeholders := make([]string, len(vals))
	for i, v := range vals {
		args[i] = v
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO order_rows (sheet_row, %s)
		VALUES ((SELECT COALESCE(MAX(sheet_row), 1) + 1 FROM order_rows), %s)
		RETURNING sheet_row`,
		selectColumns, strings.Join(placeholders, ", "))

	var row int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&row); err != nil {
		return 0, fmt.Errorf("insert row: %w", err)
	}
	return row, nil
}

func (s *Store) UpdateCell(ctx context.Context, col string, row int, value string) error {
	name, err := columnName(col)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE order_rows SET %s = $1 WHERE sheet_row = $2`, name), value, row)
	if err != nil {
		return fmt.Errorf("update %s: %w", sheet.Cell(col, row), err)
	}
	return checkAffected(res, row)
}

func (s *Store) UpdateCells(ctx context.Context, col string, row int, values []string) error {
	start, err := sheet.ColumnIndex(col)
	if err != nil {
		return err
	}
	if len(values) > len(sheet.Header)-start {
		values = values[:len(sheet.Header)-start]
	}
	if len(values) == 0 {
		return nil
	}

	sets := make([]string, len(values))
	args := make([]any, 0, len(values)+1)
	for i, v := range values {
		sets[i] = fmt.Sprintf("%s = $%d", sheet.Header[start+i], i+1)
		args = append(args, v)
	}
	args = append(args, row)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE order_rows SET %s WHERE sheet_row = $%d`, strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return fmt.Errorf("update row %d: %w", row, err)
	}
	return checkAffected(res, row)
}

func (s *Store) UpdateRow(ctx context.Context, row int, values []string) error {
	return s.UpdateCells(ctx, sheet.ColFirstName, row, values)
}

func checkAffected(res sql.Result, row int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("row %d: %w", row, sheet.ErrRowOutOfRange)
	}
	return nil
}
