// Package sheet describes the tabular store holding one row per order and
// provides its Google Sheets and in-memory backends.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column letters of the orders worksheet.
const (
	ColFirstName    = "A"
	ColLastName     = "B"
	ColEmail        = "C"
	ColShoeSize     = "D"
	ColArchHeight   = "E"
	ColInsoleWidth  = "F"
	ColOrderNo      = "G"
	ColOrderDate    = "H"
	ColStatus       = "I"
	ColStatusUpdate = "J"
	ColRowNo        = "K"
)

// Columns lists the worksheet columns in order, A through K.
var Columns = []string{
	ColFirstName, ColLastName, ColEmail, ColShoeSize, ColArchHeight, ColInsoleWidth,
	ColOrderNo, ColOrderDate, ColStatus, ColStatusUpdate, ColRowNo,
}

// Header is the first row of a freshly initialised worksheet.
var Header = []string{
	"first_name", "last_name", "email", "size_eu", "height", "width",
	"order_no", "order_date", "order_status", "order_update", "row_no",
}

var (
	ErrRowOutOfRange = errors.New("row out of range")
	ErrUnknownColumn = errors.New("unknown column")
)

// Store is the remote worksheet. Rows are 1-based and row 1 is the header.
type Store interface {
	// ReadColumn returns every value of col, header included.
	ReadColumn(ctx context.Context, col string) ([]string, error)
	// ReadRow returns columns A..K of one row.
	ReadRow(ctx context.Context, row int) ([]string, error)
	// ReadRows returns every data row, header excluded.
	ReadRows(ctx context.Context) ([][]string, error)
	// AppendRow writes values after the last row and returns its row number.
	AppendRow(ctx context.Context, values []string) (int, error)
	UpdateCell(ctx context.Context, col string, row int, value string) error
	// UpdateCells overwrites adjacent cells of one row starting at col.
	UpdateCells(ctx context.Context, col string, row int, values []string) error
	// UpdateRow overwrites the row starting at column A.
	UpdateRow(ctx context.Context, row int, values []string) error
}

// ColumnIndex returns the zero-based index of a column letter.
func ColumnIndex(col string) (int, error) {
	for i, c := range Columns {
		if c == col {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
}

// Cell renders an A1 address such as "I7".
func Cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

// RowRange renders the A1 range covering n columns of a row starting at A.
func RowRange(row, n int) string {
	if n < 1 {
		n = 1
	}
	if n > len(Columns) {
		n = len(Columns)
	}
	return fmt.Sprintf("%s%d:%s%d", ColFirstName, row, Columns[n-1], row)
}

// CellRange renders the A1 range covering n cells of a row starting at col,
// e.g. "I7:J7". The range is cut at column K.
func CellRange(col string, row, n int) (string, error) {
	start, err := ColumnIndex(col)
	if err != nil {
		return "", err
	}
	end := start + n - 1
	if end < start {
		end = start
	}
	if end >= len(Columns) {
		end = len(Columns) - 1
	}
	return fmt.Sprintf("%s%d:%s%d", col, row, Columns[end], row), nil
}

// ParseRow extracts the first row number from an A1 range such as
// "orders!A5:K5".
func ParseRow(a1 string) (int, error) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZ$")
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return 0, fmt.Errorf("parse row from range %q: %w", a1, ErrRowOutOfRange)
	}
	return row, nil
}

// Pad returns values padded with empty strings, or truncated, to n entries.
func Pad(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}
