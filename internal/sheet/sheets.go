package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var _ Store = (*Sheets)(nil)

// Sheets is a Store backed by one worksheet of a Google spreadsheet.
type Sheets struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	worksheet     string
}

// NewSheets authorises with a service-account key file and checks the
// spreadsheet is reachable.
func NewSheets(ctx context.Context, spreadsheetID, worksheet, credentialsFile string) (*Sheets, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, sheets.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	if _, err := svc.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", spreadsheetID, err)
	}

	return &Sheets{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

func (s *Sheets) rng(a1 string) string {
	return fmt.Sprintf("'%s'!%s", s.worksheet, a1)
}

func (s *Sheets) get(ctx context.Context, a1 string) ([][]interface{}, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.rng(a1)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *Sheets) ReadColumn(ctx context.Context, col string) ([]string, error) {
	if _, err := ColumnIndex(col); err != nil {
		return nil, err
	}
	rows, err := s.get(ctx, col+":"+col)
	if err != nil {
		return nil, fmt.Errorf("read column %s: %w", col, err)
	}

	out := make([]string, len(rows))
	for i, r := range rows {
		if len(r) > 0 {
			out[i] = fmt.Sprint(r[0])
		}
	}
	return out, nil
}

func (s *Sheets) ReadRow(ctx context.Context, row int) ([]string, error) {
	if row < 1 {
		return nil, fmt.Errorf("read row %d: %w", row, ErrRowOutOfRange)
	}
	rows, err := s.get(ctx, RowRange(row, len(Columns)))
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	if len(rows) == 0 {
		return Pad(nil, len(Columns)), nil
	}
	return toStrings(rows[0]), nil
}

func (s *Sheets) ReadRows(ctx context.Context) ([][]string, error) {
	rows, err := s.get(ctx, fmt.Sprintf("A2:%s", ColRowNo))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = toStrings(r)
	}
	return out, nil
}

func (s *Sheets) AppendRow(ctx context.Context, values []string) (int, error) {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}
	resp, err := s.values.Append(s.spreadsheetID, s.rng(fmt.Sprintf("A:%s", ColRowNo)), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("append row: empty update response")
	}
	return ParseRow(resp.Updates.UpdatedRange)
}

func (s *Sheets) UpdateCell(ctx context.Context, col string, row int, value string) error {
	if _, err := ColumnIndex(col); err != nil {
		return err
	}
	return s.update(ctx, Cell(col, row), []string{value})
}

func (s *Sheets) UpdateCells(ctx context.Context, col string, row int, values []string) error {
	a1, err := CellRange(col, row, len(values))
	if err != nil {
		return err
	}
	idx, _ := ColumnIndex(col)
	if len(values) > len(Columns)-idx {
		values = values[:len(Columns)-idx]
	}
	return s.update(ctx, a1, values)
}

func (s *Sheets) UpdateRow(ctx context.Context, row int, values []string) error {
	if len(values) > len(Columns) {
		values = values[:len(Columns)]
	}
	return s.update(ctx, RowRange(row, len(values)), values)
}

func (s *Sheets) update(ctx context.Context, a1 string, values []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}
	_, err := s.values.Update(s.spreadsheetID, s.rng(a1), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", a1, err)
	}
	return nil
}

func toStrings(r []interface{}) []string {
	out := make([]string, len(Columns))
	for i := 0; i < len(r) && i < len(out); i++ {
		out[i] = fmt.Sprint(r[i])
	}
	return out
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
