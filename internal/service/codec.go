package service

import (
	"fmt"
	"strconv"
	"strings"

	"n3portal/internal/model"
	"n3portal/internal/sheet"
)

// Matches Python's datetime.isoformat() for UTC, which the existing rows use.
const isoLayout = "2006-01-02T15:04:05.000000-07:00"

// encodeRow lays an order out as worksheet columns A..K.
func encodeRow(o model.Order) []string {
	row := ""
	if o.Row > 0 {
		row = strconv.Itoa(o.Row)
	}
	number := ""
	if o.Number > 0 {
		number = o.NumberString()
	}
	return []string{
		o.FirstName,
		o.LastName,
		o.Email,
		o.SizeString(),
		string(o.Arch),
		string(o.Width),
		number,
		o.OrderedAt,
		string(o.Status),
		o.StatusUpdatedAt,
		row,
	}
}

func blankRow(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// decodeRow reads worksheet columns A..K of the given row back into an order.
func decodeRow(row int, vals []string) (model.Order, error) {
	vals = sheet.Pad(vals, len(sheet.Columns))
	if blankRow(vals) {
		return model.Order{}, fmt.Errorf("row %d: %w", row, ErrOrderNotFound)
	}

	o := model.Order{
		Customer: model.Customer{
			FirstName: vals[0],
			LastName:  vals[1],
			Email:     vals[2],
		},
		Arch:            model.ArchHeight(vals[4]),
		Width:           model.InsoleWidth(vals[5]),
		OrderedAt:       vals[7],
		Status:          model.Status(vals[8]),
		StatusUpdatedAt: vals[9],
		Row:             row,
	}

	if s := strings.TrimSpace(vals[3]); s != "" {
		size, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Order{}, fmt.Errorf("row %d: parse shoe size %q: %w", row, s, err)
		}
		o.ShoeSize = size
	}
	if s := strings.TrimSpace(vals[6]); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Order{}, fmt.Errorf("row %d: parse order number %q: %w", row, s, err)
		}
		o.Number = n
	}

	return o, nil
}
