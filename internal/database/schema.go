package database

import (
	"context"
	"database/sql"
	"fmt"
)

// order_rows mirrors the orders worksheet: one column per sheet column,
// named after the header row, keyed by the sheet row number.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS order_rows (
    sheet_row    INTEGER PRIMARY KEY CHECK (sheet_row > 1),
    first_name   TEXT NOT NULL DEFAULT '',
    last_name    TEXT NOT NULL DEFAULT '',
    email        TEXT NOT NULL DEFAULT '',
    size_eu      TEXT NOT NULL DEFAULT '',
    height       TEXT NOT NULL DEFAULT '',
    width        TEXT NOT NULL DEFAULT '',
    order_no     TEXT NOT NULL DEFAULT '',
    order_date   TEXT NOT NULL DEFAULT '',
    order_status TEXT NOT NULL DEFAULT '',
    order_update TEXT NOT NULL DEFAULT '',
    row_no       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_order_rows_order_no ON order_rows(order_no);
CREATE INDEX IF NOT EXISTS idx_order_rows_status ON order_rows(order_status);
`

func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
