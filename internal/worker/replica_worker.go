package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"n3portal/internal/sheet"
)

const DefaultReplicaInterval = 30 * time.Second

// ReplicaWorker keeps a replica store in step with the primary sheet.
// Rows are never deleted from the primary, so a replica only ever needs
// rows appended or rewritten.
type ReplicaWorker struct {
	primary  sheet.Store
	replica  sheet.Store
	interval time.Duration
}

func NewReplicaWorker(primary, replica sheet.Store, interval time.Duration) *ReplicaWorker {
	if interval <= 0 {
		interval = DefaultReplicaInterval
	}
	return &ReplicaWorker{
		primary:  primary,
		replica:  replica,
		interval: interval,
	}
}

func (w *ReplicaWorker) Start(ctx context.Context) {
	slog.Info("starting replica worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("replica worker stopped")
			return
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				slog.Error("replica sync failed", "error", err)
			}
		}
	}
}

// Sync copies one snapshot of the primary into the replica.
func (w *ReplicaWorker) Sync(ctx context.Context) error {
	src, err := w.primary.ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("read primary: %w", err)
	}
	dst, err := w.replica.ReadRows(ctx)
	if err != nil {
		return fmt.Errorf("read replica: %w", err)
	}

	var updated, appended int
	for i, vals := range src {
		row := i + 2
		vals = sheet.Pad(vals, len(sheet.Columns))

		if i < len(dst) {
			if slices.Equal(vals, sheet.Pad(dst[i], len(sheet.Columns))) {
				continue
			}
			if err := w.replica.UpdateRow(ctx, row, vals); err != nil {
				return fmt.Errorf("update replica row %d: %w", row, err)
			}
			updated++
			continue
		}

		got, err := w.replica.AppendRow(ctx, vals)
		if err != nil {
			return fmt.Errorf("append replica row %d: %w", row, err)
		}
		if got != row {
			return fmt.Errorf("replica appended row %d, expected %d", got, row)
		}
		appended++
	}

	if updated > 0 || appended > 0 {
		slog.Info("replica synced", "updated", updated, "appended", appended)
	}
	return nil
}
