package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"n3portal/internal/lock"
	"n3portal/internal/model"
	"n3portal/internal/sheet"
	"n3portal/internal/validate"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotModifiable     = errors.New("order is beyond the point in production where modifications can occur")
	ErrSequenceExhausted = errors.New("order sequence exhausted for today")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

const orderNoLockKey = "n3portal:order-no"

type OrderService struct {
	store  sheet.Store
	locker lock.Locker
	now    func() time.Time
}

func NewOrderService(store sheet.Store, locker lock.Locker) *OrderService {
	return &OrderService{
		store:  store,
		locker: locker,
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

func (s *OrderService) timestamp() string {
	return s.now().UTC().Format(isoLayout)
}

// NextOrderNumber reads the last order number in the sheet and returns the
// one that would follow it today.
func (s *OrderService) NextOrderNumber(ctx context.Context) (int64, error) {
	col, err := s.store.ReadColumn(ctx, sheet.ColOrderNo)
	if err != nil {
		return 0, fmt.Errorf("read order numbers: %w", err)
	}
	return s.nextFromColumn(col)
}

func (s *OrderService) nextFromColumn(col []string) (int64, error) {
	last := ""
	if len(col) > 0 {
		last = col[len(col)-1]
	}
	return nextOrderNumber(last, s.now())
}

// Submit places the order: a new number, status NEW ORDER and today's date.
func (s *OrderService) Submit(ctx context.Context, o model.Order) (model.Order, error) {
	o.Status = model.StatusNew
	o.OrderedAt = s.timestamp()
	o.StatusUpdatedAt = ""
	return s.appendNew(ctx, o)
}

// SavePending stores the order without placing it.
func (s *OrderService) SavePending(ctx context.Context, o model.Order) (model.Order, error) {
	o.Status = model.StatusPending
	o.OrderedAt = ""
	o.StatusUpdatedAt = s.timestamp()
	return s.appendNew(ctx, o)
}

func (s *OrderService) appendNew(ctx context.Context, o model.Order) (model.Order, error) {
	if err := validate.Order(o); err != nil {
		return model.Order{}, err
	}

	unlock, err := s.locker.Lock(ctx, orderNoLockKey)
	if err != nil {
		return model.Order{}, fmt.Errorf("lock order numbers: %w", err)
	}
	defer unlock()

	col, err := s.store.ReadColumn(ctx, sheet.ColOrderNo)
	if err != nil {
		return model.Order{}, fmt.Errorf("read order numbers: %w", err)
	}

	o.Number, err = s.nextFromColumn(col)
	if err != nil {
		return model.Order{}, err
	}
	o.Row = len(col) + 1

	row, err := s.store.AppendRow(ctx, encodeRow(o))
	if err != nil {
		return model.Order{}, fmt.Errorf("append order %d: %w", o.Number, err)
	}
	if row != o.Row {
		slog.Warn("order landed on unexpected row", "order", o.Number, "expected", o.Row, "row", row)
		o.Row = row
		if err := s.store.UpdateCell(ctx, sheet.ColRowNo, row, strconv.Itoa(row)); err != nil {
			return model.Order{}, fmt.Errorf("record row of order %d: %w", o.Number, err)
		}
	}

	return o, nil
}

// Find looks an order up by its ten-digit number.
func (s *OrderService) Find(ctx context.Context, number string) (model.Order, error) {
	col, err := s.store.ReadColumn(ctx, sheet.ColOrderNo)
	if err != nil {
		return model.Order{}, fmt.Errorf("read order numbers: %w", err)
	}

	for i := 1; i < len(col); i++ {
		if col[i] == number {
			return s.Reload(ctx, i+1)
		}
	}
	return model.Order{}, fmt.Errorf("order %s: %w", number, ErrOrderNotFound)
}

// Reload reads the current state of one row.
func (s *OrderService) Reload(ctx context.Context, row int) (model.Order, error) {
	vals, err := s.store.ReadRow(ctx, row)
	if err != nil {
		if errors.Is(err, sheet.ErrRowOutOfRange) {
			return model.Order{}, fmt.Errorf("row %d: %w", row, ErrOrderNotFound)
		}
		return model.Order{}, fmt.Errorf("read order row: %w", err)
	}
	return decodeRow(row, vals)
}

// CheckModifiable returns the stored order, or ErrNotModifiable when its
// current status no longer allows customer changes.
func (s *OrderService) CheckModifiable(ctx context.Context, o model.Order) (model.Order, error) {
	cur, err := s.Reload(ctx, o.Row)
	if err != nil {
		return model.Order{}, err
	}
	if !cur.Status.Modifiable() {
		return cur, fmt.Errorf("%w: order %d is at the %s stage", ErrNotModifiable, cur.Number, cur.Status)
	}
	return cur, nil
}

// SubmitChanges rewrites the order's row with the edited values and marks it
// UPDATED ORDER.
func (s *OrderService) SubmitChanges(ctx context.Context, o model.Order) (model.Order, error) {
	if err := validate.Order(o); err != nil {
		return model.Order{}, err
	}

	cur, err := s.CheckModifiable(ctx, o)
	if err != nil {
		return cur, err
	}

	now := s.timestamp()
	o.Number = cur.Number
	o.OrderedAt = cur.OrderedAt
	if o.OrderedAt == "" {
		o.OrderedAt = now
	}
	o.Status = model.StatusUpdated
	o.StatusUpdatedAt = now

	// Columns A..J in one write; K keeps the row number.
	if err := s.store.UpdateRow(ctx, o.Row, encodeRow(o)[:len(sheet.Columns)-1]); err != nil {
		return model.Order{}, fmt.Errorf("update order %d: %w", o.Number, err)
	}
	return o, nil
}

// Cancel marks a still-modifiable order CANCELED.
func (s *OrderService) Cancel(ctx context.Context, o model.Order) (model.Order, error) {
	cur, err := s.CheckModifiable(ctx, o)
	if err != nil {
		return cur, err
	}
	return s.writeStatus(ctx, cur, model.StatusCanceled)
}

func (s *OrderService) writeStatus(ctx context.Context, o model.Order, status model.Status) (model.Order, error) {
	o.Status = status
	o.StatusUpdatedAt = s.timestamp()

	// I and J together.
	if err := s.store.UpdateCells(ctx, sheet.ColStatus, o.Row, []string{string(o.Status), o.StatusUpdatedAt}); err != nil {
		return model.Order{}, fmt.Errorf("update status of order %d: %w", o.Number, err)
	}
	return o, nil
}

// SetStatus moves an order to a production status on behalf of staff.
func (s *OrderService) SetStatus(ctx context.Context, number string, status model.Status) (model.Order, error) {
	cur, err := s.Find(ctx, number)
	if err != nil {
		return model.Order{}, err
	}
	if !cur.Status.CanTransition(status) {
		return cur, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, cur.Status, status)
	}
	return s.writeStatus(ctx, cur, status)
}

// List returns every order, or only those in status when it is not empty.
func (s *OrderService) List(ctx context.Context, status model.Status) ([]model.Order, error) {
	rows, err := s.store.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	var orders []model.Order
	for i, vals := range rows {
		if blankRow(vals) {
			continue
		}
		o, err := decodeRow(i+2, vals)
		if err != nil {
			return nil, err
		}
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
