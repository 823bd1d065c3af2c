package service

import (
	"strconv"
	"strings"
	"time"
)

const (
	orderDateLayout = "060102"
	sequenceSpan    = 10000
	maxSequence     = sequenceSpan - 1
)

// nextOrderNumber builds YYMMDD×10000+sequence from today's UTC date and
// the last number in the order column. The sequence restarts at 1 on a new
// day or when last is not an order number (header, blank).
func nextOrderNumber(last string, now time.Time) (int64, error) {
	date, err := strconv.ParseInt(now.UTC().Format(orderDateLayout), 10, 64)
	if err != nil {
		return 0, err
	}

	seq := int64(1)
	last = strings.TrimSpace(last)
	if n, err := strconv.ParseInt(last, 10, 64); err == nil && len(last) == 10 && n/sequenceSpan == date {
		seq = n%sequenceSpan + 1
	}
	if seq > maxSequence {
		return 0, ErrSequenceExhausted
	}

	return date*sequenceSpan + seq, nil
}
