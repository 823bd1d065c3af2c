package portal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n3portal/internal/lock"
	"n3portal/internal/model"
	"n3portal/internal/service"
	"n3portal/internal/sheet"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

type harness struct {
	store *sheet.Memory
	svc   *service.OrderService
	out   bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := sheet.NewMemory()
	return &harness{
		store: store,
		svc:   service.NewOrderService(store, lock.NewLocal()).WithClock(func() time.Time { return fixedNow }),
	}
}

func (h *harness) run(t *testing.T, maxAttempts int, lines ...string) error {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(in, &h.out, h.svc, log, maxAttempts).Run(context.Background())
}

func (h *harness) seed(t *testing.T, status model.Status) model.Order {
	t.Helper()
	ctx := context.Background()
	o, err := h.svc.Submit(ctx, model.Order{
		Customer: model.Customer{FirstName: "Ann", LastName: "Lee", Email: "ann@lee.com"},
		ShoeSize: 38.5,
		Arch:     model.ArchLow,
		Width:    model.WidthWide,
	})
	require.NoError(t, err)
	require.NoError(t, h.store.UpdateCell(ctx, sheet.ColStatus, o.Row, string(status)))
	o.Status = status
	return o
}

func TestNewOrderSubmitted(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, 0,
		"1",              // home: new order
		"rob", "bertoez", // names
		"rubbertoez@yourdomain.com",
		"y",  // details correct
		"25", // size
		"m",  // arch
		"s",  // width
		"y",  // submit
		"5",  // exit
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "Full Name : Rob Bertoez")
	assert.Contains(t, out, "Order Successfully Submitted!!")
	assert.Contains(t, out, "Your order number is: 2610180001")
	assert.Contains(t, out, "Shoe Size : EU 25.0")
	assert.Contains(t, out, "Arch Height : Medium")
	assert.Contains(t, out, "Insole Width : Standard")
	assert.Contains(t, out, "Exiting this n3orthotics session...")

	vals, err := h.store.ReadRow(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rob", "Bertoez", "rubbertoez@yourdomain.com", "25.0", "Medium", "Standard"}, vals[:6])
	assert.Equal(t, "2610180001", vals[6])
	assert.Equal(t, "NEW ORDER", vals[8])
}

func TestInvalidInputIsReprompted(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, 0,
		"7", "1", // bad menu choice first
		"rob1", "rob",
		"bertoez",
		"not-an-email", "rob@toez.com",
		"n", // re-enter details
		"ann", "lee", "ann@lee.com",
		"maybe", "y",
		"60", "25.3", "44.5",
		"x", "h",
		"q", "w",
		"y",
		"5",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, `the number you have provided "7" is not available`)
	assert.Contains(t, out, `the name you have provided "Rob1" does not seem to be in a regular format`)
	assert.Contains(t, out, "not within the European shoe size range")
	assert.Contains(t, out, "incorrect information provided for European shoe sizing: 25.3")

	vals, err := h.store.ReadRow(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Lee", "ann@lee.com", "44.5", "High", "Wide"}, vals[:6])
}

func TestTooManyAttempts(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, 3, "1", "1nvalid", "2nvalid", "3nvalid", "rob")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestEOFEndsSession(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, 0, "1", "rob"))
	assert.Contains(t, h.out.String(), "Input closed")
}

func TestSaveAsPendingAndDiscard(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, 0,
		"1", "rob", "bertoez", "rob@toez.com", "y", "42", "l", "n",
		"n", // do not submit
		"y", // save
		"4", // home
		"1", "ann", "lee", "ann@lee.com", "y", "40", "l", "n",
		"n", "n", // neither submit nor save
		"3",
	)
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Data successfully saved as PENDING.")
	assert.Contains(t, h.out.String(), "Order discarded.")

	rows, err := h.store.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PENDING", rows[0][8])
	assert.Empty(t, rows[0][7])
}

func TestRetrieveAndChangeFeatures(t *testing.T) {
	h := newHarness(t)
	seeded := h.seed(t, model.StatusAccepted)

	err := h.run(t, 0,
		"2",
		"123",        // too short
		"2610189999", // unknown
		seeded.NumberString(),
		"2",         // change the features
		"1", "anne", // new first name
		"4", "39", // new size
		"7", // submit changes
		"6", // home
		"3",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "our order numbers require 10 digits")
	assert.Contains(t, out, "order not found")
	assert.Contains(t, out, "Current Status : ACCEPTED")
	assert.Contains(t, out, "Order is modifiable.")
	assert.Contains(t, out, "Order No. 2610180001 successfully updated!")

	got, err := h.svc.Find(context.Background(), seeded.NumberString())
	require.NoError(t, err)
	assert.Equal(t, "Anne", got.FirstName)
	assert.Equal(t, 39.0, got.ShoeSize)
	assert.Equal(t, model.StatusUpdated, got.Status)
}

func TestChangeFeaturesDenied(t *testing.T) {
	h := newHarness(t)
	seeded := h.seed(t, model.StatusSubmittedToPrint)

	err := h.run(t, 0, "2", seeded.NumberString(), "2", "5")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "At the SUBMITTED TO PRINT stage, this order is beyond the point in production")
}

func TestCancel(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		h := newHarness(t)
		seeded := h.seed(t, model.StatusNew)

		err := h.run(t, 0, "2", seeded.NumberString(), "4", "n", "3")
		require.NoError(t, err)

		got, err := h.svc.Find(context.Background(), seeded.NumberString())
		require.NoError(t, err)
		assert.Equal(t, model.StatusNew, got.Status)
	})

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t)
		seeded := h.seed(t, model.StatusDesigned)

		err := h.run(t, 0, "2", seeded.NumberString(), "4", "y", "5")
		require.NoError(t, err)
		assert.Contains(t, h.out.String(), "Order successfully CANCELED.")
		assert.Contains(t, h.out.String(), "credit note details will be sent to ann@lee.com")

		got, err := h.svc.Find(context.Background(), seeded.NumberString())
		require.NoError(t, err)
		assert.Equal(t, model.StatusCanceled, got.Status)
	})

	t.Run("refused", func(t *testing.T) {
		h := newHarness(t)
		seeded := h.seed(t, model.StatusCanceled)

		err := h.run(t, 0, "2", seeded.NumberString(), "4", "5")
		require.NoError(t, err)
		assert.Contains(t, h.out.String(), "UK Distance Selling Regulations")
	})
}

func TestReprintCreatesNewOrder(t *testing.T) {
	h := newHarness(t)
	seeded := h.seed(t, model.StatusNew)

	err := h.run(t, 0, "2", seeded.NumberString(), "1", "y", "5")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Your order number is: 2610180002")

	rows, err := h.store.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0][:6], rows[1][:6])
}

func TestCancelledContextEndsBlockedPrompt(t *testing.T) {
	h := newHarness(t)
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(pr, &h.out, h.svc, log, 0)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	_, err := pw.Write([]byte("1\n"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run kept waiting for input after cancellation")
	}
}

func TestLegacyRowCanBeCorrectedWhileEditing(t *testing.T) {
	h := newHarness(t)
	seeded := h.seed(t, model.StatusNew)
	require.NoError(t, h.store.UpdateCell(context.Background(), sheet.ColEmail, seeded.Row, "ann@lee"))

	err := h.run(t, 0,
		"2", seeded.NumberString(),
		"2",       // change the features
		"4", "40", // new size
		"7",                  // submit: stored email fails validation
		"3", "ann@lee.co.uk", // fix the email
		"7",
		"6", // home
		"3",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, `Invalid data: the Email "ann@lee" does not pass the orderemail check`)
	assert.Contains(t, out, "Order No. 2610180001 successfully updated!")

	got, err := h.svc.Find(context.Background(), seeded.NumberString())
	require.NoError(t, err)
	assert.Equal(t, "ann@lee.co.uk", got.Email)
	assert.Equal(t, 40.0, got.ShoeSize)
	assert.Equal(t, model.StatusUpdated, got.Status)
}
