// Package portal is the interactive order portal: a loop of menu states,
// each reading input, calling the order service and naming the next state.
package portal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"n3portal/internal/model"
	"n3portal/internal/service"
	"n3portal/internal/validate"
)

// Orders is the part of the order service the portal drives.
type Orders interface {
	Submit(ctx context.Context, o model.Order) (model.Order, error)
	SavePending(ctx context.Context, o model.Order) (model.Order, error)
	Find(ctx context.Context, number string) (model.Order, error)
	CheckModifiable(ctx context.Context, o model.Order) (model.Order, error)
	SubmitChanges(ctx context.Context, o model.Order) (model.Order, error)
	Cancel(ctx context.Context, o model.Order) (model.Order, error)
}

const DefaultMaxAttempts = 10

type Portal struct {
	in          *bufio.Reader
	lines       chan lineResult
	out         io.Writer
	orders      Orders
	log         *slog.Logger
	maxAttempts int
	styles      styles

	// order is the record being entered, or the one last stored or retrieved.
	order model.Order
}

// stateFn is one menu; it returns the next menu, or nil to end the session.
type stateFn func(ctx context.Context) (stateFn, error)

func New(in io.Reader, out io.Writer, orders Orders, log *slog.Logger, maxAttempts int) *Portal {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = slog.Default()
	}
	return &Portal{
		in:          bufio.NewReader(in),
		out:         out,
		orders:      orders,
		log:         log,
		maxAttempts: maxAttempts,
		styles:      newStyles(out),
	}
}

// Run drives the session until the user exits or input ends. Store failures
// and exhausted retries end the session with an error.
func (p *Portal) Run(ctx context.Context) error {
	p.log.Info("session started")
	p.lines = make(chan lineResult)
	done := make(chan struct{})
	defer close(done)
	go p.readLines(done)

	var state stateFn = p.home
	for state != nil {
		next, err := state(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				p.println("\nInput closed, ending this session.")
				p.log.Info("session ended", "reason", "eof")
				return nil
			case ctx.Err() != nil:
				p.println("\nSession interrupted.")
				p.log.Info("session ended", "reason", "interrupted")
				return ctx.Err()
			}
			p.log.Error("session aborted", "error", err)
			return err
		}
		state = next
	}
	p.log.Info("session ended", "reason", "exit")
	return nil
}

func (p *Portal) home(ctx context.Context) (stateFn, error) {
	p.title("Welcome to N(3)ORTHOTICS order portal.")
	p.println()
	p.println("Use this app to directly access made-to-order N3D Printed Insoles")
	p.println("Please visit northotics.com/home for more information")
	p.println()
	p.println("Select 1. : Place a new N3D insole order")
	p.println("Select 2. : Retrieve an existing N3D order")
	p.println("Select 3. : Exit Program")
	p.println()

	choice, err := p.choose(ctx, "1", "2", "3")
	if err != nil {
		return nil, err
	}
	switch choice {
	case "1":
		return p.newOrder, nil
	case "2":
		return p.retrieve, nil
	}
	return p.exit, nil
}

func (p *Portal) exit(_ context.Context) (stateFn, error) {
	p.println("Exiting this n3orthotics session...")
	return nil, nil
}

func (p *Portal) newOrder(_ context.Context) (stateFn, error) {
	p.order = model.Order{}
	p.title("Place a N(3)ORTHOTICS.com N3D printed insole order:")
	p.println()
	p.println("Where prompted below, please enter your name and email.")
	p.println("This information should be in a valid syntax, with no spaces.")
	p.println("For example:")
	p.println()
	p.println("First Name: Rob")
	p.println("Last Name: Bertoez")
	p.println("Email: rubbertoez@yourdomain.com")
	p.println()
	return p.customerDetails, nil
}

func (p *Portal) customerDetails(ctx context.Context) (stateFn, error) {
	first, err := ask(ctx, p, "Your First Name: ", validate.Name)
	if err != nil {
		return nil, err
	}
	last, err := ask(ctx, p, "Your Last Name: ", validate.Name)
	if err != nil {
		return nil, err
	}
	email, err := ask(ctx, p, "Your Email: ", validate.Email)
	if err != nil {
		return nil, err
	}
	p.println("Email is valid...")

	p.order.Customer = model.Customer{FirstName: first, LastName: last, Email: email}
	return p.confirmCustomer, nil
}

func (p *Portal) confirmCustomer(ctx context.Context) (stateFn, error) {
	p.printCustomer(p.order.Customer)
	ok, err := p.confirm(ctx, "\nIs this information correct? y/n: ")
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.customerDetails, nil
	}
	p.printf("Thanks %s. Now lets customise your N3 Orthoses order...\n", p.order.FirstName)
	return p.productDetails, nil
}

func (p *Portal) productDetails(ctx context.Context) (stateFn, error) {
	size, err := ask(ctx, p, "\nWhat EU Shoe Size would you like to fit into?\n(sized in 0.5 increments between 19 and 50): ", validate.ShoeSize)
	if err != nil {
		return nil, err
	}
	arch, err := ask(ctx, p, "\nWhat level of support under the inside arch would you like?\n(L: Low Support / M: Medium Support / H: High Support): ", validate.ArchHeight)
	if err != nil {
		return nil, err
	}
	width, err := ask(ctx, p, "\nWidth of insole to fit the foot &/or shoe\n(N: Narrow / S: Standard / W: Wide): ", validate.InsoleWidth)
	if err != nil {
		return nil, err
	}

	p.order.ShoeSize = size
	p.order.Arch = arch
	p.order.Width = width
	p.printOrderSummary(p.order)
	return p.confirmSubmit, nil
}

func (p *Portal) confirmSubmit(ctx context.Context) (stateFn, error) {
	ok, err := p.confirm(ctx, "\nWould you like to submit this order? y/n: ")
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.confirmSave, nil
	}

	p.println("Contacting the mothership...")
	placed, err := p.orders.Submit(ctx, p.order)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	p.println("Information received...")
	p.order = placed
	p.log.Info("order submitted", "order", placed.Number, "row", placed.Row)

	p.success("Order Successfully Submitted!!")
	p.printf("\nYour order number is: %s\n", placed.NumberString())
	p.printf("Submitted on: %s\n", placed.OrderedAt)
	p.printOrderSummary(placed)
	return p.next, nil
}

func (p *Portal) confirmSave(ctx context.Context) (stateFn, error) {
	ok, err := p.confirm(ctx, "\nWould you like to save this order? y/n: ")
	if err != nil {
		return nil, err
	}
	if !ok {
		p.order = model.Order{}
		p.println("Order discarded.")
		return p.home, nil
	}

	saved, err := p.orders.SavePending(ctx, p.order)
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	p.order = saved
	p.log.Info("order saved as pending", "order", saved.Number, "row", saved.Row)

	p.success("Data successfully saved as PENDING.")
	p.printf("\nPlease carefully record order no : %s\nYou will need it to recall this item into the future.\n", saved.NumberString())
	return p.next, nil
}

// next is shown after an order was stored, cancelled or refused.
func (p *Portal) next(ctx context.Context) (stateFn, error) {
	p.println("\nWhat would you like to do next?")
	p.println("Select 1. : Change the features of this Order")
	p.println("Select 2. : Place a new N3D insole order")
	p.println("Select 3. : Retrieve an existing N(3) order")
	p.println("Select 4. : Take Me Home")
	p.println("Select 5. : Exit the N(3)Orthotics order portal")
	p.println()

	choice, err := p.choose(ctx, "1", "2", "3", "4", "5")
	if err != nil {
		return nil, err
	}
	switch choice {
	case "1":
		if p.order.Row == 0 {
			p.println("There is no stored order to change.")
			return p.next, nil
		}
		p.printf("Order No. %s\n", p.order.NumberString())
		return p.changeFeatures, nil
	case "2":
		p.println("Starting a new N3D insole order...")
		return p.newOrder, nil
	case "3":
		p.println("Retrieve an existing order...")
		p.println()
		return p.retrieve, nil
	case "4":
		p.println("Taking you to home page...")
		p.println()
		return p.home, nil
	}
	return p.exit, nil
}

func (p *Portal) retrieve(ctx context.Context) (stateFn, error) {
	p.title("Retrieve an existing N3D insole order :")
	p.println()
	p.println("Please enter your order number below.")
	p.println("This information should be in a valid syntax, with no spaces.")
	p.println("Example order_no format: 2205190001")
	p.println()

	found, err := ask(ctx, p, "Your Order Number: ", func(line string) (model.Order, error) {
		number, err := validate.OrderNumber(line)
		if err != nil {
			return model.Order{}, err
		}
		return p.orders.Find(ctx, number)
	})
	if err != nil {
		return nil, err
	}

	p.order = found
	p.printStoredOrder(found)
	return p.orderMenu, nil
}

func (p *Portal) orderMenu(ctx context.Context) (stateFn, error) {
	number := p.order.NumberString()
	p.printf("What would you like to do with order no. %s ?\n\n", number)
	p.println("Select 1. : Re-Print this order again (no changes)")
	p.println("Select 2. : Change the features")
	p.println("Select 3. : Place a new N3D insole order")
	p.println("Select 4. : Cancel order")
	p.println("Select 5. : Search different order")
	p.println("Select 6. : Take me home")
	p.println()

	choice, err := p.choose(ctx, "1", "2", "3", "4", "5", "6")
	if err != nil {
		return nil, err
	}
	switch choice {
	case "1":
		p.printf("Re-printing order number : %s...\n", number)
		return p.confirmSubmit, nil
	case "2":
		p.printf("Order No. %s\n", number)
		return p.changeFeatures, nil
	case "3":
		p.println("Starting a new N3D insole order...")
		return p.confirmCustomer, nil
	case "4":
		p.printf("Checking the current status of order no. %s ...\n", number)
		return p.cancel, nil
	case "5":
		return p.retrieve, nil
	}
	return p.home, nil
}

func (p *Portal) changeFeatures(ctx context.Context) (stateFn, error) {
	cur, err := p.orders.CheckModifiable(ctx, p.order)
	if err != nil {
		if errors.Is(err, service.ErrNotModifiable) {
			p.printf("Current order status is: %s\n", cur.Status)
			p.printBeyondProduction(cur)
			p.order = cur
			return p.next, nil
		}
		return nil, fmt.Errorf("check order: %w", err)
	}

	p.order.Status = cur.Status
	p.order.OrderedAt = cur.OrderedAt
	p.printf("Current order status is: %s\n", cur.Status)
	p.println("Order is modifiable.")
	p.printEditable(p.order)

	choice, err := p.choose(ctx, "1", "2", "3", "4", "5", "6", "7", "8")
	if err != nil {
		return nil, err
	}
	switch choice {
	case "1":
		p.order.FirstName, err = ask(ctx, p, "New First Name details: ", validate.Name)
	case "2":
		p.order.LastName, err = ask(ctx, p, "New Last Name details: ", validate.Name)
	case "3":
		p.order.Email, err = ask(ctx, p, "New Email details: ", validate.Email)
	case "4":
		p.order.ShoeSize, err = ask(ctx, p, "\nWhat EU Shoe Size would you like to fit into?\n(sized in 0.5 increments between 19 and 50): ", validate.ShoeSize)
	case "5":
		p.order.Arch, err = ask(ctx, p, "\nWhat level of support under the inside arch would you like?\n(L: Low Support / M: Medium Support / H: High Support): ", validate.ArchHeight)
	case "6":
		p.order.Width, err = ask(ctx, p, "\nWidth of insole to fit the foot &/or shoe\n(N: Narrow / S: Standard / W: Wide): ", validate.InsoleWidth)
	case "7":
		return p.submitChanges, nil
	case "8":
		return p.home, nil
	}
	if err != nil {
		return nil, err
	}
	return p.changeFeatures, nil
}

func (p *Portal) submitChanges(ctx context.Context) (stateFn, error) {
	p.printf("Accessing your order on row number : %d\n", p.order.Row)
	updated, err := p.orders.SubmitChanges(ctx, p.order)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotModifiable):
			p.printBeyondProduction(updated)
			return p.next, nil
		case errors.Is(err, validate.ErrInvalidFormat):
			p.invalid(err)
			return p.changeFeatures, nil
		}
		return nil, fmt.Errorf("submit changes: %w", err)
	}
	p.order = updated
	p.log.Info("order updated", "order", updated.Number, "row", updated.Row)

	p.println()
	p.success(fmt.Sprintf("Order No. %s successfully updated!", updated.NumberString()))
	p.println("Thanks for using the N(3)Orthotics order submission app.")
	p.println()
	return p.orderMenu, nil
}

func (p *Portal) cancel(ctx context.Context) (stateFn, error) {
	cur, err := p.orders.CheckModifiable(ctx, p.order)
	if err != nil {
		if errors.Is(err, service.ErrNotModifiable) {
			p.printf("Current order status is: %s\n", cur.Status)
			p.printCancelRefused(cur)
			p.order = cur
			return p.next, nil
		}
		return nil, fmt.Errorf("check order: %w", err)
	}

	p.printf("Current order status is: %s\n", cur.Status)
	p.println("Order is modifiable.")
	p.println()

	ok, err := p.confirm(ctx, "Are you sure you wish to cancel this order? y/n : ")
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.home, nil
	}

	canceled, err := p.orders.Cancel(ctx, cur)
	if err != nil {
		if errors.Is(err, service.ErrNotModifiable) {
			p.printCancelRefused(canceled)
			return p.next, nil
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	p.order = canceled
	p.log.Info("order canceled", "order", canceled.Number, "row", canceled.Row)

	p.println()
	p.success("Order successfully CANCELED.")
	p.printf("An email with its credit note details will be sent to %s\n", canceled.Email)
	p.printf("\nPlease carefully record the order no. %s\nYou will need it to refer to this action into the future.\n", canceled.NumberString())
	return p.next, nil
}
