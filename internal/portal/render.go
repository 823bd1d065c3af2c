package portal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"n3portal/internal/model"
)

type styles struct {
	title lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
}

// newStyles renders for out, so plain text is produced when out is not a
// terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		good:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("208")),
	}
}

func (p *Portal) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Portal) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *Portal) title(s string) {
	p.println(p.styles.title.Render(s))
}

func (p *Portal) success(s string) {
	p.println(p.styles.good.Render(s))
}

func (p *Portal) printCustomer(c model.Customer) {
	p.printf("Full Name : %s\nEmail : %s\n", c.FullName(), c.Email)
}

func (p *Portal) printOrderSummary(o model.Order) {
	p.println("\nYour order details are as follows:")
	p.printCustomer(o.Customer)
	p.printf("Shoe Size : EU %s\n", o.SizeString())
	p.printf("Arch Height : %s\n", o.Arch)
	p.printf("Insole Width : %s\n", o.Width)
}

func (p *Portal) printStoredOrder(o model.Order) {
	p.printf("Your order details are as follows:\n\n")
	p.printCustomer(o.Customer)
	p.printf("Shoe Size : EU %s\nArch Height : %s\nInsole Width : %s\n", o.SizeString(), o.Arch, o.Width)
	p.printf("Order No. : %s\nDate Ordered : %s\nCurrent Status : %s\n", o.NumberString(), o.OrderedAt, o.Status)
	p.printf("Row : %d\n\n", o.Row)
}

func (p *Portal) printEditable(o model.Order) {
	p.printf("\nYour order details are as follows:\n\n")
	p.printf("Order No. : %s\nDate Ordered : %s\nDatabase Row entry : %d\nCurrent Status : %s\n",
		o.NumberString(), o.OrderedAt, o.Row, o.Status)
	p.printf("\nDetails you can edit:\n\n")
	p.printf("1. First Name : %s\n2. Surname : %s\n3. Email : %s\n", o.FirstName, o.LastName, o.Email)
	p.printf("4. Shoe Size : EU %s\n5. Arch Height : %s\n6. Insole Width : %s\n\n", o.SizeString(), o.Arch, o.Width)
	p.println("7. Submit the above details")
	p.printf("8. Take me Home\n\n")
}

func (p *Portal) printBeyondProduction(o model.Order) {
	p.printf("\nAt the %s stage, this order is beyond the point in production\nwhere modifications can occur.\n", o.Status)
}

func (p *Portal) printCancelRefused(o model.Order) {
	p.printf("\nUnfortunately as a custom made product, this order is now at the\n%s stage, manufacturing has commenced and the opportunity\nto alter or cancel the order has passed.\n", o.Status)
	p.println("\nFor further clarification of made-to-order products purchased online,")
	p.println("specifically section 13(1)(c): UK Distance Selling Regulations, please visit:")
	p.println("https://www.legislation.gov.uk/uksi/2000/2334/contents/made")
	p.printf("Alternately, contact info@northotics.com referring order number : %s\n", o.NumberString())
	p.println("\nYour purchasing rights have not been affected.")
}
