package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Customer placeholders used when the counter leaves a field blank.
const (
	DefaultCustomerName = "Walk-in Customer"
	DefaultPlaceholder  = "N/A"
)

const (
	billWidth       = 40
	itemNameWidth   = 15
	billNoLayout    = "20060102150405"
	billDateLayout  = "2006-01-02 15:04:05"
	amountLabelSize = 29

	// Header indents of the printed bill heading.
	shopNameIndent = 8
	taglineIndent  = 5
)

var hundred = decimal.NewFromInt(100)

// BillLayout carries the shop details printed on every bill.
type BillLayout struct {
	Prefix   string
	ShopName string
	Tagline  string
	GSTIN    string
	Website  string
	Currency string
}

// BillNumber derives the bill number for an issue time.
func BillNumber(prefix string, issuedAt time.Time) string {
	return prefix + issuedAt.Format(billNoLayout)
}

// FormatBillDate formats t the way dates appear on the printed bill.
func FormatBillDate(t time.Time) string {
	return t.Local().Format(billDateLayout)
}

// splitTax returns one GST half for a line: lineTotal * (rate/2) / 100,
// rounded half-to-even to paise. Both halves use this same value.
func splitTax(lineTotal, rate decimal.Decimal) decimal.Decimal {
	half := rate.Div(decimal.NewFromInt(2))
	return lineTotal.Mul(half).Div(hundred).RoundBank(2)
}

// NormalizeCustomer fills blank customer fields with the bill placeholders.
func NormalizeCustomer(c entity.Customer) entity.Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	if c.Name == "" {
		c.Name = DefaultCustomerName
	}
	if c.Phone == "" {
		c.Phone = DefaultPlaceholder
	}
	if c.Address == "" {
		c.Address = DefaultPlaceholder
	}
	return c
}

// ComputeInvoice turns a cart snapshot into an invoice with its line records
// and the printable bill text. The GST rate of every line comes from the
// catalog; a product missing from it fails the whole computation. An empty
// snapshot yields zero totals.
func ComputeInvoice(lines []entity.CartLine, customer entity.Customer, catalog Catalog, issuedAt time.Time, layout BillLayout) (*entity.Invoice, string, error) {
	customer = NormalizeCustomer(customer)

	invoice := &entity.Invoice{
		BillNo:          BillNumber(layout.Prefix, issuedAt),
		IssuedAt:        issuedAt,
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		SubTotal:        decimal.Zero,
		TaxA:            decimal.Zero,
		TaxB:            decimal.Zero,
		Lines:           make([]entity.InvoiceLine, 0, len(lines)),
	}

	halfRates := make(map[string]struct{})
	var halfRate decimal.Decimal

	for _, line := range lines {
		product, err := catalog.Lookup(line.Product)
		if err != nil {
			return nil, "", err
		}

		lineTotal := line.LineTotal()
		invoice.SubTotal = invoice.SubTotal.Add(lineTotal)

		// Accumulate both halves independently, exactly as rounded per line.
		taxA := splitTax(lineTotal, product.GSTRate)
		taxB := splitTax(lineTotal, product.GSTRate)
		invoice.TaxA = invoice.TaxA.Add(taxA)
		invoice.TaxB = invoice.TaxB.Add(taxB)

		halfRate = product.HalfRate()
		halfRates[halfRate.String()] = struct{}{}

		invoice.Lines = append(invoice.Lines, entity.InvoiceLine{
			BillNo:      invoice.BillNo,
			ProductName: line.Product,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
			TotalPrice:  lineTotal.RoundBank(2),
		})
	}

	invoice.SubTotal = invoice.SubTotal.RoundBank(2)
	invoice.TotalAmount = invoice.SubTotal.Add(invoice.TaxA).Add(invoice.TaxB).RoundBank(2)

	rateLabel := ""
	if len(halfRates) == 1 {
		rateLabel = halfRate.String()
	}

	return invoice, RenderBill(invoice, layout, rateLabel), nil
}

// RenderBill lays the invoice out as fixed-width text. rateLabel is the GST
// half-rate shown next to CGST/SGST; leave it empty for mixed-rate bills.
func RenderBill(inv *entity.Invoice, layout BillLayout, rateLabel string) string {
	var b strings.Builder
	double := strings.Repeat("=", billWidth)
	single := strings.Repeat("-", billWidth)

	b.WriteString(double + "\n")
	b.WriteString(indent(layout.ShopName, shopNameIndent) + "\n")
	if layout.Tagline != "" {
		b.WriteString(indent(layout.Tagline, taglineIndent) + "\n")
	}
	b.WriteString(double + "\n")
	fmt.Fprintf(&b, "Bill No: %s\n", inv.BillNo)
	fmt.Fprintf(&b, "Date: %s\n", inv.IssuedAt.Format(billDateLayout))
	fmt.Fprintf(&b, "Customer: %s\n", inv.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", inv.CustomerPhone)
	fmt.Fprintf(&b, "Address: %s\n", inv.CustomerAddress)
	if layout.GSTIN != "" {
		fmt.Fprintf(&b, "GSTIN: %s\n", layout.GSTIN)
	}
	b.WriteString(single + "\n")
	b.WriteString("ITEM                QTY  RATE    AMOUNT\n")
	b.WriteString(single + "\n")

	for _, line := range inv.Lines {
		fmt.Fprintf(&b, "%-15s %3d %5s %8s\n",
			truncate(line.ProductName, itemNameWidth),
			line.Quantity,
			line.UnitPrice.String(),
			line.TotalPrice.StringFixed(2),
		)
	}

	cgst, sgst := "CGST:", "SGST:"
	if rateLabel != "" {
		cgst = "CGST @ " + rateLabel + "%:"
		sgst = "SGST @ " + rateLabel + "%:"
	}

	b.WriteString(single + "\n")
	writeAmount(&b, "Subtotal:", layout.Currency, inv.SubTotal)
	writeAmount(&b, cgst, layout.Currency, inv.TaxA)
	writeAmount(&b, sgst, layout.Currency, inv.TaxB)
	b.WriteString(single + "\n")
	writeAmount(&b, "TOTAL AMOUNT:", layout.Currency, inv.TotalAmount)
	b.WriteString(single + "\n")
	b.WriteString("Thank you for shopping with us!\n")
	if layout.Website != "" {
		fmt.Fprintf(&b, "Visit: %s\n", layout.Website)
	}
	b.WriteString(double)

	return b.String()
}

func writeAmount(b *strings.Builder, label, currency string, amount decimal.Decimal) {
	fmt.Fprintf(b, "%-*s%s%8s\n", amountLabelSize, label, currency, amount.StringFixed(2))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func indent(s string, n int) string {
	return strings.Repeat(" ", n) + s
}
