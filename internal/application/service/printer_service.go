package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/internal/domain/repository"
	"github.com/sangkips/shop-billing-api/pkg/apperror"
	"github.com/sangkips/shop-billing-api/pkg/logger"
	"github.com/sangkips/shop-billing-api/pkg/printer"
	"go.uber.org/zap"
)

// PrinterService formats invoices as thermal receipts and sends them to the
// configured printer.
type PrinterService struct {
	printer     printer.Printer
	invoiceRepo repository.InvoiceRepository
	printerType string
	width       int
	layout      BillLayout
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	invoiceRepo repository.InvoiceRepository,
	printerType string,
	width int,
	layout BillLayout,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		invoiceRepo: invoiceRepo,
		printerType: printerType,
		width:       width,
		layout:      layout,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// Enabled reports whether a real printer is configured.
func (s *PrinterService) Enabled() bool {
	return s.printerType != printer.TypeNone && s.printerType != ""
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.Enabled(),
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
		Width:      s.width,
	}
}

// TestPrint sends a sample receipt. The receipt is returned either way so
// callers without a printer can still inspect it.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:   s.header(),
		BillNo:   "TEST-001",
		Date:     "Printer test",
		Customer: DefaultCustomerName,
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: "10", Total: "10.00"},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: "5", Total: "10.00"},
		},
		SubTotal: "20.00",
		CGST:     "1.80",
		SGST:     "1.80",
		Total:    "23.60",
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintInvoice prints the receipt of an issued invoice.
func (s *PrinterService) PrintInvoice(ctx context.Context, inv *entity.Invoice) (*entity.Receipt, error) {
	receipt := BuildReceipt(inv, s.header())

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.width)); err != nil {
		if !errors.Is(err, printer.ErrNotConfigured) {
			logger.Error("Printer error", zap.String("bill_no", inv.BillNo), zap.Error(err))
		}
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// Reprint loads a stored invoice and prints it copies times (at least once).
func (s *PrinterService) Reprint(ctx context.Context, billNo string, copies int) (*entity.Receipt, error) {
	inv, err := s.invoiceRepo.GetByBillNo(ctx, billNo)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, apperror.NewNotFoundError("Invoice")
		}
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to load invoice", err)
	}

	if copies < 1 {
		copies = 1
	}
	var receipt *entity.Receipt
	for i := 0; i < copies; i++ {
		if receipt, err = s.PrintInvoice(ctx, inv); err != nil {
			return receipt, err
		}
	}
	return receipt, nil
}

func (s *PrinterService) header() entity.ReceiptHeader {
	return entity.ReceiptHeader{
		StoreName: s.layout.ShopName,
		Tagline:   s.layout.Tagline,
		TaxID:     s.layout.GSTIN,
		Website:   s.layout.Website,
	}
}

// BuildReceipt composes the printable receipt of an invoice.
func BuildReceipt(inv *entity.Invoice, header entity.ReceiptHeader) *entity.Receipt {
	receipt := &entity.Receipt{
		Header:   header,
		BillNo:   inv.BillNo,
		Date:     inv.IssuedAt.Format(billDateLayout),
		Customer: inv.CustomerName,
		Phone:    inv.CustomerPhone,
		Items:    make([]entity.ReceiptItem, 0, len(inv.Lines)),
		SubTotal: inv.SubTotal.StringFixed(2),
		CGST:     inv.TaxA.StringFixed(2),
		SGST:     inv.TaxB.StringFixed(2),
		Total:    inv.TotalAmount.StringFixed(2),
	}
	if receipt.Phone == DefaultPlaceholder {
		receipt.Phone = ""
	}

	for _, l := range inv.Lines {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      l.ProductName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			Total:     l.TotalPrice.StringFixed(2),
		})
	}
	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes for the given paper width.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Tagline != "" {
		doc.Text(r.Header.Tagline)
	}
	if r.Header.TaxID != "" {
		doc.TextF("GSTIN: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Bill No:", r.BillNo).
		KeyValue("Date:", r.Date)

	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.Phone != "" {
		doc.KeyValue("Phone:", r.Phone)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total)
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	doc.KeyValue("Subtotal:", r.SubTotal).
		KeyValue("CGST:", r.CGST).
		KeyValue("SGST:", r.SGST).
		SetBold(true).
		SetFontSize(printer.FontTall).
		KeyValue("TOTAL:", r.Total).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for shopping with us!")
	if r.Header.Website != "" {
		doc.Text(r.Header.Website)
	}
	doc.LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
