package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/internal/domain/repository"
	"github.com/sangkips/shop-billing-api/pkg/apperror"
	"github.com/sangkips/shop-billing-api/pkg/export"
	"github.com/sangkips/shop-billing-api/pkg/logger"
	"github.com/sangkips/shop-billing-api/pkg/pagination"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when a bill is requested for an empty cart.
var ErrEmptyCart = apperror.NewBadRequestError("Cart is empty")

// BillWriter persists the rendered bill text and returns the file name.
type BillWriter interface {
	Write(issuedAt time.Time, text string) (string, error)
}

// BillResult is the outcome of a successful checkout.
type BillResult struct {
	Bill     string          `json:"bill"`
	Filename string          `json:"filename"`
	BillNo   string          `json:"bill_no"`
	Saved    bool            `json:"saved"`
	Printed  bool            `json:"printed"`
	Invoice  *entity.Invoice `json:"invoice"`
}

// BillingService turns carts into issued invoices.
type BillingService struct {
	carts     *CartService
	catalog   Catalog
	repo      repository.InvoiceRepository
	files     BillWriter
	printer   *PrinterService
	layout    BillLayout
	autoPrint bool

	now        func() time.Time
	mu         sync.Mutex
	lastIssued time.Time
}

// NewBillingService creates a billing service. printer may be nil.
func NewBillingService(
	carts *CartService,
	catalog Catalog,
	repo repository.InvoiceRepository,
	files BillWriter,
	printer *PrinterService,
	layout BillLayout,
) *BillingService {
	return &BillingService{
		carts:     carts,
		catalog:   catalog,
		repo:      repo,
		files:     files,
		printer:   printer,
		layout:    layout,
		autoPrint: printer != nil && printer.Enabled(),
		now:       time.Now,
	}
}

// issueTime returns a timestamp, truncated to the second, that is strictly
// later than every earlier one so bill numbers never repeat within a process.
func (s *BillingService) issueTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().Truncate(time.Second)
	if !t.After(s.lastIssued) {
		t = s.lastIssued.Add(time.Second)
	}
	s.lastIssued = t
	return t
}

// GenerateBill computes the bill for the session's cart, writes the bill file,
// stores the invoice and clears the cart. A storage failure is logged and
// reported through Saved; the bill is still issued and the cart cleared.
func (s *BillingService) GenerateBill(ctx context.Context, session string, customer entity.Customer) (*BillResult, error) {
	var result *BillResult

	err := s.carts.Checkout(session, func(lines []entity.CartLine) error {
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		issuedAt := s.issueTime()
		invoice, text, err := ComputeInvoice(lines, customer, s.catalog, issuedAt, s.layout)
		if err != nil {
			if errors.Is(err, ErrUnknownProduct) {
				return apperror.Wrap(apperror.ErrUnprocessable.Code, err.Error(), err)
			}
			return err
		}
		log := logger.With(zap.String("bill_no", invoice.BillNo))

		filename, err := s.files.Write(issuedAt, text)
		if err != nil {
			log.Error("Failed to write bill file", zap.Error(err))
			return apperror.Wrap(http.StatusInternalServerError, "Failed to write bill file", err)
		}

		result = &BillResult{
			Bill:     text,
			Filename: filename,
			BillNo:   invoice.BillNo,
			Saved:    true,
			Invoice:  invoice,
		}

		if err := s.repo.Save(ctx, invoice); err != nil {
			log.Error("Failed to save invoice", zap.Error(err))
			result.Saved = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.With(zap.String("bill_no", result.BillNo)).Info("Bill generated",
		zap.String("session", session),
		zap.Int("lines", len(result.Invoice.Lines)),
		zap.String("total", result.Invoice.TotalAmount.StringFixed(2)),
		zap.Bool("saved", result.Saved),
	)

	if s.autoPrint {
		if _, err := s.printer.PrintInvoice(ctx, result.Invoice); err == nil {
			result.Printed = true
		}
	}

	return result, nil
}

// RecentInvoices returns up to limit bill summaries, newest first.
func (s *BillingService) RecentInvoices(ctx context.Context, limit int) ([]entity.InvoiceSummary, error) {
	summaries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to load bills", err)
	}
	if summaries == nil {
		summaries = []entity.InvoiceSummary{}
	}
	return summaries, nil
}

// ListInvoices returns one page of bill summaries.
func (s *BillingService) ListInvoices(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.InvoiceSummary], error) {
	params.Validate()

	summaries, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to load bills", err)
	}
	return pagination.NewPaginatedResult(summaries, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetInvoice loads one invoice with its lines.
func (s *BillingService) GetInvoice(ctx context.Context, billNo string) (*entity.Invoice, error) {
	inv, err := s.repo.GetByBillNo(ctx, billNo)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, apperror.NewNotFoundError("Invoice")
		}
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to load invoice", err)
	}
	return inv, nil
}

// ExportInvoices writes the most recent bills as an Excel workbook.
func (s *BillingService) ExportInvoices(ctx context.Context, limit int, w io.Writer) error {
	summaries, err := s.RecentInvoices(ctx, limit)
	if err != nil {
		return err
	}

	sheet := export.Sheet{
		Name:    "Bills",
		Headers: []string{"Bill No", "Date", "Customer", "Phone", "Total Amount"},
		Widths:  []float64{22, 20, 28, 16, 14},
		Rows:    make([][]interface{}, 0, len(summaries)),
	}
	for _, b := range summaries {
		sheet.Rows = append(sheet.Rows, []interface{}{
			b.BillNo,
			b.IssuedAt.Format(billDateLayout),
			b.CustomerName,
			b.CustomerPhone,
			b.TotalAmount.InexactFloat64(),
		})
	}

	if err := export.WriteXLSX(w, sheet); err != nil {
		return apperror.Wrap(http.StatusInternalServerError, "Failed to export bills", err)
	}
	return nil
}

// Ping reports whether the invoice store is reachable.
func (s *BillingService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
