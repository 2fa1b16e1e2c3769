package repository

import (
	"context"
	"errors"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/pkg/pagination"
)

// ErrInvoiceNotFound is returned when no invoice has the requested bill number.
var ErrInvoiceNotFound = errors.New("invoice not found")

// InvoiceRepository defines the persistence operations for issued bills.
type InvoiceRepository interface {
	// Save inserts the header and all of its lines atomically.
	Save(ctx context.Context, invoice *entity.Invoice) error
	// ListRecent returns up to limit summaries, newest first.
	ListRecent(ctx context.Context, limit int) ([]entity.InvoiceSummary, error)
	// List returns one page of summaries, newest first, with the total count.
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.InvoiceSummary, int64, error)
	// GetByBillNo loads a header with its lines.
	GetByBillNo(ctx context.Context, billNo string) (*entity.Invoice, error)
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
