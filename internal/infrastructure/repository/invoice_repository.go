package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shop-billing-api/internal/domain/repository"
	"github.com/sangkips/shop-billing-api/pkg/pagination"
	"gorm.io/gorm"
)

var summaryColumns = []string{"bill_no", "date", "customer_name", "customer_phone", "total_amount"}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository. It works unchanged on
// every dialect gorm is opened with.
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Save(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(invoice).Error; err != nil {
			return fmt.Errorf("insert invoice %s: %w", invoice.BillNo, err)
		}

		if len(invoice.Lines) == 0 {
			return nil
		}

		for i := range invoice.Lines {
			invoice.Lines[i].BillNo = invoice.BillNo
		}
		if err := tx.Create(&invoice.Lines).Error; err != nil {
			return fmt.Errorf("insert lines for invoice %s: %w", invoice.BillNo, err)
		}
		return nil
	})
}

func (r *invoiceRepository) ListRecent(ctx context.Context, limit int) ([]entity.InvoiceSummary, error) {
	if limit < 1 {
		limit = pagination.DefaultPerPage
	}

	var summaries []entity.InvoiceSummary
	err := r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Select(summaryColumns).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&summaries).Error

	return summaries, err
}

func (r *invoiceRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.InvoiceSummary, int64, error) {
	var summaries []entity.InvoiceSummary
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Select(summaryColumns).
		Order("created_at DESC, id DESC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&summaries).Error

	return summaries, total, err
}

func (r *invoiceRepository) GetByBillNo(ctx context.Context, billNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&invoice, "bill_no = ?", billNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainRepo.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
