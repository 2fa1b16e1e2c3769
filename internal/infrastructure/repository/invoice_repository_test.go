package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shop-billing-api/internal/domain/repository"
	"github.com/sangkips/shop-billing-api/internal/infrastructure/database"
	"github.com/sangkips/shop-billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", "silent")
	require.NoError(t, err)
	require.NoError(t, database.InitSchema(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func sampleInvoice(billNo string) *entity.Invoice {
	return &entity.Invoice{
		BillNo:          billNo,
		IssuedAt:        time.Date(2026, 10, 18, 10, 15, 0, 0, time.UTC),
		CustomerName:    "Walk-in Customer",
		CustomerPhone:   "N/A",
		CustomerAddress: "N/A",
		SubTotal:        decimal.RequireFromString("30"),
		TaxA:            decimal.RequireFromString("2.70"),
		TaxB:            decimal.RequireFromString("2.70"),
		TotalAmount:     decimal.RequireFromString("35.40"),
		Lines: []entity.InvoiceLine{
			{ProductName: "Rocket Small", Quantity: 2, UnitPrice: decimal.NewFromInt(15), TotalPrice: decimal.NewFromInt(30)},
		},
	}
}

func TestInvoiceRepository_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice("RPP20261018101500")
	inv.Lines = append(inv.Lines, entity.InvoiceLine{
		ProductName: "Safety Matches", Quantity: 3, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(15),
	})
	require.NoError(t, repo.Save(ctx, inv))
	assert.NotZero(t, inv.ID)

	got, err := repo.GetByBillNo(ctx, "RPP20261018101500")
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Customer", got.CustomerName)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("35.40")), got.TotalAmount.String())
	assert.True(t, got.TaxA.Equal(got.TaxB))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Rocket Small", got.Lines[0].ProductName)
	assert.Equal(t, "RPP20261018101500", got.Lines[1].BillNo)
	assert.True(t, got.Lines[1].TotalPrice.Equal(decimal.NewFromInt(15)))
}

func TestInvoiceRepository_GetByBillNo_NotFound(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t))

	_, err := repo.GetByBillNo(context.Background(), "RPP-missing")
	assert.ErrorIs(t, err, domainRepo.ErrInvoiceNotFound)
}

func TestInvoiceRepository_DuplicateBillNoLeavesNoPartialRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleInvoice("RPP1")))

	dup := sampleInvoice("RPP1")
	dup.Lines = append(dup.Lines, entity.InvoiceLine{ProductName: "Atom Bomb", Quantity: 1, UnitPrice: decimal.NewFromInt(12), TotalPrice: decimal.NewFromInt(12)})
	assert.Error(t, repo.Save(ctx, dup))

	var invoices, lines int64
	require.NoError(t, db.Model(&entity.Invoice{}).Count(&invoices).Error)
	require.NoError(t, db.Model(&entity.InvoiceLine{}).Count(&lines).Error)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, int64(1), lines)
}

func TestInvoiceRepository_ListRecentNewestFirst(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Save(ctx, sampleInvoice(fmt.Sprintf("RPP%d", i))))
	}

	recent, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "RPP5", recent[0].BillNo)
	assert.Equal(t, "RPP4", recent[1].BillNo)
	assert.Equal(t, "RPP3", recent[2].BillNo)
	assert.Equal(t, "N/A", recent[0].CustomerPhone)
	assert.True(t, recent[0].TotalAmount.Equal(decimal.RequireFromString("35.4")))

	all, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestInvoiceRepository_ListPaginated(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Save(ctx, sampleInvoice(fmt.Sprintf("RPP%d", i))))
	}

	page, total, err := repo.List(ctx, &pagination.PaginationParams{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "RPP3", page[0].BillNo)
	assert.Equal(t, "RPP2", page[1].BillNo)
}

func TestInvoiceRepository_Ping(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t))
	assert.NoError(t, repo.Ping(context.Background()))
}
