package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer details captured at billing time. Empty fields are replaced by
// placeholders before the invoice is issued.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Invoice is the persisted bill header. It is written once and never updated.
// TaxA and TaxB are the two equal halves of GST (CGST and SGST).
type Invoice struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	BillNo          string          `gorm:"size:50;uniqueIndex;not null" json:"bill_no"`
	IssuedAt        time.Time       `gorm:"column:date;not null" json:"date"`
	CustomerName    string          `gorm:"size:255" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:20" json:"customer_phone"`
	CustomerAddress string          `gorm:"type:text" json:"customer_address"`
	SubTotal        decimal.Decimal `gorm:"column:subtotal;type:decimal(10,2);not null" json:"subtotal"`
	TaxA            decimal.Decimal `gorm:"column:tax_a;type:decimal(10,2);not null" json:"cgst"`
	TaxB            decimal.Decimal `gorm:"column:tax_b;type:decimal(10,2);not null" json:"sgst"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relationships
	Lines []InvoiceLine `gorm:"foreignKey:BillNo;references:BillNo" json:"lines,omitempty"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine is one cart line frozen at billing time.
type InvoiceLine struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	BillNo      string          `gorm:"size:50;not null;index" json:"bill_no"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

// TableName returns the table name for the InvoiceLine model
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// InvoiceSummary is the row shape of the bill history listing.
type InvoiceSummary struct {
	BillNo        string          `json:"bill_no"`
	IssuedAt      time.Time       `gorm:"column:date" json:"date"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}
