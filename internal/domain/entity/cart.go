package entity

import "github.com/shopspring/decimal"

// CartLine is one product placed into a cart. Price and rate are supplied by the
// caller at add time and are not checked against the catalog.
type CartLine struct {
	Product  string          `json:"product"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"qty"`
	GSTRate  decimal.Decimal `json:"gst"`
}

// LineTotal returns price * quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotals is a live preview of what the bill will come to.
type CartTotals struct {
	Items    int             `json:"items"`
	SubTotal decimal.Decimal `json:"sub_total"`
	CGST     decimal.Decimal `json:"cgst"`
	SGST     decimal.Decimal `json:"sgst"`
	Total    decimal.Decimal `json:"total"`
}
