package entity

import "github.com/shopspring/decimal"

// Product is a catalog entry. Prices are tax exclusive; GSTRate is a percentage
// that is split evenly into the CGST and SGST halves on the bill.
type Product struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	GSTRate decimal.Decimal `json:"gst"`
}

// HalfRate returns the rate applied to each tax component.
func (p Product) HalfRate() decimal.Decimal {
	return p.GSTRate.Div(decimal.NewFromInt(2))
}
