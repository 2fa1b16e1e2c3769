package request

import "github.com/shopspring/decimal"

// AddCartItemRequest is the body of an add-to-cart call. Price and gst fall
// back to the catalog when omitted.
type AddCartItemRequest struct {
	Product  string           `json:"product" binding:"required,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Quantity int              `json:"qty" binding:"required,min=1,max=100000"`
	GST      *decimal.Decimal `json:"gst"`
}

// RemoveCartItemRequest removes the cart line at Index. Out of range indexes
// are accepted and ignored.
type RemoveCartItemRequest struct {
	Index *int `json:"index" binding:"required"`
}
