package entity

// ReceiptHeader holds the shop header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Tagline   string `json:"tagline,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	Website   string `json:"website,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Receipt is a value object for the thermal printer. It is NOT a database
// entity; it is composed from an invoice at print time. Amounts are already
// formatted to two decimals.
type Receipt struct {
	Header   ReceiptHeader `json:"header"`
	BillNo   string        `json:"bill_no"`
	Date     string        `json:"date"`
	Customer string        `json:"customer,omitempty"`
	Phone    string        `json:"phone,omitempty"`
	Items    []ReceiptItem `json:"items"`
	SubTotal string        `json:"sub_total"`
	CGST     string        `json:"cgst"`
	SGST     string        `json:"sgst"`
	Total    string        `json:"total"`
}
