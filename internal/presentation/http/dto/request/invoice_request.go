package request

// GenerateBillRequest carries the optional customer details of a bill.
type GenerateBillRequest struct {
	Name    string `json:"name" binding:"max=255"`
	Phone   string `json:"phone" binding:"max=20"`
	Address string `json:"address" binding:"max=1000"`
}

// ListInvoicesRequest holds the bill history query.
type ListInvoicesRequest struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1"`
	Limit   int `form:"limit" binding:"omitempty,min=1"`
}
