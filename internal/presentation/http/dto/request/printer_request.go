package request

// ReprintRequest optionally overrides the number of receipt copies.
type ReprintRequest struct {
	Copies int `json:"copies" binding:"omitempty,min=1,max=5"`
}
