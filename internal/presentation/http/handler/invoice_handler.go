package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/request"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/shop-billing-api/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles bill generation and bill history requests.
type InvoiceHandler struct {
	billing *service.BillingService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(billing *service.BillingService) *InvoiceHandler {
	return &InvoiceHandler{billing: billing}
}

// Generate bills the caller's cart.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req request.GenerateBillRequest
	if err := bindJSON(c, &req, true); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.billing.GenerateBill(c.Request.Context(), GetSessionID(c), entity.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Bill generated"
	if !result.Saved {
		message = "Bill generated but could not be saved"
	}
	response.Created(c, message, result)
}

// List returns bill history. With page or per_page it answers one page;
// otherwise the most recent bills up to limit (default 50).
func (h *InvoiceHandler) List(c *gin.Context) {
	var req request.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	ctx := c.Request.Context()

	if req.Page > 0 || req.PerPage > 0 {
		result, err := h.billing.ListInvoices(ctx, &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved", result)
		return
	}

	bills, err := h.billing.RecentInvoices(ctx, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bills retrieved", bills)
}

// Get returns one bill with its lines.
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.billing.GetInvoice(c.Request.Context(), c.Param("bill_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill retrieved", inv)
}

// Export downloads recent bills as an Excel workbook.
func (h *InvoiceHandler) Export(c *gin.Context) {
	var req request.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	var buf bytes.Buffer
	if err := h.billing.ExportInvoices(c.Request.Context(), req.Limit, &buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("bills_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
