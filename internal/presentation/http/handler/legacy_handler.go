package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/request"
	"github.com/sangkips/shop-billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// LegacyHandler serves the /api routes used by the first counter page.
// Payloads are bare JSON values with no response envelope, and failures are
// reported as {"error": "..."}.
type LegacyHandler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	billing *service.BillingService
}

// NewLegacyHandler creates a new legacy handler
func NewLegacyHandler(catalog *service.CatalogService, carts *service.CartService, billing *service.BillingService) *LegacyHandler {
	return &LegacyHandler{catalog: catalog, carts: carts, billing: billing}
}

type legacyProduct struct {
	Price decimal.Decimal `json:"price"`
	GST   decimal.Decimal `json:"gst"`
}

func legacyError(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

func legacySuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Inventory returns the catalog as a name -> {price, gst} object.
func (h *LegacyHandler) Inventory(c *gin.Context) {
	products := h.catalog.List()
	out := make(map[string]legacyProduct, len(products))
	for _, p := range products {
		out[p.Name] = legacyProduct{Price: p.Price, GST: p.GSTRate}
	}
	c.JSON(http.StatusOK, out)
}

// Cart returns the bare list of cart lines.
func (h *LegacyHandler) Cart(c *gin.Context) {
	c.JSON(http.StatusOK, h.carts.Snapshot(GetSessionID(c)))
}

// AddItem appends the posted line to the cart.
func (h *LegacyHandler) AddItem(c *gin.Context) {
	var req request.AddCartItemRequest
	if err := bindJSON(c, &req, false); err != nil {
		legacyError(c, err)
		return
	}

	line, err := buildCartLine(h.catalog, &req)
	if err != nil {
		legacyError(c, err)
		return
	}

	h.carts.Add(GetSessionID(c), line)
	legacySuccess(c)
}

// RemoveItem drops the line at index; out of range indexes still succeed.
func (h *LegacyHandler) RemoveItem(c *gin.Context) {
	var req request.RemoveCartItemRequest
	if err := bindJSON(c, &req, false); err != nil {
		legacyError(c, err)
		return
	}

	h.carts.Remove(GetSessionID(c), *req.Index)
	legacySuccess(c)
}

// ClearCart empties the cart.
func (h *LegacyHandler) ClearCart(c *gin.Context) {
	h.carts.Clear(GetSessionID(c))
	legacySuccess(c)
}

// GenerateBill bills the cart and answers {bill, filename, saved}.
func (h *LegacyHandler) GenerateBill(c *gin.Context) {
	var req request.GenerateBillRequest
	if err := bindJSON(c, &req, true); err != nil {
		legacyError(c, err)
		return
	}

	result, err := h.billing.GenerateBill(c.Request.Context(), GetSessionID(c), entity.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		legacyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bill":     result.Bill,
		"filename": result.Filename,
		"saved":    result.Saved,
	})
}

// Bills lists the 50 most recent bills as positional rows:
// [bill_no, date, customer_name, customer_phone, total_amount].
func (h *LegacyHandler) Bills(c *gin.Context) {
	bills, err := h.billing.RecentInvoices(c.Request.Context(), 0)
	if err != nil {
		legacyError(c, err)
		return
	}

	rows := make([][]interface{}, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []interface{}{
			b.BillNo,
			service.FormatBillDate(b.IssuedAt),
			b.CustomerName,
			b.CustomerPhone,
			json.Number(b.TotalAmount.StringFixed(2)),
		})
	}
	c.JSON(http.StatusOK, rows)
}
