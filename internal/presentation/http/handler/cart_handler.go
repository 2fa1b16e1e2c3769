package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/request"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/shop-billing-api/pkg/apperror"
)

// CartHandler handles cart HTTP requests for the caller's session.
type CartHandler struct {
	carts   *service.CartService
	catalog service.Catalog
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService, catalog service.Catalog) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

type cartView struct {
	Items  []entity.CartLine `json:"items"`
	Totals entity.CartTotals `json:"totals"`
}

func (h *CartHandler) view(session string) cartView {
	return cartView{
		Items:  h.carts.Snapshot(session),
		Totals: h.carts.Totals(session),
	}
}

// Get returns the cart lines and a preview of the bill totals.
func (h *CartHandler) Get(c *gin.Context) {
	response.OK(c, "Cart retrieved", h.view(GetSessionID(c)))
}

// AddItem appends a line to the cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req request.AddCartItemRequest
	if err := bindJSON(c, &req, false); err != nil {
		response.Error(c, err)
		return
	}

	line, err := buildCartLine(h.catalog, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	session := GetSessionID(c)
	h.carts.Add(session, line)
	response.Created(c, "Item added to cart", h.view(session))
}

// RemoveItem removes the line at the index given in the body. An index
// outside the cart is ignored and still answered with success.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req request.RemoveCartItemRequest
	if err := bindJSON(c, &req, false); err != nil {
		response.Error(c, err)
		return
	}
	h.remove(c, *req.Index)
}

// RemoveItemAt removes the line at the :index path parameter.
func (h *CartHandler) RemoveItemAt(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid item index")
		return
	}
	h.remove(c, index)
}

func (h *CartHandler) remove(c *gin.Context, index int) {
	session := GetSessionID(c)
	removed := h.carts.Remove(session, index)

	message := "Item removed from cart"
	if !removed {
		message = "No item at that position"
	}
	response.OK(c, message, gin.H{
		"removed": removed,
		"cart":    h.view(session),
	})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	session := GetSessionID(c)
	h.carts.Clear(session)
	response.OK(c, "Cart cleared", h.view(session))
}

// buildCartLine turns an add-item request into a cart line. Price and rate
// supplied by the caller are kept as given; missing ones come from the catalog.
func buildCartLine(catalog service.Catalog, req *request.AddCartItemRequest) (entity.CartLine, error) {
	line := entity.CartLine{
		Product:  req.Product,
		Quantity: req.Quantity,
	}

	if req.Price == nil || req.GST == nil {
		product, err := catalog.Lookup(req.Product)
		if err != nil {
			if errors.Is(err, service.ErrUnknownProduct) {
				return line, apperror.Wrap(apperror.ErrUnprocessable.Code, err.Error(), err)
			}
			return line, err
		}
		line.Price = product.Price
		line.GSTRate = product.GSTRate
	}
	if req.Price != nil {
		line.Price = *req.Price
	}
	if req.GST != nil {
		line.GSTRate = *req.GST
	}

	var fields []apperror.FieldError
	if line.Price.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if line.GSTRate.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "gst", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return line, apperror.NewValidationError(fields)
	}

	return line, nil
}
