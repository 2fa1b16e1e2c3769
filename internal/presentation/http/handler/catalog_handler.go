package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
)

// CatalogHandler serves the shop price list.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List returns every product in display order.
func (h *CatalogHandler) List(c *gin.Context) {
	response.OK(c, "Catalog retrieved", h.catalog.List())
}
