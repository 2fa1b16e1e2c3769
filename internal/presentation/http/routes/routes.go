package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/config"
	domainRepo "github.com/sangkips/shop-billing-api/internal/domain/repository"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/handler"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Invoice *handler.InvoiceHandler
	Printer *handler.PrinterHandler
	Legacy  *handler.LegacyHandler
	Health  *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Check)

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	api := router.Group("/api")
	api.Use(middleware.SessionMiddleware())
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}

	registerV1Routes(api.Group("/v1"), h, deps)
	registerLegacyRoutes(api, h)

	return router
}

func registerV1Routes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	v1.GET("/catalog", h.Catalog.List)

	cart := v1.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.DELETE("/items/:index", h.Cart.RemoveItemAt)
		cart.POST("/remove", h.Cart.RemoveItem)
		cart.POST("/clear", h.Cart.Clear)
	}

	invoices := v1.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/export", h.Invoice.Export)
		invoices.GET("/:bill_no", h.Invoice.Get)

		create := invoices.Group("")
		if deps.IdempotencyRepo != nil {
			create.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))
		}
		create.POST("", h.Invoice.Generate)
	}

	printer := v1.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/invoices/:bill_no", h.Printer.Reprint)
	}
}

// registerLegacyRoutes keeps the paths of the first counter page working.
func registerLegacyRoutes(api *gin.RouterGroup, h *Handlers) {
	api.GET("/inventory", h.Legacy.Inventory)
	api.GET("/cart", h.Legacy.Cart)
	api.GET("/bills", h.Legacy.Bills)
	api.POST("/add-item", h.Legacy.AddItem)
	api.POST("/remove-item", h.Legacy.RemoveItem)
	api.POST("/clear-cart", h.Legacy.ClearCart)
	api.POST("/generate-bill", h.Legacy.GenerateBill)
}
