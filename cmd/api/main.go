package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/config"
	"github.com/sangkips/shop-billing-api/internal/infrastructure/database"
	"github.com/sangkips/shop-billing-api/internal/infrastructure/repository"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/handler"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/routes"
	"github.com/sangkips/shop-billing-api/pkg/billfile"
	"github.com/sangkips/shop-billing-api/pkg/logger"
	"github.com/sangkips/shop-billing-api/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.InitLogger(cfg.App.Env)
	defer logger.Sync()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" || !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Money goes out as JSON numbers, as the counter page expects
	decimal.MarshalJSONWithoutQuotes = true

	// Connect to database
	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.InitSchema(db); err != nil {
		logger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Initialize repositories
	invoiceRepo := repository.NewInvoiceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	if n, err := idempotencyRepo.DeleteExpired(context.Background()); err != nil {
		logger.Warn("Failed to purge expired idempotency keys", zap.Error(err))
	} else if n > 0 {
		logger.Info("Purged expired idempotency keys", zap.Int64("count", n))
	}

	layout := service.BillLayout{
		Prefix:   cfg.Billing.Prefix,
		ShopName: cfg.Shop.Name,
		Tagline:  cfg.Shop.Tagline,
		GSTIN:    cfg.Shop.GSTIN,
		Website:  cfg.Shop.Website,
		Currency: cfg.Shop.Currency,
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	printerType := cfg.Printer.Type
	if err != nil {
		logger.Warn("Failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
		printerType = printer.TypeNone
	}
	defer thermalPrinter.Close()

	// Initialize services
	catalogService := service.NewCatalogService(service.DefaultCatalog())
	cartService := service.NewCartService(cfg.Cart.IdleTTL)
	defer cartService.Close()

	printerService := service.NewPrinterService(thermalPrinter, invoiceRepo, printerType, cfg.Printer.Width, layout)
	billingService := service.NewBillingService(
		cartService,
		catalogService,
		invoiceRepo,
		billfile.NewWriter(afero.NewOsFs(), cfg.Billing.Dir, cfg.Billing.Prefix, cfg.Billing.PDFEnabled),
		printerService,
		layout,
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Catalog: handler.NewCatalogHandler(catalogService),
		Cart:    handler.NewCartHandler(cartService, catalogService),
		Invoice: handler.NewInvoiceHandler(billingService),
		Printer: handler.NewPrinterHandler(printerService),
		Legacy:  handler.NewLegacyHandler(catalogService, cartService, billingService),
		Health:  handler.NewHealthHandler(cfg.App.Name, invoiceRepo),
	}

	rateLimiter := middleware.NewClientRateLimiter(
		middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)
	defer rateLimiter.Close()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
			zap.String("database", cfg.Database.Driver),
			zap.String("printer", printerType),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}
