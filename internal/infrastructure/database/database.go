package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sangkips/shop-billing-api/internal/config"
	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/sangkips/shop-billing-api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the backend selected by cfg.Driver. This is the only place
// that knows there is more than one backend.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresDB(cfg)
	case config.DriverSQLite, "":
		return NewSQLiteDB(cfg.SQLitePath, cfg.LogLevel)
	default:
		return nil, fmt.Errorf("database: unknown driver %q (use sqlite or postgres)", cfg.Driver)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(ParseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logger.Info("Connected to PostgreSQL database", zap.String("host", cfg.Host))
	return db, nil
}

// NewSQLiteDB opens (or creates) a SQLite database file. ":memory:" gives a
// private in-memory database, which is what the tests use.
func NewSQLiteDB(path, logLevel string) (*gorm.DB, error) {
	if path == "" {
		path = "billing_records.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(ParseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite serializes writers anyway; a single connection also keeps an
	// in-memory database alive for the lifetime of the pool.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	logger.Info("Opened SQLite database", zap.String("path", path))
	return db, nil
}

// InitSchema creates the invoice tables if they are missing. Safe to run on
// every start.
func InitSchema(db *gorm.DB) error {
	logger.Debug("Initializing database schema")

	err := db.AutoMigrate(
		&entity.Invoice{},
		&entity.InvoiceLine{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ParseLogLevel maps DB_LOG_LEVEL to a gorm log level. Unknown values fall back to warn.
func ParseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
