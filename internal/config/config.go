package config

import (
	"strings"
	"time"

	"github.com/sangkips/shop-billing-api/pkg/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Shop      ShopConfig
	Billing   BillingConfig
	Cart      CartConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver     string
	URL        string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
	SQLitePath string
	LogLevel   string
}

// ShopConfig holds the business details printed on every bill.
type ShopConfig struct {
	Name     string
	Tagline  string
	GSTIN    string
	Website  string
	Currency string
}

type BillingConfig struct {
	Prefix     string
	Dir        string
	PDFEnabled bool
}

type CartConfig struct {
	IdleTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

// Load reads configuration from an optional .env file and the environment.
func Load() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Debug(".env file not found, using environment variables", zap.Error(err))
	}

	// Set defaults
	v.SetDefault("APP_NAME", "shop-billing-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "billing")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DB_SQLITE_PATH", "billing_records.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("SHOP_NAME", "RAKSHANA CRACKERS")
	v.SetDefault("SHOP_TAGLINE", "CRACKER SHOP BILLING SYSTEM")
	v.SetDefault("SHOP_GSTIN", "29ABCDE1234F1Z5 (Sample)")
	v.SetDefault("SHOP_WEBSITE", "rakshanacrackers.com")
	v.SetDefault("SHOP_CURRENCY", "Rs.")
	v.SetDefault("BILL_PREFIX", "RPP")
	v.SetDefault("BILL_DIR", "bills")
	v.SetDefault("BILL_PDF_ENABLED", false)
	v.SetDefault("CART_IDLE_TTL_MINUTES", 240)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_ALLOWED_METHODS", "")
	v.SetDefault("CORS_ALLOWED_HEADERS", "")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_WIDTH", 32)

	cfg := &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  firstNonEmpty(v.GetString("APP_PORT"), v.GetString("PORT"), "8080"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			URL:        v.GetString("DATABASE_URL"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			Name:       v.GetString("DB_NAME"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			SSLMode:    v.GetString("DB_SSL_MODE"),
			Timezone:   v.GetString("DB_TIMEZONE"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
			LogLevel:   v.GetString("DB_LOG_LEVEL"),
		},
		Shop: ShopConfig{
			Name:     v.GetString("SHOP_NAME"),
			Tagline:  v.GetString("SHOP_TAGLINE"),
			GSTIN:    v.GetString("SHOP_GSTIN"),
			Website:  v.GetString("SHOP_WEBSITE"),
			Currency: v.GetString("SHOP_CURRENCY"),
		},
		Billing: BillingConfig{
			Prefix:     v.GetString("BILL_PREFIX"),
			Dir:        v.GetString("BILL_DIR"),
			PDFEnabled: v.GetBool("BILL_PDF_ENABLED"),
		},
		Cart: CartConfig{
			IdleTTL: time.Duration(v.GetInt("CART_IDLE_TTL_MINUTES")) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:    v.GetString("PRINTER_TYPE"),
			USBPath: v.GetString("PRINTER_USB_PATH"),
			Address: v.GetString("PRINTER_ADDRESS"),
			Width:   v.GetInt("PRINTER_WIDTH"),
		},
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
		if cfg.Database.URL != "" {
			cfg.Database.Driver = DriverPostgres
		}
	}

	return cfg
}

// DSN returns the postgres connection string. DATABASE_URL wins over the
// discrete DB_* settings.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitList turns "a, b,c" into []string{"a", "b", "c"}.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
