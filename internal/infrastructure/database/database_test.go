package database

import (
	"testing"

	"github.com/sangkips/shop-billing-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpen_SQLiteInitSchemaIsIdempotent(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, InitSchema(db))
	require.NoError(t, InitSchema(db))

	for _, table := range []string{"invoices", "invoice_lines", "idempotency_keys"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	for _, column := range []string{"bill_no", "date", "customer_name", "customer_phone", "customer_address", "subtotal", "tax_a", "tax_b", "total_amount", "created_at"} {
		assert.True(t, db.Migrator().HasColumn("invoices", column), column)
	}
	for _, column := range []string{"bill_no", "product_name", "quantity", "unit_price", "total_price"} {
		assert.True(t, db.Migrator().HasColumn("invoice_lines", column), column)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseLogLevel("SILENT"))
	assert.Equal(t, gormlogger.Info, ParseLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, ParseLogLevel("bogus"))
}
