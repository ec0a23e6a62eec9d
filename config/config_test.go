package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCorsOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseCorsOrigins(""))
	assert.Equal(t, []string{"*"}, parseCorsOrigins(" , ,"))
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://pms.example.com"},
		parseCorsOrigins(" http://localhost:3000, https://pms.example.com ,"),
	)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("PMS_TEST_BOOL", "true")
	t.Setenv("PMS_TEST_BAD_BOOL", "sometimes")
	assert.True(t, envBool("PMS_TEST_BOOL", false))
	assert.True(t, envBool("PMS_TEST_BAD_BOOL", true))
	assert.False(t, envBool("PMS_TEST_UNSET_BOOL", false))

	t.Setenv("PMS_TEST_TTL", "3s")
	t.Setenv("PMS_TEST_NEG_TTL", "-1s")
	assert.Equal(t, 3*time.Second, envDuration("PMS_TEST_TTL", time.Second))
	assert.Equal(t, time.Second, envDuration("PMS_TEST_NEG_TTL", time.Second))

	t.Setenv("PMS_TEST_TAX", "7.5")
	assert.True(t, decimal.RequireFromString("7.5").Equal(envDecimal("PMS_TEST_TAX", decimal.Zero)))
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("ALLOW_CANCEL_AFTER_CHECK_IN", "false")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.False(t, cfg.AllowCancelAfterCheckIn)
	assert.False(t, cfg.ReleaseNoShowRooms)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestMySQLDSNFromURL(t *testing.T) {
	dsn, err := mysqlDSNFromURL("mysql://pms:secret@db:3307/hotel")
	require.NoError(t, err)
	assert.Equal(t, "pms:secret@tcp(db:3307)/hotel?charset=utf8mb4&loc=UTC&parseTime=True", dsn)

	dsn, err = mysqlDSNFromURL("mysql://pms:secret@db/hotel?parseTime=false")
	require.NoError(t, err)
	assert.Contains(t, dsn, "@tcp(db:3306)/hotel?")
	assert.Contains(t, dsn, "parseTime=false")

	_, err = mysqlDSNFromURL("mysql://pms:secret@db:3306/")
	assert.Error(t, err)
}
