package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel-pms/utils"
)

// Config is everything read from the environment at startup. Database and
// Redis connection settings are resolved by ConnectDatabase and
// NewRedisClient directly.
type Config struct {
	Port        string
	DBDriver    string
	DBSeed      bool
	CORSOrigins []string

	LogLevel  string
	LogFormat string

	LockBackend string
	RoomLockTTL time.Duration
	RabbitMQURL string

	DefaultCurrency string
	DefaultTaxRate  decimal.Decimal

	ReleaseNoShowRooms      bool
	AllowCancelAfterCheckIn bool
}

func Load() Config {
	return Config{
		Port:                    utils.EnvOrDefault("PORT", "8080"),
		DBDriver:                strings.ToLower(utils.EnvOrDefault("DB_DRIVER", "mysql")),
		DBSeed:                  envBool("DB_SEED", false),
		CORSOrigins:             parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		LogLevel:                utils.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:               utils.EnvOrDefault("LOG_FORMAT", "text"),
		LockBackend:             strings.ToLower(utils.EnvOrDefault("LOCK_BACKEND", "local")),
		RoomLockTTL:             envDuration("ROOM_LOCK_TTL", 10*time.Second),
		RabbitMQURL:             strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		DefaultCurrency:         strings.ToUpper(utils.EnvOrDefault("DEFAULT_CURRENCY", "USD")),
		DefaultTaxRate:          envDecimal("DEFAULT_TAX_RATE", decimal.Zero),
		ReleaseNoShowRooms:      envBool("RELEASE_NO_SHOW_ROOMS", false),
		AllowCancelAfterCheckIn: envBool("ALLOW_CANCEL_AFTER_CHECK_IN", true),
	}
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(utils.EnvOrDefault(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(utils.EnvOrDefault(key, def.String()))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(utils.EnvOrDefault(key, def.String()))
	if err != nil {
		return def
	}
	return v
}
