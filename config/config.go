package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

type Config struct {
	Port   string
	AppEnv string

	CatalogURL  string
	OrderURL    string
	AuthAPIBase string

	StoreDriver  string
	RedisURL     string
	StoreTTL     time.Duration
	CartKey      string
	AuthTokenKey string
	AuthUserKey  string

	SessionCookie string

	CatalogFetchTimeout time.Duration
	CatalogRetryDelay   time.Duration
	CatalogMinBusy      time.Duration
	OrderCeiling        time.Duration
	OrderWriteTimeout   time.Duration

	AllowedOrigins     string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads the configuration from the environment, after loading a .env
// file if one is present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	catalogURL := getEnv("CATALOG_URL", "http://localhost:8082/products")

	return Config{
		Port:   getEnv("PORT", "8087"),
		AppEnv: getEnv("APP_ENV", "development"),

		CatalogURL:  catalogURL,
		OrderURL:    getEnv("ORDER_URL", catalogURL),
		AuthAPIBase: getEnv("AUTH_API_BASE", "http://localhost:8081/api"),

		StoreDriver:  getEnv("STORE_DRIVER", StoreDriverRedis),
		RedisURL:     getEnv("REDIS_URL", "redis://redis:6379"),
		StoreTTL:     time.Duration(getEnvInt("STORE_TTL_HOURS", 24*7)) * time.Hour, // default 7 days
		CartKey:      getEnv("CART_KEY", "storefront:cart"),
		AuthTokenKey: getEnv("AUTH_TOKEN_KEY", "storefront:auth_token"),
		AuthUserKey:  getEnv("AUTH_USER_KEY", "storefront:user_data"),

		SessionCookie: getEnv("SESSION_COOKIE", "storefront_session"),

		CatalogFetchTimeout: getEnvMillis("CATALOG_FETCH_TIMEOUT_MS", 8000),
		CatalogRetryDelay:   getEnvMillis("CATALOG_RETRY_DELAY_MS", 1200),
		CatalogMinBusy:      getEnvMillis("CATALOG_MIN_BUSY_MS", 700),
		OrderCeiling:        getEnvMillis("ORDER_CEILING_MS", 1200),
		OrderWriteTimeout:   getEnvMillis("ORDER_WRITE_TIMEOUT_MS", 30000),

		AllowedOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("Invalid value for %s=%q, using default %d", key, raw, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvMillis(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
