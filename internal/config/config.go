package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string

	Billing  BillingConfig
	Checkout CheckoutConfig
	Gateway  GatewayConfig
}

// BillingConfig carries the monetary policy knobs for checkout.
type BillingConfig struct {
	Currency       string
	TaxRate        decimal.Decimal
	InvoiceDueDays int

	// CycleFallback controls whether a billing cycle without an explicit
	// catalog price falls back to monthly price x period months.
	// When disabled, such cycles are rejected as not offered.
	CycleFallback bool
}

// CheckoutConfig carries rate-limit settings for the public checkout endpoints.
type CheckoutConfig struct {
	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int
}

// GatewayConfig selects and configures the payment gateway adapter.
type GatewayConfig struct {
	Provider string

	PayPalBaseURL      string
	PayPalClientID     string
	PayPalClientSecret string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "hostline"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "hostline"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		Billing: BillingConfig{
			Currency:       strings.ToUpper(getenv("BILLING_CURRENCY", "USD")),
			TaxRate:        getenvDecimal("BILLING_TAX_RATE", "0"),
			InvoiceDueDays: getenvInt("BILLING_INVOICE_DUE_DAYS", 7),
			CycleFallback:  getenvBool("BILLING_CYCLE_FALLBACK", true),
		},
		Checkout: CheckoutConfig{
			RateLimitEnabled: getenvBool("CHECKOUT_RATE_LIMIT_ENABLED", true),
			RateLimitPerSec:  getenvFloat("CHECKOUT_RATE_LIMIT_PER_SEC", 5),
			RateLimitBurst:   getenvInt("CHECKOUT_RATE_LIMIT_BURST", 10),
		},
		Gateway: GatewayConfig{
			Provider:           strings.ToLower(getenv("GATEWAY_PROVIDER", "offline")),
			PayPalBaseURL:      getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			PayPalClientID:     strings.TrimSpace(getenv("PAYPAL_CLIENT_ID", "")),
			PayPalClientSecret: strings.TrimSpace(getenv("PAYPAL_CLIENT_SECRET", "")),
		},
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDecimal(key, fallback string) decimal.Decimal {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}
