package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "quickcart"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Payments PaymentsConfig
	Stripe   StripeConfig
	Maps     MapsConfig
	Tracking TrackingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUICKCART_APP_ENV" default:"dev"`
	Port         string `envconfig:"QUICKCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"QUICKCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUICKCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"QUICKCART_DB_DRIVER" default:"sqlite"`
	// SQLite file holding the durable shopper profile. Carts never live here.
	Path string `envconfig:"QUICKCART_DB_PATH" default:"quickcart.db"`
	DSN  string `envconfig:"QUICKCART_DB_DSN"`

	MaxOpenConns    int           `envconfig:"QUICKCART_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"QUICKCART_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"QUICKCART_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	// Empty URL keeps carts in process memory, matching the original
	// session-only cart lifetime. Set a URL to persist carts across reloads.
	URL          string        `envconfig:"QUICKCART_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"QUICKCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUICKCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUICKCART_REDIS_WRITE_TIMEOUT" default:"5s"`
	CartTTL      time.Duration `envconfig:"QUICKCART_REDIS_CART_TTL" default:"24h"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"QUICKCART_JWT_SECRET" default:"dev-only-secret"`
	Issuer            string `envconfig:"QUICKCART_JWT_ISSUER" default:"quickcart"`
	ExpirationMinutes int    `envconfig:"QUICKCART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type CartConfig struct {
	ReservationTTL time.Duration `envconfig:"QUICKCART_CART_RESERVATION_TTL" default:"600s"`
}

type CheckoutConfig struct {
	DeliveryFeeMinor int64 `envconfig:"QUICKCART_CHECKOUT_DELIVERY_FEE" default:"199"`
}

type PaymentsConfig struct {
	Provider        string        `envconfig:"QUICKCART_PAYMENTS_PROVIDER" default:"mock"`
	MockInitDelay   time.Duration `envconfig:"QUICKCART_PAYMENTS_MOCK_INIT_DELAY" default:"500ms"`
	MockChargeDelay time.Duration `envconfig:"QUICKCART_PAYMENTS_MOCK_CHARGE_DELAY" default:"2s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"QUICKCART_STRIPE_API_KEY"`
	Env    string `envconfig:"QUICKCART_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MapsConfig struct {
	APIKey string `envconfig:"QUICKCART_MAPS_API_KEY"`
}

type TrackingConfig struct {
	StatusInterval  time.Duration `envconfig:"QUICKCART_TRACKING_STATUS_INTERVAL" default:"30s"`
	CourierInterval time.Duration `envconfig:"QUICKCART_TRACKING_COURIER_INTERVAL" default:"5s"`
	InitialETA      time.Duration `envconfig:"QUICKCART_TRACKING_INITIAL_ETA" default:"8m"`
}
