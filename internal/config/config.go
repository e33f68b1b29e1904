package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenTTL        time.Duration
	PasswordCost    int
	ShutdownTimeout time.Duration
	LogLevel        string

	InsuranceRate    decimal.Decimal
	CommissionPolicy string
	CommissionFlat   decimal.Decimal
	CommissionRate   decimal.Decimal

	OfferTTL           time.Duration
	OfferSweepInterval time.Duration

	NotifyWorkers   int
	NotifyQueueSize int
	AMQPURL         string
	AMQPExchange    string
	SESRegion       string
	EmailFrom       string

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	AdminLogin    string
	AdminPassword string
}

const (
	defaultRunAddress         = ":8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultTokenTTL           = 24 * time.Hour
	defaultShutdownTimeout    = 10 * time.Second
	defaultLogLevel           = "info"
	defaultInsuranceRate      = "0.15"
	defaultCommissionPolicy   = "flat"
	defaultCommissionFlat     = "100"
	defaultCommissionRate     = "0.10"
	defaultOfferTTL           = 24 * time.Hour
	defaultOfferSweepInterval = time.Minute
	defaultNotifyWorkers      = 4
	defaultNotifyQueueSize    = 256
	defaultAMQPExchange       = "autotransit.events"
	defaultPaymentCurrency    = "eur"
	defaultCheckoutSuccessURL = "http://localhost:3000/payment/success"
	defaultCheckoutCancelURL  = "http://localhost:3000/payment/cancel"
)

// Load parses configuration from a .env file, environment variables and flags.
func Load() (*Config, error) {
	// A missing .env file is fine; the real environment still applies.
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:            getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		PasswordCost:        getInt(lookup, "PASSWORD_HASH_COST", 0),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		CommissionPolicy:    getString(lookup, "COMMISSION_POLICY", defaultCommissionPolicy),
		OfferTTL:            getDuration(lookup, "OFFER_TTL", defaultOfferTTL),
		OfferSweepInterval:  getDuration(lookup, "OFFER_SWEEP_INTERVAL", defaultOfferSweepInterval),
		NotifyWorkers:       getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyQueueSize:     getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		AMQPURL:             getString(lookup, "AMQP_URL", ""),
		AMQPExchange:        getString(lookup, "AMQP_EXCHANGE", defaultAMQPExchange),
		SESRegion:           getString(lookup, "SES_REGION", ""),
		EmailFrom:           getString(lookup, "EMAIL_FROM", ""),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		PaymentCurrency:     getString(lookup, "PAYMENT_CURRENCY", defaultPaymentCurrency),
		CheckoutSuccessURL:  getString(lookup, "CHECKOUT_SUCCESS_URL", defaultCheckoutSuccessURL),
		CheckoutCancelURL:   getString(lookup, "CHECKOUT_CANCEL_URL", defaultCheckoutCancelURL),
		AdminLogin:          getString(lookup, "ADMIN_LOGIN", ""),
		AdminPassword:       getString(lookup, "ADMIN_PASSWORD", ""),
	}

	fs := flag.NewFlagSet("autotransit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		offerTTLStr        = cfg.OfferTTL.String()
		insuranceRateStr   = getString(lookup, "INSURANCE_RATE", defaultInsuranceRate)
		commissionFlatStr  = getString(lookup, "COMMISSION_FLAT", defaultCommissionFlat)
		commissionRateStr  = getString(lookup, "COMMISSION_RATE", defaultCommissionRate)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.CommissionPolicy, "commission-policy", cfg.CommissionPolicy, "Commission policy: flat or percent")
	fs.StringVar(&insuranceRateStr, "insurance-rate", insuranceRateStr, "Insurance share of the gross price")
	fs.StringVar(&commissionFlatStr, "commission-flat", commissionFlatStr, "Flat commission in EUR")
	fs.StringVar(&commissionRateStr, "commission-rate", commissionRateStr, "Commission share of the gross price")
	fs.StringVar(&offerTTLStr, "offer-ttl", offerTTLStr, "Lifetime of a marketplace offer")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of notification workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = cast.ToDurationE(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.OfferTTL, err = cast.ToDurationE(offerTTLStr); err != nil {
		return nil, fmt.Errorf("invalid offer ttl: %w", err)
	}

	if cfg.InsuranceRate, err = decimal.NewFromString(insuranceRateStr); err != nil {
		return nil, fmt.Errorf("invalid insurance rate: %w", err)
	}

	if cfg.CommissionFlat, err = decimal.NewFromString(commissionFlatStr); err != nil {
		return nil, fmt.Errorf("invalid flat commission: %w", err)
	}

	if cfg.CommissionRate, err = decimal.NewFromString(commissionRateStr); err != nil {
		return nil, fmt.Errorf("invalid commission rate: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.CommissionPolicy = strings.ToLower(strings.TrimSpace(cfg.CommissionPolicy))
	cfg.PaymentCurrency = strings.ToLower(cfg.PaymentCurrency)

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.OfferTTL <= 0 {
		cfg.OfferTTL = defaultOfferTTL
	}

	if cfg.OfferSweepInterval < 0 {
		cfg.OfferSweepInterval = defaultOfferSweepInterval
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	if cfg.PasswordCost != 0 && (cfg.PasswordCost < bcrypt.MinCost || cfg.PasswordCost > bcrypt.MaxCost) {
		return nil, fmt.Errorf("password hash cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if (cfg.AdminLogin == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin login and password must be provided together")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return def
}
