package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string

	// Stripe
	StripeSecretKey      string
	StripePublishableKey string

	// PayPal
	PayPalClientID     string
	PayPalClientSecret string
	PayPalEnv          string // "sandbox" or "live"; explicit, never inferred from credentials

	// Checkout
	SlotPurchaseDays   int
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	ConnectRefreshURL  string
	ConnectReturnURL   string

	// Rotation defaults (widget auto-advance intervals)
	BannerRotationInterval time.Duration
	PromoRotationInterval  time.Duration

	// Sweep / click flush schedules (cron specs for the asynq scheduler)
	SweepSchedule      string
	ClickFlushSchedule string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// AWS S3 (ad banner storage)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	BannerBaseS3URL    string
	BannerMaxDimension int
	BannerMaxSizeMB    int

	// App Defaults
	AppName string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "munexus")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")

	// Payment providers. Empty secrets are allowed: checkout endpoints answer
	// with a needsConfiguration signal instead of failing at startup.
	cfg.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", "")
	cfg.StripePublishableKey = getEnv("STRIPE_PUBLISHABLE_KEY", "")
	cfg.PayPalClientID = getEnv("PAYPAL_CLIENT_ID", "")
	cfg.PayPalClientSecret = getEnv("PAYPAL_CLIENT_SECRET", "")
	cfg.PayPalEnv = getEnv("PAYPAL_ENV", "sandbox")
	if cfg.PayPalEnv != "sandbox" && cfg.PayPalEnv != "live" {
		return nil, fmt.Errorf("invalid PAYPAL_ENV: %q (expected sandbox or live)", cfg.PayPalEnv)
	}

	cfg.CheckoutSuccessURL = getEnv("CHECKOUT_SUCCESS_URL", "")
	cfg.CheckoutCancelURL = getEnv("CHECKOUT_CANCEL_URL", "")
	cfg.ConnectRefreshURL = getEnv("CONNECT_REFRESH_URL", "")
	cfg.ConnectReturnURL = getEnv("CONNECT_RETURN_URL", "")

	cfg.SweepSchedule = getEnv("SWEEP_SCHEDULE", "@every 1h")
	cfg.ClickFlushSchedule = getEnv("CLICK_FLUSH_SCHEDULE", "@every 1m")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@munexus.example.com")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.BannerBaseS3URL = getEnv("BANNER_BASE_S3_URL", "")

	cfg.AppName = getEnv("APP_NAME", "MuNexusHub")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.SlotPurchaseDays, err = strconv.Atoi(getEnv("SLOT_PURCHASE_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_PURCHASE_DAYS: %w", err)
	}

	bannerIntervalMs, err := strconv.ParseInt(getEnv("BANNER_ROTATION_INTERVAL_MS", "5000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BANNER_ROTATION_INTERVAL_MS: %w", err)
	}
	cfg.BannerRotationInterval = time.Duration(bannerIntervalMs) * time.Millisecond

	promoIntervalMs, err := strconv.ParseInt(getEnv("PROMO_ROTATION_INTERVAL_MS", "4000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROMO_ROTATION_INTERVAL_MS: %w", err)
	}
	cfg.PromoRotationInterval = time.Duration(promoIntervalMs) * time.Millisecond

	cfg.BannerMaxDimension, err = strconv.Atoi(getEnv("BANNER_MAX_DIMENSION", "1920"))
	if err != nil {
		return nil, fmt.Errorf("invalid BANNER_MAX_DIMENSION: %w", err)
	}

	cfg.BannerMaxSizeMB, err = strconv.Atoi(getEnv("BANNER_MAX_SIZE_MB", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid BANNER_MAX_SIZE_MB: %w", err)
	}

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

// StripeConfigured reports whether the Stripe secret key is present.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

// PayPalConfigured reports whether PayPal client credentials are present.
func (c *Config) PayPalConfigured() bool {
	return c.PayPalClientID != "" && c.PayPalClientSecret != ""
}
