package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	Billing  BillingConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

// RazorpayConfig carries the gateway credentials. None of these have
// defaults: a missing value is a configuration error surfaced by the
// accessor at call time, never silently defaulted.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

type BillingConfig struct {
	// Feature tier the lifetime plan resolves to. Kept configurable
	// instead of hardcoding the alias.
	LifetimeTier string
}

func (r RazorpayConfig) Credentials() (string, string, error) {
	if r.KeyID == "" || r.KeySecret == "" {
		return "", "", fmt.Errorf("razorpay credentials are not configured")
	}
	return r.KeyID, r.KeySecret, nil
}

func (r RazorpayConfig) CallbackSecret() (string, error) {
	if r.KeySecret == "" {
		return "", fmt.Errorf("razorpay key secret is not configured")
	}
	return r.KeySecret, nil
}

func (r RazorpayConfig) WebhookSigningSecret() (string, error) {
	if r.WebhookSecret == "" {
		return "", fmt.Errorf("razorpay webhook secret is not configured")
	}
	return r.WebhookSecret, nil
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "billdesk-dev-secret"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
			WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		},
		Billing: BillingConfig{
			LifetimeTier: getEnv("LIFETIME_FEATURE_TIER", "professional"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
