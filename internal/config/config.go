package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// Stripe holds the payment processor credentials. It is injected into the
// gateway adapter at construction; nothing reads it from process globals.
type Stripe struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// LoadStripe reads the Stripe configuration from the environment.
func LoadStripe() *Stripe {
	return &Stripe{
		SecretKey:     GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret: GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		Currency:      GetEnv("STRIPE_CURRENCY", "usd"),
	}
}
