package config

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

type Razorpay struct {
	KeyID      string
	KeySecret  string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type Config struct {
	Port              string
	PostgresURI       string
	RedisURI          string
	FrontendURL       string
	SecretKey         string
	CookieName        string
	Currency          string
	OrderTTL          time.Duration
	SubscriptionSweep string
	WorkerConcurrency int
	LogLevel          zerolog.Level
	Razorpay          Razorpay
}

func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("PORT", "3000"),
		PostgresURI:       getEnv("POSTGRES_URI", ""),
		RedisURI:          getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:         getEnv("SECRET_KEY", ""),
		CookieName:        getEnv("COOKIE_NAME", "myblog_session"),
		Currency:          getEnv("PAYMENT_CURRENCY", "INR"),
		OrderTTL:          getEnvDuration("ORDER_TTL", 30*time.Minute),
		SubscriptionSweep: getEnv("SUBSCRIPTION_SWEEP", "@every 1h"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),
		LogLevel:          getEnvLevel("LOG_LEVEL", zerolog.InfoLevel),
		Razorpay: Razorpay{
			KeyID:      getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:  getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:    getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			Timeout:    getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
			MaxRetries: getEnvInt("GATEWAY_MAX_RETRIES", 0),
		},
	}
}

// Validate reports every setting the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.PostgresURI == "" {
		errs = append(errs, errors.New("POSTGRES_URI is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required"))
	}
	if c.Razorpay.MaxRetries < 0 {
		errs = append(errs, errors.New("GATEWAY_MAX_RETRIES must not be negative"))
	}
	if c.OrderTTL <= 0 {
		errs = append(errs, errors.New("ORDER_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads a Go duration ("30s", "15m"). A bare number is taken
// as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	if secs, err := cast.ToInt64E(value); err == nil {
		if secs <= 0 {
			return defaultValue
		}
		return time.Duration(secs) * time.Second
	}
	d, err := cast.ToDurationE(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvLevel(key string, defaultValue zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(getEnv(key, ""))
	if err != nil || level == zerolog.NoLevel {
		return defaultValue
	}
	return level
}
