package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// External FX provider
	FxAPIBaseURL      string
	FxAPIKey          string
	FxProviderTimeout time.Duration

	// Security audit sinks. Webhook delivery is fire-and-forget.
	SecurityWebhookURLs []string
	PosthogAPIKey       string

	// Requests per period in ulule/limiter format, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "dealer-ledger-app")
	viper.SetDefault("FX_API_BASE_URL", "https://api.exchangeratesapi.io/v1")
	viper.SetDefault("FX_API_KEY", "")
	viper.SetDefault("FX_PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("SECURITY_WEBHOOK_URLS", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.FxAPIBaseURL = viper.GetString("FX_API_BASE_URL")
	cfg.FxAPIKey = viper.GetString("FX_API_KEY")
	if cfg.FxAPIKey == "" {
		log.Println("Warning: FX_API_KEY not set. Exchange rate fetches will fail.")
	}

	fxTimeoutStr := viper.GetString("FX_PROVIDER_TIMEOUT")
	fxTimeout, err := time.ParseDuration(fxTimeoutStr)
	if err != nil {
		fxTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for FX_PROVIDER_TIMEOUT ('%s'). Defaulting to %s.\n", fxTimeoutStr, fxTimeout.String())
	}
	cfg.FxProviderTimeout = fxTimeout

	cfg.SecurityWebhookURLs = splitAndTrim(viper.GetString("SECURITY_WEBHOOK_URLS"))
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

// splitAndTrim splits a comma-separated list, dropping empty entries.
func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
