package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Statutory Provident Fund rates, as fractions of gross (0.12 = 12%).
	PfEmployeeRate string
	PfEmployerRate string

	// AllowPaidDocumentDeletion permits removing documents from PAID payments.
	AllowPaidDocumentDeletion bool

	// Local document storage root.
	StorageBasePath string

	// Assignment gateway (the work-tracking service owning assignment data).
	GatewayBaseURL string
	GatewayAPIKey  string
	GatewayTimeout time.Duration

	// Requests per minute per client IP. Zero disables rate limiting.
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("PF_EMPLOYEE_RATE", "0.12")
	viper.SetDefault("PF_EMPLOYER_RATE", "0.12")
	viper.SetDefault("ALLOW_PAID_DOCUMENT_DELETION", false)
	viper.SetDefault("STORAGE_BASE_PATH", "./storage")
	viper.SetDefault("GATEWAY_BASE_URL", "http://localhost:8081")
	viper.SetDefault("GATEWAY_API_KEY", "")
	viper.SetDefault("GATEWAY_TIMEOUT", "10s")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	gatewayTimeoutStr := viper.GetString("GATEWAY_TIMEOUT")
	gatewayTimeout, err := time.ParseDuration(gatewayTimeoutStr)
	if err != nil {
		gatewayTimeout = 10 * time.Second
		if gatewayTimeoutStr != "" {
			log.Printf("Warning: Invalid value for GATEWAY_TIMEOUT ('%s'). Defaulting to %s.\n", gatewayTimeoutStr, gatewayTimeout.String())
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.PfEmployeeRate = viper.GetString("PF_EMPLOYEE_RATE")
	cfg.PfEmployerRate = viper.GetString("PF_EMPLOYER_RATE")
	cfg.AllowPaidDocumentDeletion = viper.GetBool("ALLOW_PAID_DOCUMENT_DELETION")
	cfg.StorageBasePath = viper.GetString("STORAGE_BASE_PATH")
	cfg.GatewayBaseURL = viper.GetString("GATEWAY_BASE_URL")
	cfg.GatewayAPIKey = viper.GetString("GATEWAY_API_KEY")
	cfg.GatewayTimeout = gatewayTimeout
	cfg.RateLimitPerMinute = viper.GetInt("RATE_LIMIT_PER_MINUTE")

	if cfg.GatewayBaseURL == "" {
		log.Println("Warning: GATEWAY_BASE_URL not set. Assignment lookups will not function.")
	}

	return cfg, nil
}
