package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gearloop-backend/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Payment   PaymentConfig   `yaml:"payment"`
	Push      PushConfig      `yaml:"push"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Billing   BillingConfig   `yaml:"billing"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// PaymentConfig contains payment provider settings
type PaymentConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PushConfig contains FCM push settings
type PushConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// BillingConfig contains money-flow settings
type BillingConfig struct {
	Currency            string                  `yaml:"currency"`
	PlatformAccountID   int32                   `yaml:"platform_account_id"`
	RenterFeeBps        int32                   `yaml:"renter_fee_bps"`
	PaymentTTLMinutes   int                     `yaml:"payment_ttl_minutes"`
	CommissionTiers     []domain.CommissionTier `yaml:"commission_tiers"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireUnpaidRentals   string `yaml:"expire_unpaid_rentals"`
	SendHandoverReminders string `yaml:"send_handover_reminders"`
	ProcessPayoutRequests string `yaml:"process_payout_requests"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Payment provider
	if val := os.Getenv("PAYMENT_BASE_URL"); val != "" {
		c.Payment.BaseURL = val
	}
	if val := os.Getenv("PAYMENT_API_KEY"); val != "" {
		c.Payment.APIKey = val
	}
	if val := os.Getenv("PAYMENT_WEBHOOK_SECRET"); val != "" {
		c.Payment.WebhookSecret = val
	}

	// Push / email
	if val := os.Getenv("FCM_CREDENTIALS_FILE"); val != "" {
		c.Push.CredentialsFile = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Payment validation
	if c.Payment.BaseURL == "" {
		return fmt.Errorf("payment provider base URL is required")
	}
	if c.Payment.APIKey == "" {
		return fmt.Errorf("payment provider API key is required")
	}
	if c.Payment.TimeoutSeconds <= 0 {
		c.Payment.TimeoutSeconds = 10
	}

	// Email validation
	if c.Email.Enabled && c.Email.APIKey == "" {
		return fmt.Errorf("sendgrid API key is required when email is enabled")
	}
	if c.Push.Enabled && c.Push.CredentialsFile == "" {
		return fmt.Errorf("FCM credentials file is required when push is enabled")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Billing defaults
	if c.Billing.Currency == "" {
		c.Billing.Currency = "USD"
	}
	if c.Billing.PlatformAccountID == 0 {
		return fmt.Errorf("billing platform_account_id is required")
	}
	if c.Billing.RenterFeeBps == 0 {
		c.Billing.RenterFeeBps = 1000 // 10%
	}
	if c.Billing.PaymentTTLMinutes == 0 {
		c.Billing.PaymentTTLMinutes = 60 * 24 // unpaid rentals expire after a day
	}
	if len(c.Billing.CommissionTiers) == 0 {
		c.Billing.CommissionTiers = domain.DefaultCommissionTiers
	}
	for i := 1; i < len(c.Billing.CommissionTiers); i++ {
		prev, cur := c.Billing.CommissionTiers[i-1], c.Billing.CommissionTiers[i]
		if cur.MinRentals < prev.MinRentals {
			return fmt.Errorf("commission tiers must be ordered by min_rentals")
		}
		if cur.RateBps > prev.RateBps {
			return fmt.Errorf("commission rate must not increase with rental count (tier %q)", cur.Name)
		}
	}

	// Scheduler defaults
	if c.Scheduler.ExpireUnpaidRentals == "" {
		c.Scheduler.ExpireUnpaidRentals = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.SendHandoverReminders == "" {
		c.Scheduler.SendHandoverReminders = "0 0 9 * * *" // 9 AM UTC
	}
	if c.Scheduler.ProcessPayoutRequests == "" {
		c.Scheduler.ProcessPayoutRequests = "0 0 6 * * *" // 6 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
