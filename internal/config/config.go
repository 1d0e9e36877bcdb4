// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	External ExternalConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name            string
	Version         string
	Environment     string
	Debug           bool
	DefaultCurrency string
	CompanyName     string
	CompanyAddress  string
	CompanyEmail    string
	CompanyWebsite  string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	// RefreshTokenRotation issues a new refresh token on every refresh; when
	// off, the presented token is returned unchanged.
	RefreshTokenRotation bool
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CartCookieName     string
}

// ExternalConfig contains external service configurations
type ExternalConfig struct {
	Stripe   StripeConfig
	Printful PrintfulConfig
	Email    EmailConfig
}

// StripeConfig contains the hosted checkout configuration.
// Enabled is derived once at load time; components never re-check the env.
type StripeConfig struct {
	Enabled       bool
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// PrintfulConfig contains the fulfillment provider configuration.
// The integration is entirely inert unless an API token is configured.
type PrintfulConfig struct {
	Enabled           bool
	APIToken          string
	BaseURL           string
	DefaultArtworkURL string
	MarkupMultiplier  float64
	PlaceholderStock  int
	SyncBatchSize     int
}

// EmailConfig contains email service configuration
type EmailConfig struct {
	Enabled      bool
	Provider     string
	APIKey       string
	FromEmail    string
	FromName     string
	ReplyTo      string
	BaseURL      string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	TemplateDir  string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	printfulToken := getEnv("PRINTFUL_API_TOKEN", "")
	stripeKey := getEnv("STRIPE_SECRET_KEY", "")
	emailProvider := getEnv("EMAIL_PROVIDER", "")

	config := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "Storefront Backend"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
			Environment:     getEnv("APP_ENV", "development"),
			Debug:           getEnvAsBool("APP_DEBUG", true),
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "CHF"),
			CompanyName:     getEnv("COMPANY_NAME", "Storefront"),
			CompanyAddress:  getEnv("COMPANY_ADDRESS", ""),
			CompanyEmail:    getEnv("COMPANY_EMAIL", ""),
			CompanyWebsite:  getEnv("COMPANY_WEBSITE", ""),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:               getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			AccessTokenExpiry:    getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
			RefreshTokenExpiry:   getEnvAsDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
			RefreshTokenRotation: getEnvAsBool("JWT_REFRESH_ROTATION", true),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			CartCookieName:     getEnv("CART_COOKIE_NAME", "storefront_cart"),
		},
		External: ExternalConfig{
			Stripe: StripeConfig{
				Enabled:       stripeKey != "",
				SecretKey:     stripeKey,
				WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
				SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
				CancelURL:     getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
			},
			Printful: PrintfulConfig{
				Enabled:           printfulToken != "",
				APIToken:          printfulToken,
				BaseURL:           getEnv("PRINTFUL_BASE_URL", "https://api.printful.com"),
				DefaultArtworkURL: getEnv("PRINTFUL_DEFAULT_ARTWORK_URL", ""),
				MarkupMultiplier:  getEnvAsFloat("PRINTFUL_MARKUP_MULTIPLIER", 2.0),
				PlaceholderStock:  getEnvAsInt("PRINTFUL_PLACEHOLDER_STOCK", 9999),
				SyncBatchSize:     getEnvAsInt("PRINTFUL_SYNC_BATCH_SIZE", 20),
			},
			Email: EmailConfig{
				Enabled:      emailProvider != "",
				Provider:     emailProvider,
				APIKey:       getEnv("EMAIL_API_KEY", ""),
				FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
				FromName:     getEnv("FROM_NAME", "Storefront"),
				ReplyTo:      getEnv("REPLY_TO_EMAIL", ""),
				BaseURL:      getEnv("SITE_BASE_URL", "http://localhost:3000"),
				SMTPHost:     getEnv("SMTP_HOST", ""),
				SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
				SMTPUsername: getEnv("SMTP_USER", ""),
				SMTPPassword: getEnv("SMTP_PASS", ""),
				SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", true),
				TemplateDir:  getEnv("EMAIL_TEMPLATE_DIR", "templates/email"),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.External.Printful.Enabled && c.External.Printful.MarkupMultiplier <= 0 {
		return fmt.Errorf("PRINTFUL_MARKUP_MULTIPLIER must be positive")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
