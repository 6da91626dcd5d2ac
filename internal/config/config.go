package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/partnerhub/commission-service/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Window    WindowConfig
	Policy    PolicyConfig
	Auth      AuthConfig
	Secrets   SecretsConfig
	Documents DocumentsConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// PasswordSecretPath, when set, overrides Password with a value
	// resolved through the configured secret manager at startup.
	PasswordSecretPath string
}

// WindowConfig holds the monthly withdrawal request window policy
type WindowConfig struct {
	StartDay int
	EndDay   int
}

// PolicyConfig holds aggregation policy settings
type PolicyConfig struct {
	PendingIncludesReserved bool
}

// AuthConfig holds bearer token verification configuration
type AuthConfig struct {
	// JWTPublicKeyPath points at a PEM-encoded RSA public key
	JWTPublicKeyPath string
	Issuer           string
}

// SecretsConfig selects and configures the secret manager backend
type SecretsConfig struct {
	// Provider: "env", "local", "aws", or "vault"
	Provider string

	LocalBasePath string

	AWSRegion   string
	AWSEndpoint string

	VaultAddress   string
	VaultToken     string
	VaultMountPath string
}

// DocumentsConfig holds object storage configuration for the document proxy
type DocumentsConfig struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvAsInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "postgres"),
			Password:           getEnv("DB_PASSWORD", ""),
			Database:           getEnv("DB_NAME", "commission_service"),
			SSLMode:            getEnv("DB_SSL_MODE", "disable"),
			MaxConns:           int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:           int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			PasswordSecretPath: getEnv("DB_PASSWORD_SECRET_PATH", ""),
		},
		Window: WindowConfig{
			StartDay: getEnvAsInt("REQUEST_WINDOW_START_DAY", 1),
			EndDay:   getEnvAsInt("REQUEST_WINDOW_END_DAY", 5),
		},
		Policy: PolicyConfig{
			PendingIncludesReserved: getEnvAsBool("PENDING_INCLUDES_RESERVED", true),
		},
		Auth: AuthConfig{
			JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", ""),
			Issuer:           getEnv("JWT_ISSUER", "partnerhub"),
		},
		Secrets: SecretsConfig{
			Provider:       getEnv("SECRETS_PROVIDER", "env"),
			LocalBasePath:  getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
			AWSEndpoint:    getEnv("AWS_SECRETS_ENDPOINT", ""),
			VaultAddress:   getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
		},
		Documents: DocumentsConfig{
			Region:       getEnv("DOCUMENTS_S3_REGION", "us-east-1"),
			Endpoint:     getEnv("DOCUMENTS_S3_ENDPOINT", ""),
			UsePathStyle: getEnvAsBool("DOCUMENTS_S3_PATH_STYLE", false),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" && cfg.Database.PasswordSecretPath == "" {
		return nil, fmt.Errorf("DB_PASSWORD or DB_PASSWORD_SECRET_PATH is required")
	}
	if cfg.Auth.JWTPublicKeyPath == "" {
		return nil, fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}
	if err := cfg.RequestWindow().Validate(); err != nil {
		return nil, err
	}
	switch cfg.Secrets.Provider {
	case "env", "local", "aws", "vault":
	default:
		return nil, fmt.Errorf("unknown SECRETS_PROVIDER: %q", cfg.Secrets.Provider)
	}

	return cfg, nil
}

// RequestWindow returns the configured withdrawal window policy
func (c *Config) RequestWindow() domain.RequestWindow {
	return domain.RequestWindow{StartDay: c.Window.StartDay, EndDay: c.Window.EndDay}
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
