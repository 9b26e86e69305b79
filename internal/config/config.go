package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Bridge   BridgeConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BridgeConfig holds the settlement parameters seeded into bridge_settings
// on first boot. After that the database row is authoritative and the
// administrative surface mutates it.
type BridgeConfig struct {
	CurrentChainID      uint64
	TransactionTimeout  time.Duration
	FeePercentageBps    int64
	MinimumAmount       string
	MaximumAmount       string
	FeeRecipient        string
	EscrowAccount       string
	FeeAdjustmentWindow time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "chainbridge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Bridge: BridgeConfig{
			CurrentChainID:     getEnvAsUint64("BRIDGE_CURRENT_CHAIN_ID", 1),
			TransactionTimeout: getEnvAsDuration("BRIDGE_TRANSACTION_TIMEOUT", 24*time.Hour),
			FeePercentageBps:   int64(getEnvAsInt("BRIDGE_FEE_PERCENTAGE_BPS", 100)),
			MinimumAmount:      getEnv("BRIDGE_MINIMUM_AMOUNT", "1"),
			MaximumAmount:      getEnv("BRIDGE_MAXIMUM_AMOUNT", "1000000000000000000000000"),
			FeeRecipient:       getEnv("BRIDGE_FEE_RECIPIENT", "0x0000000000000000000000000000000000000Fee"),
			EscrowAccount:      getEnv("BRIDGE_ESCROW_ACCOUNT", "bridge:escrow"),
			FeeAdjustmentWindow: getEnvAsDuration("BRIDGE_FEE_ADJUSTMENT_WINDOW", time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
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
