package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// App
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	// Neo4j
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database"`

	// Connection pool
	MaxPoolSize        int           `yaml:"max_pool_size"`
	AcquisitionTimeout time.Duration `yaml:"acquisition_timeout"`
	MaxTxRetryTime     time.Duration `yaml:"max_tx_retry_time"`

	// Builder
	BatchSize int `yaml:"batch_size"`
	Workers   int `yaml:"workers"`

	// Query engine
	DefaultQueryLimit int `yaml:"default_query_limit"`
	MaxQueryLimit     int `yaml:"max_query_limit"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", ""),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:      getEnv("NEO4J_DATABASE", ""),
		MaxPoolSize:        getEnvInt("NEO4J_MAX_POOL_SIZE", 50),
		AcquisitionTimeout: getEnvDuration("NEO4J_ACQUISITION_TIMEOUT", 60*time.Second),
		MaxTxRetryTime:     getEnvDuration("NEO4J_MAX_TX_RETRY_TIME", 30*time.Second),
		BatchSize:          getEnvInt("BUILDER_BATCH_SIZE", 100),
		Workers:            getEnvInt("BUILDER_WORKERS", 4),
		DefaultQueryLimit:  getEnvInt("QUERY_DEFAULT_LIMIT", 20),
		MaxQueryLimit:      getEnvInt("QUERY_MAX_LIMIT", 500),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads configuration from the environment, then overlays the
// values present in a YAML file. CLI users point at it with --config.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BUILDER_BATCH_SIZE must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("BUILDER_WORKERS must be positive")
	}
	if c.MaxQueryLimit < 1 {
		return fmt.Errorf("QUERY_MAX_LIMIT must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultValue
}
