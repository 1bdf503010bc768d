package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	App    AppConfig
	Market MarketConfig
	Store  StoreConfig
	MySQL  MySQLConfig
	Redis  RedisConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name    string `envconfig:"APP_NAME" default:"giftcard-market"`
	Debug   bool   `envconfig:"APP_DEBUG" default:"false"`
	Version string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// MarketConfig holds marketplace settings.
type MarketConfig struct {
	HouseAccount          string `envconfig:"MARKET_HOUSE_ACCOUNT" default:"Raise"`
	DefaultCommissionRate string `envconfig:"MARKET_DEFAULT_COMMISSION_RATE" default:"0.15"`
	AbortOnError          bool   `envconfig:"MARKET_ABORT_ON_ERROR" default:"false"`
	ProgressBar           bool   `envconfig:"MARKET_PROGRESS_BAR" default:"false"`
}

// StoreConfig selects and configures the record-store backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite", "mysql", "redis".
	Backend    string `envconfig:"STORE_BACKEND" default:"memory"`
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"./data/market.db"`
}

// MySQLConfig holds MySQL connection settings for the "mysql" backend.
type MySQLConfig struct {
	Host     string `envconfig:"MYSQL_HOST" default:"localhost"`
	Port     int    `envconfig:"MYSQL_PORT" default:"3306"`
	Name     string `envconfig:"MYSQL_NAME" default:"giftcard_market"`
	User     string `envconfig:"MYSQL_USER" default:"root"`
	Password string `envconfig:"MYSQL_PASS" default:""`
}

// RedisConfig holds Redis connection settings for the "redis" backend.
type RedisConfig struct {
	Host      string `envconfig:"REDIS_HOST" default:"localhost"`
	Port      int    `envconfig:"REDIS_PORT" default:"6379"`
	Password  string `envconfig:"REDIS_PASSWORD" default:""`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"giftcard-market"`
}

// DSN returns the MySQL data source name with connection timeouts set to
// prevent hanging connections.
func (m *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&timeout=5s&readTimeout=10s&writeTimeout=10s",
		m.User, m.Password, m.Host, m.Port, m.Name)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
