package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Port            string `mapstructure:"PORT"`
	Origin          string `mapstructure:"ORIGIN"`
	Environment     string `mapstructure:"ENVIRONMENT"`
	APIPrefix       string `mapstructure:"API_PREFIX"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	Database        DatabaseConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver     string `mapstructure:"DB_DRIVER"`
	Host       string `mapstructure:"DB_HOST"`
	Port       string `mapstructure:"DB_PORT"`
	Username   string `mapstructure:"DB_USERNAME"`
	Password   string `mapstructure:"DB_PASSWORD"`
	Name       string `mapstructure:"DB_NAME"`
	DSN        string `mapstructure:"DB_DSN"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`
}

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var keys = []string{
	"PORT", "ORIGIN", "ENVIRONMENT", "API_PREFIX", "LOG_LEVEL", "SHUTDOWN_TIMEOUT_SECONDS",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME", "DB_DSN", "SQLITE_PATH",
}

// LoadConfig loads configuration from environment variables.
// A .env file is expected to have been loaded into the environment already.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ORIGIN", "http://localhost:4200")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_NAME", "studies")
	v.SetDefault("SQLITE_PATH", "studies.db")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := v.Unmarshal(&cfg.Database); err != nil {
		return nil, fmt.Errorf("unmarshal database config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.Port == "" {
		cfg.Database.Port = defaultPort(cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		dsn, err := cfg.Database.buildDSN()
		if err != nil {
			return nil, err
		}
		cfg.Database.DSN = dsn
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SECONDS: %d", cfg.ShutdownTimeout)
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

func defaultPort(driver string) string {
	switch driver {
	case DriverPostgres:
		return "5432"
	case DriverMySQL:
		return "3306"
	}
	return ""
}

func (d DatabaseConfig) buildDSN() (string, error) {
	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.Username, d.Password, d.Host, d.Port, d.Name), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.Username, d.Password, d.Name), nil
	case DriverSQLite:
		return SQLiteDSN(d.SQLitePath), nil
	}
	return "", fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
}

// SQLiteDSN returns a modernc sqlite DSN with foreign key enforcement enabled.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
