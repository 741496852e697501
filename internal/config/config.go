package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Saldo"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Driver     string `envconfig:"DB_DRIVER" default:"postgres"`
		Host       string `envconfig:"DB_HOST" default:"localhost"`
		Port       int    `envconfig:"DB_PORT" default:"5432"`
		User       string `envconfig:"DB_USER" default:"postgres"`
		Password   string `envconfig:"DB_PASSWORD" default:""`
		Name       string `envconfig:"DB_NAME" default:"saldo"`
		SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"saldo.db"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	CORS struct {
		Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}

	Import struct {
		DefaultCategory string `envconfig:"IMPORT_DEFAULT_CATEGORY" default:"other"`
		MaxBytes        int64  `envconfig:"IMPORT_MAX_BYTES" default:"10485760"`
	}
}

// ConnectionString builds the Postgres DSN from the DB_* settings.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// DataSource returns the database/sql driver name and DSN for the configured driver.
func (c *Config) DataSource() (string, string, error) {
	switch c.DB.Driver {
	case DriverPostgres:
		return DriverPostgres, c.ConnectionString(), nil
	case DriverSQLite:
		return DriverSQLite, c.DB.SQLitePath, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// LoadServer is Load plus the checks only the API server needs.
func LoadServer() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if cfg.Auth.Secret == "" {
		return nil, errors.New("AUTH_SECRET is required")
	}

	return cfg, nil
}
