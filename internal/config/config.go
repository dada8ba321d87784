package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorePostgres = "postgres"
	StoreBolt     = "bolt"

	GatewayRazorpay = "razorpay"
	GatewayMock     = "mock"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	BoltPath    string `envconfig:"BOLT_PATH" default:"orders.db"`
	DB

	GatewayMode string `envconfig:"GATEWAY_MODE" default:"razorpay"`
	Razorpay
}

type DB struct {
	Host     string `envconfig:"BLUEPRINT_DB_HOST" default:"localhost"`
	Port     string `envconfig:"BLUEPRINT_DB_PORT" default:"5432"`
	Database string `envconfig:"BLUEPRINT_DB_DATABASE" default:"orders"`
	Username string `envconfig:"BLUEPRINT_DB_USERNAME" default:"postgres"`
	Password string `envconfig:"BLUEPRINT_DB_PASSWORD"`
	Schema   string `envconfig:"BLUEPRINT_DB_SCHEMA" default:"public"`
}

// DSN builds the pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Schema,
	)
}

type Razorpay struct {
	KeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDB reads only the database settings.
func LoadDB() (DB, error) {
	var d DB
	err := envconfig.Process("", &d)
	return d, err
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreBolt:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.GatewayMode {
	case GatewayRazorpay:
		if strings.TrimSpace(c.Razorpay.KeyID) == "" || strings.TrimSpace(c.Razorpay.KeySecret) == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required in %s mode", GatewayRazorpay)
		}
	case GatewayMock:
	default:
		return fmt.Errorf("unknown GATEWAY_MODE %q", c.GatewayMode)
	}
	return nil
}
