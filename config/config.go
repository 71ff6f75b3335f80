package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment   string        `env:"ENV" envDefault:"pro"`
	Address       string        `env:"ADDRESS_LISTEN"`
	DBDriver      string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DBURL         string        `env:"DB_URL"`
	JWTSecret     string        `env:"JWT_SECRET"`
	EnableSignup  bool          `env:"ENABLE_SIGNUP"`
	WhitelistHost string        `env:"WHITELIST_HOST"`
	CertCacheDir  string        `env:"CERT_CACHE_DIR" envDefault:"/var/www/.cache"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment and fills in the
// development defaults.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	switch c.Environment {
	case DevEnv, ProEnv:
	default:
		return Config{}, fmt.Errorf("unknown environment %q", c.Environment)
	}

	if c.JWTSecret == "" && c.Dev() {
		c.JWTSecret = "unsecure"
	}
	if c.JWTSecret == "" {
		return Config{}, errors.New("no secret defined")
	}
	if c.Address == "" && c.Dev() {
		c.Address = ":8080"
	}
	if c.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBURL == "" {
			c.DBURL = "./blog.db?_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		if c.DBURL == "" {
			return Config{}, errors.New("DB_URL is required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}
	return c, nil
}

func (c Config) Dev() bool {
	return c.Environment == DevEnv
}

// AutoTLS reports whether the server should obtain certificates itself
// instead of listening on a plain address.
func (c Config) AutoTLS() bool {
	return c.Address == ""
}
