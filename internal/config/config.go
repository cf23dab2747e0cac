// Package config loads application settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	CookieSecure    bool          `koanf:"cookie_secure"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	MongoURI  string `koanf:"mongo_uri"`
	MongoName string `koanf:"mongo_name"`
}

type SecurityConfig struct {
	SessionSecret string        `koanf:"session_secret"`
	SessionMaxAge time.Duration `koanf:"session_max_age"`
	BcryptCost    int           `koanf:"bcrypt_cost"`
	// LoginRate is the number of login attempts allowed per client per minute.
	LoginRate int `koanf:"login_rate"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite driver"))
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			errs = append(errs, errors.New("database.mongo_uri is required for the mongo driver"))
		}
		if c.Database.MongoName == "" {
			errs = append(errs, errors.New("database.mongo_name is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverMongo, c.Database.Driver))
	}

	if c.Security.SessionSecret == "" {
		errs = append(errs, errors.New("security.session_secret is required (SESSION_SECRET)"))
	} else if len(c.Security.SessionSecret) < 32 {
		errs = append(errs, errors.New("security.session_secret must be at least 32 characters for HMAC-SHA256 security"))
	}
	if c.Security.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("security.session_max_age must be positive"))
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("security.bcrypt_cost must be between 4 and 14, got %d", c.Security.BcryptCost))
	}
	if c.Security.LoginRate < 1 {
		errs = append(errs, fmt.Errorf("security.login_rate must be at least 1, got %d", c.Security.LoginRate))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
