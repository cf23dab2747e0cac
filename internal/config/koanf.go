package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			CookieSecure:    true, // disable only for local development
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:    DriverSQLite,
			Path:      "movie-library.db",
			MongoName: "movie_library",
		},
		Security: SecurityConfig{
			SessionMaxAge: 30 * 24 * time.Hour,
			BcryptCost:    12,
			LoginRate:     10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envMappings maps environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"PORT":                  "server.port",
	"COOKIE_SECURE":         "server.cookie_secure",
	"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	"DATABASE_DRIVER":       "database.driver",
	"DATABASE_PATH":         "database.path",
	"MONGO_URI":             "database.mongo_uri",
	"MONGO_DB_NAME":         "database.mongo_name",
	"SESSION_SECRET":        "security.session_secret",
	"SESSION_MAX_AGE":       "security.session_max_age",
	"BCRYPT_COST":           "security.bcrypt_cost",
	"LOGIN_RATE_PER_MINUTE": "security.login_rate",
	"LOG_LEVEL":             "logging.level",
	"LOG_FORMAT":            "logging.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToUpper(key)]
}

// Load builds the configuration from defaults, then the config file if one
// exists, then environment variables, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
