package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Server.CookieSecure {
		t.Error("expected secure cookies by default")
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "movie-library.db" {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.Security.BcryptCost)
	}
	if cfg.Security.SessionMaxAge != 30*24*time.Hour {
		t.Errorf("expected 720h session max age, got %v", cfg.Security.SessionMaxAge)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Addr())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("DATABASE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.CookieSecure {
		t.Error("expected COOKIE_SECURE=false to disable secure cookies")
	}
	if cfg.Database.Driver != DriverMongo || cfg.Database.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Database.MongoName != "movie_library" {
		t.Errorf("expected default mongo name, got %q", cfg.Database.MongoName)
	}
	if cfg.Security.SessionMaxAge != 2*time.Hour {
		t.Errorf("expected 2h, got %v", cfg.Security.SessionMaxAge)
	}
	if cfg.Security.BcryptCost != 4 {
		t.Errorf("expected bcrypt cost 4, got %d", cfg.Security.BcryptCost)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7000
database:
  path: /tmp/movies.db
security:
  session_secret: ` + testSecret + `
  login_rate: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7001 {
		t.Errorf("expected env to override file port, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/movies.db" {
		t.Errorf("expected path from file, got %q", cfg.Database.Path)
	}
	if cfg.Security.LoginRate != 3 {
		t.Errorf("expected login rate 3, got %d", cfg.Security.LoginRate)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "session_secret") {
		t.Fatalf("expected session secret error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.Security.SessionSecret = "short" }, "at least 32"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"mongo without uri", func(c *Config) { c.Database.Driver = DriverMongo }, "mongo_uri"},
		{"bcrypt too high", func(c *Config) { c.Security.BcryptCost = 20 }, "bcrypt_cost"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.SessionSecret = testSecret
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
