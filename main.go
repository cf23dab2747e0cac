package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/msomdec/movie-library/internal/config"
	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/handler"
	"github.com/msomdec/movie-library/internal/repository/mongodb"
	"github.com/msomdec/movie-library/internal/repository/sqlite"
	"github.com/msomdec/movie-library/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Logging))

	db, err := openDatabase(context.Background(), cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "driver", cfg.Database.Driver)

	limiter := service.NewRateLimiter(cfg.Security.LoginRate)
	defer limiter.Close()

	codec := service.NewSessionCodec(cfg.Security.SessionSecret, cfg.Security.SessionMaxAge)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Dependencies{
		Auth:     service.NewAuthService(db.Users(), cfg.Security.BcryptCost),
		Movies:   service.NewMovieService(db.Movies(), db.Users()),
		Limiter:  limiter,
		Sessions: handler.NewSessionStore(codec, cfg.Server.CookieSecure),
		DB:       db,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (domain.Database, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	case config.DriverMongo:
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
