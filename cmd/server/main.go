package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/slightcsv/internal/config"
	"github.com/JonMunkholm/slightcsv/internal/core"
	"github.com/JonMunkholm/slightcsv/internal/export"
	"github.com/JonMunkholm/slightcsv/internal/logging"
	"github.com/JonMunkholm/slightcsv/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	if err := os.MkdirAll(cfg.Load.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.Load.DataDir, "error", err)
		os.Exit(1)
	}

	service, err := core.NewService(core.ServiceConfig{
		DataDir:            cfg.Load.DataDir,
		MaxFileSize:        cfg.Load.MaxFileSize,
		MaxConcurrentLoads: cfg.Load.MaxConcurrent,
		MaxLoadWait:        cfg.Load.MaxWaitTime,
		LoadTimeout:        cfg.Load.Timeout,
		Defaults: core.Settings{
			Separator: cfg.Parser.Separator,
			Escape:    cfg.Parser.Escape,
			Strip:     cfg.Parser.Strip,
			Replace:   cfg.Parser.Replace,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	if cfg.Database.Enabled() {
		pool, err := connect(context.Background(), &cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			logger.Info("connected to database")
		}
		service.SetExporter(export.New(pool).WithLogger(logger))
	} else {
		logger.Info("DATABASE_URL not set, exports disabled")
	}

	server := web.NewServer(service, cfg, logger)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then wait for loads still running
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		if st := service.LimiterStatus(); st.Active > 0 {
			logger.Info("waiting for loads to complete", "active", st.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				logger.Warn("loads did not complete in time", "error", err)
			} else {
				logger.Info("all loads completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
}

// connect opens and pings the export database pool.
func connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
