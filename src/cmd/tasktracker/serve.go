package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/casapps/tasktracker/src/internal/config"
	"github.com/casapps/tasktracker/src/internal/database"
	"github.com/casapps/tasktracker/src/internal/server"
	"github.com/casapps/tasktracker/src/internal/telemetry"
	"github.com/casapps/tasktracker/src/pkg/utils"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	level.Set(utils.ParseLevel(cfg.GetString("log.level")))
	logger := utils.NewLogger(level, cfg.GetString("log.format"))
	slog.SetDefault(logger)

	config.Watch(cfg, func(v *viper.Viper) {
		level.Set(utils.ParseLevel(v.GetString("log.level")))
		logger.Info("Configuration reloaded", "log_level", level.Level().String())
	})

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromViper(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetDuration("server.shutdown_timeout"))
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	db, err := database.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	srv := server.New(echo.New(), cfg, db, logger, tp.Tracer)
	address := srv.Address()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(address)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetDuration("server.shutdown_timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
