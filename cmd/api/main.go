// Package main is the Foodgram API server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/infrastructure/container"
	"github.com/alchemorsel/foodgram/pkg/logger"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "foodgram",
		Short:         "Foodgram recipe API server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the configuration file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "foodgram: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, loader, err := config.NewLoader(configPath)
	if err != nil {
		return err
	}

	log, level, err := logger.NewWithLevel(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Only the log level is applied live; everything else needs a restart.
	loader.Watch(func(next *config.Config) {
		level.SetLevel(logger.ParseLevel(next.App.LogLevel))
		log.Info("Configuration reloaded", zap.String("log_level", next.App.LogLevel))
	}, func(err error) {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	})

	app := fx.New(
		fx.Supply(cfg, log),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		container.Module,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		log.Info("Application requested shutdown", zap.Int("exit_code", sig.ExitCode))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	log.Info("Foodgram stopped")
	return nil
}
