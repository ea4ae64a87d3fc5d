package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mfreitas/crisischat-server/internal/app"
	"github.com/mfreitas/crisischat-server/internal/config"
	"github.com/mfreitas/crisischat-server/internal/log"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap := log.New("info")

			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			logger.Info().Str("config", path).Msg("starting crisischat server")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
}

func buildLogger(cfg config.Config) (*zerolog.Logger, error) {
	if cfg.LogFile != "" {
		logger, err := log.NewWithFile(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		return logger, nil
	}
	return log.New(cfg.LogLevel), nil
}
