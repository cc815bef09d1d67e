package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/profile-bff/internal/config"
	"github.com/jonathan/profile-bff/internal/observability"
	"github.com/jonathan/profile-bff/internal/profile"
	"github.com/jonathan/profile-bff/internal/profileapi"
	"github.com/jonathan/profile-bff/internal/server"
	"github.com/jonathan/profile-bff/internal/server/ratelimit"
	"github.com/jonathan/profile-bff/internal/transform"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the profile endpoints under /api/profiles.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	rlCfg, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	naming, err := transform.Renaming(cfg.ViewFieldRenames)
	if err != nil {
		return fmt.Errorf("invalid VIEW_FIELD_RENAMES: %w", err)
	}

	client := profileapi.NewClient(cfg.ProfileAPIBaseURL, logger.Named("profileapi"),
		profileapi.WithTimeout(cfg.ProfileAPITimeout))

	srv := server.New(cfg, server.Deps{
		Profiles:    profile.NewService(client, logger.Named("profile")),
		Mapper:      transform.NewMapper(naming),
		JWT:         server.NewJWTService(jwtCfg),
		RateLimiter: ratelimit.NewLimiter(rlCfg),
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("profile API configured",
		zap.String("base_url", cfg.ProfileAPIBaseURL),
		zap.Duration("timeout", cfg.ProfileAPITimeout),
		zap.Strings("cors_origins", cfg.CORSAllowedOrigins),
	)
	return srv.Run(ctx)
}
