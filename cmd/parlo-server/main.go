package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/parlolabs/parlo/internal/bootstrap"
	"github.com/parlolabs/parlo/internal/config"
	"github.com/parlolabs/parlo/internal/database"
	"github.com/parlolabs/parlo/internal/enrollment"
	"github.com/parlolabs/parlo/internal/review"
	"github.com/parlolabs/parlo/internal/server"
	"github.com/parlolabs/parlo/internal/statistics"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "parlo-server",
		Short:         "Parlo spaced-repetition engine HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.OnShutdown("database", func(ctx context.Context) error {
		return db.Close()
	})

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("database.Migrate() > %w", err)
	}

	e := newEcho(cfg, db)
	e.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)
	app.OnShutdown("http server", e.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", slog.String("addr", e.Server.Addr))
		if err := e.Start(e.Server.Addr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func newEcho(cfg *config.Config, db *sqlx.DB) *echo.Echo {
	repo := review.NewDBRepository(db)

	var source enrollment.ContentSource
	if cfg.ContentAPI.BaseURL != "" {
		source = enrollment.NewHTTPContentSource(cfg.ContentAPI.BaseURL, cfg.ContentAPI.Key, cfg.ContentAPI.RetryAttempts)
	} else {
		source = enrollment.NewDBContentSource(db)
	}

	handler := server.NewHandler(
		review.NewService(repo, cfg.Review.SubmitRetries),
		enrollment.NewService(repo, source),
		statistics.NewAggregator(repo),
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORS.AllowedOrigins,
	}))

	handler.Register(e)
	return e
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
