package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/parlolabs/parlo/internal/cli"
	"github.com/parlolabs/parlo/internal/config"
	"github.com/parlolabs/parlo/internal/database"
	"github.com/parlolabs/parlo/internal/enrollment"
	"github.com/parlolabs/parlo/internal/review"
	"github.com/parlolabs/parlo/internal/statistics"
)

var configFile string

func main() {
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "parlo",
		Short:         "Parlo spaced-repetition engine admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newMigrateCommand(),
		newEnrollCommand(),
		newDueCommand(),
		newStatsCommand(),
	)
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})),
	)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func openDB() (*config.Config, *sqlx.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	return cfg, db, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newEnrollCommand() *cobra.Command {
	var lessonID string
	enrollCommand := &cobra.Command{
		Use:   "enroll <user-id> <quiz-id>",
		Short: "Enroll a user into a quiz's questions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := review.NewDBRepository(db)
			source := newContentSource(cfg, db)
			svc := enrollment.NewService(repo, source)

			added, err := svc.EnrollFromQuiz(cmd.Context(), args[0], args[1], lessonID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new item(s) added\n", added)
			return nil
		},
	}
	enrollCommand.Flags().StringVar(&lessonID, "lesson", "", "also enroll this lesson")
	return enrollCommand
}

// newContentSource picks the HTTP content source when a content API base URL
// is configured, otherwise reads the shared database.
func newContentSource(cfg *config.Config, db *sqlx.DB) enrollment.ContentSource {
	if cfg.ContentAPI.BaseURL != "" {
		return enrollment.NewHTTPContentSource(cfg.ContentAPI.BaseURL, cfg.ContentAPI.Key, cfg.ContentAPI.RetryAttempts)
	}
	return enrollment.NewDBContentSource(db)
}

func newDueCommand() *cobra.Command {
	var asOfRaw string
	dueCommand := &cobra.Command{
		Use:   "due <user-id>",
		Short: "List a user's due review items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			asOf := time.Now()
			if asOfRaw != "" {
				asOf, err = time.Parse(time.RFC3339, asOfRaw)
				if err != nil {
					return fmt.Errorf("invalid --as-of value: %w", err)
				}
			}

			svc := review.NewService(review.NewDBRepository(db), cfg.Review.SubmitRetries)
			items, err := svc.ListDue(cmd.Context(), args[0], asOf)
			if err != nil {
				return err
			}

			cli.RenderDueList(cmd.OutOrStdout(), items, asOf)
			return nil
		},
	}
	dueCommand.Flags().StringVar(&asOfRaw, "as-of", "", "list items due as of this RFC 3339 time")
	return dueCommand
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Show a user's review statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			aggregator := statistics.NewAggregator(review.NewDBRepository(db))
			stats, err := aggregator.UserStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			totalPoints, err := aggregator.TotalPoints(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cli.RenderStats(cmd.OutOrStdout(), stats, totalPoints)
			return nil
		},
	}
}
