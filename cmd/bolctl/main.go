package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dock-optimizer/internal/bootstrap"
	"dock-optimizer/internal/intake"
	"dock-optimizer/internal/queue"
	"dock-optimizer/internal/shared/config"
	"dock-optimizer/internal/shared/storage/db"
)

var (
	tenantID   int64
	userID     int64
	scheduleID int64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "bolctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bolctl",
		Short:        "Dock Optimizer document pipeline CLI",
		Long:         `bolctl runs the bill-of-lading intake pipeline against local files, requeues documents for re-OCR, and applies database migrations.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().Int64Var(&tenantID, "tenant", 1, "Tenant owning the document")
	cmd.PersistentFlags().Int64Var(&userID, "user", 0, "User uploading the document")
	cmd.AddCommand(
		newProcessCmd(),
		newReprocessCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Store a local file and run OCR intake on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := bootstrap.Build(config.Load())
			if err != nil {
				return err
			}
			defer closeDB(app)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var schedule *int64
			if cmd.Flags().Changed("schedule-id") {
				schedule = &scheduleID
			}

			result, err := app.Intake.Ingest(ctx, args[0], f, tenantID, userID, schedule)
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	cmd.Flags().Int64Var(&scheduleID, "schedule-id", 0, "Dock schedule to link the document to")
	return cmd
}

func newReprocessCmd() *cobra.Command {
	var enqueue bool
	cmd := &cobra.Command{
		Use:   "reprocess <document-id>",
		Short: "Re-run OCR and extraction for a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := bootstrap.Build(config.Load())
			if err != nil {
				return err
			}
			defer closeDB(app)

			if enqueue {
				client := queue.NewAsynqClient(app.RedisOpt())
				defer client.Close()
				return client.Send(ctx, queue.Message{
					DocumentID: args[0],
					RequestID:  uuid.NewString(),
					EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
					Version:    1,
				})
			}

			result, err := app.Intake.Reprocess(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Queue the job for the background worker instead of running inline")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
			sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return db.RunMigrations(ctx, sqlDB)
		},
	}
}

func closeDB(app *bootstrap.App) {
	if app.DB != nil {
		app.DB.Close()
	}
}

func printResult(result intake.Result) error {
	out := map[string]any{
		"documentId":  result.DocumentID,
		"status":      string(result.Status),
		"fields":      result.Fields,
		"linkCreated": result.LinkCreated,
		"attempts":    result.Outcome.Attempts,
	}
	if result.Outcome.ErrorType != "" {
		out["errorType"] = result.Outcome.ErrorType
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
