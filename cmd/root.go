package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facelog/internal/config"
	"github.com/andresmejia3/facelog/internal/store"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/spf13/cobra"
)

// Database requirement of a subcommand, stored in its Annotations.
const (
	dbAnnotation = "database"
	dbRequired   = "required"
	dbOptional   = "optional"
)

// defaultDBURL is used when a command needs the database and nothing is configured.
const defaultDBURL = "postgres://localhost:5432/facelog"

var (
	// DB is the database connection shared by subcommands. It stays nil for
	// commands that do not use the database.
	DB *store.Store
	// cfg is the environment configuration, loaded before any subcommand runs
	cfg config.Config
	// dbURL is the connection string
	dbURL string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facelog",
	Short:   "Webcam face recognition attendance logger",
	Version: Version, // This enables the --version flag
	// Errors are reported once by utils.ShowError, not by cobra
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		url, needed := resolveDBURL(cmd, dbURL, cfg.Database)
		if !needed {
			return nil
		}

		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
	},
}

// resolveDBURL decides whether cmd connects to Postgres and where. The flag
// wins over the environment. Optional commands connect only when something
// is configured; required ones fall back to the local default.
func resolveDBURL(cmd *cobra.Command, flagURL string, db config.DatabaseConfig) (string, bool) {
	url := flagURL
	if url == "" {
		url = db.ConnString()
	}

	switch cmd.Annotations[dbAnnotation] {
	case dbRequired:
		if url == "" {
			url = defaultDBURL
		}
		return url, true
	case dbOptional:
		return url, url != ""
	default:
		return "", false
	}
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Commands box their own failures; anything else (bad flags, a failed
		// connection) is boxed here, once
		if !utils.Shown(err) {
			utils.ShowError("Command failed", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: DATABASE_URL or POSTGRES_* env)")
}
