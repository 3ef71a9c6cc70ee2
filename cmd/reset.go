package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetDatabase bool
	resetLog      bool
	resetArchive  bool
)

var resetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Reset system state (Log, Archive, Database)",
	Long:        "Clears all data. By default, it resets everything. Use flags to clear specific components.",
	Annotations: map[string]string{dbAnnotation: dbOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c := cfg
		applyFlags(cmd, &c)

		// If no flags are set, default to clearing EVERYTHING
		all := !resetDatabase && !resetLog && !resetArchive
		if all {
			resetLog = true
			resetArchive = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetLog {
			if confirm(os.Stdout, reader, fmt.Sprintf("⚠️  Are you sure you want to delete %s?", c.LogPath)) {
				fmt.Println("🗑️  Clearing Log...")
				removePath(c.LogPath)
			}
		}

		if resetArchive {
			if confirm(os.Stdout, reader, fmt.Sprintf("⚠️  Are you sure you want to delete every archived log in %s?", c.ArchiveDir)) {
				fmt.Println("🗑️  Clearing Archive...")
				removePath(c.ArchiveDir)
			}
		}

		if resetDatabase || (all && DB != nil) {
			if DB == nil {
				err := fmt.Errorf("no database configured")
				utils.ShowError("--database needs --db, DATABASE_URL or POSTGRES_HOST", err)
				return err
			}
			if confirm(os.Stdout, reader, "⚠️  Are you sure you want to DROP all database tables?") {
				fmt.Println("🗑️  Clearing Database...")
				if err := DB.Reset(cmd.Context()); err != nil {
					utils.ShowError("Failed to reset database", err)
					return err
				}
			}
		}

		fmt.Println("✨ System Reset Complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetDatabase, "database", false, "Drop the PostgreSQL tables")
	resetCmd.Flags().BoolVar(&resetLog, "logs", false, "Delete the current attendance log")
	resetCmd.Flags().BoolVar(&resetArchive, "archive", false, "Delete the archive folder")
	resetCmd.Flags().String("log", "face_log.csv", "Attendance log file")
	resetCmd.Flags().String("archive-dir", "csv_logs", "Archive folder")
	rootCmd.AddCommand(resetCmd)
}

func confirm(out io.Writer, r *bufio.Reader, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removePath(path string) {
	if err := os.RemoveAll(path); err != nil {
		utils.Warn("Failed to remove %s: %v", path, err)
	}
}
