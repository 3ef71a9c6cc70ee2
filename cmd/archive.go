package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/andresmejia3/facelog/internal/attendance"
	"github.com/andresmejia3/facelog/internal/browser"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/spf13/cobra"
)

var archiveBrowse bool

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move the current log into the archive folder",
	Long: `Moves the log to <archive-dir>/<start>_<end>.csv. The start stamp is the
time of the first row in the log (or now if it is empty). A missing log is
archived as an empty file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c := cfg
		applyFlags(cmd, &c)

		now := time.Now()
		start := logStart(c.LogPath, now)
		dest, err := attendance.Archive(c.LogPath, c.ArchiveDir, start, now)
		if err != nil {
			utils.ShowError("Failed to archive log", err)
			return err
		}
		fmt.Fprintf(os.Stderr, "📦 Log archived to %s\n", dest)

		if archiveBrowse {
			return browser.Print(os.Stdout, c.ArchiveDir)
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().String("log", "face_log.csv", "Attendance log file")
	archiveCmd.Flags().String("archive-dir", "csv_logs", "Folder the log is archived into")
	archiveCmd.Flags().BoolVarP(&archiveBrowse, "browse", "b", false, "Print the archive folder afterwards")
	rootCmd.AddCommand(archiveCmd)
}

// logStart returns the earliest timestamp in the log, or fallback when the
// log is missing, empty or unreadable.
func logStart(path string, fallback time.Time) time.Time {
	recs, err := attendance.ReadRecords(path)
	if err != nil || len(recs) == 0 {
		return fallback
	}
	start := recs[0].Time
	for _, r := range recs[1:] {
		if r.Time.Before(start) {
			start = r.Time
		}
	}
	return start
}
