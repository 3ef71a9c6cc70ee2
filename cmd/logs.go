package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facelog/internal/attendance"
	"github.com/andresmejia3/facelog/internal/browser"
	"github.com/andresmejia3/facelog/internal/types"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/spf13/cobra"
)

var logsRecords string

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Browse archived logs, or print one log as a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		c := cfg
		applyFlags(cmd, &c)

		if logsRecords != "" {
			recs, err := attendance.ReadRecords(logsRecords)
			if err != nil {
				utils.ShowError("Failed to read log", err)
				return err
			}
			printRecords(os.Stdout, recs)
			return nil
		}

		if err := browser.Print(os.Stdout, c.ArchiveDir); err != nil {
			utils.ShowError("Failed to browse archive", err)
			return err
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().String("archive-dir", "csv_logs", "Archive folder to browse")
	logsCmd.Flags().StringVarP(&logsRecords, "records", "r", "", "Print the rows of this log file")
	rootCmd.AddCommand(logsCmd)
}

func printRecords(out io.Writer, recs []types.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No check-ins recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tCHECKED IN")
	fmt.Fprintln(w, "----\t----------")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\n", r.Name, r.Time.Format(attendance.TimestampLayout))
	}
	w.Flush()
}
