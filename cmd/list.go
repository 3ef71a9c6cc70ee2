package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facelog/internal/store"
	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/spf13/cobra"
)

var historySession string

var listCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all known identities in the database",
	Annotations: map[string]string{dbAnnotation: dbRequired},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runList(cmd.Context(), os.Stdout)
	},
}

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "Show check-ins recorded in the database",
	Annotations: map[string]string{dbAnnotation: dbRequired},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runHistory(cmd.Context(), os.Stdout, historySession)
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historySession, "session", "s", "", "Only show this session ID")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
}

func runList(ctx context.Context, out io.Writer) error {
	identities, err := DB.ListIdentities(ctx)
	if err != nil {
		utils.ShowError("Failed to list identities", err)
		return err
	}
	printIdentities(out, identities)
	return nil
}

func printIdentities(out io.Writer, identities []store.Identity) {
	if len(identities) == 0 {
		fmt.Fprintln(out, "No identities found in database.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUPDATED")
	fmt.Fprintln(w, "--\t----\t-------")

	for _, id := range identities {
		fmt.Fprintf(w, "%d\t%s\t%s\n", id.ID, id.Name, id.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func runHistory(ctx context.Context, out io.Writer, sessionID string) error {
	rows, err := DB.ListAttendance(ctx, sessionID)
	if err != nil {
		utils.ShowError("Failed to list attendance", err)
		return err
	}
	printHistory(out, rows)
	return nil
}

func printHistory(out io.Writer, rows []store.AttendanceRow) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No check-ins found in database.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SESSION\tNAME\tCHECKED IN")
	fmt.Fprintln(w, "-------\t----\t----------")

	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(r.SessionID), r.Name, r.SeenAt.Local().Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
