package cmd

import (
	"fmt"

	"github.com/andresmejia3/facelog/internal/utils"
	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:         "label <old_name> <new_name>",
	Short:       "Rename an identity stored in the database",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{dbAnnotation: dbRequired},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		oldName, newName := args[0], args[1]

		if err := DB.RenameIdentity(cmd.Context(), oldName, newName); err != nil {
			utils.ShowError("Failed to label identity", err)
			return err
		}

		fmt.Printf("✅ Identity '%s' labeled as '%s'\n", oldName, newName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)
}
