package cli

import (
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge soft-deleted collections past the retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		purged, err := a.Cleanup.Run(cmd.Context())
		if err != nil {
			return err
		}
		if len(purged) == 0 {
			cmd.Println("Nothing to purge.")
			return nil
		}
		for _, col := range purged {
			cmd.Printf("  purged %q (deleted %s)\n", col.Name, col.DeletedAt.Format("2006-01-02"))
		}
		cmd.Printf("Purged %d collections.\n", len(purged))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
