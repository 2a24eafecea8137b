package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and embedding backend health",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}
	rep := a.Status.Report(cmd.Context())

	if statusJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if rep.DatabaseOK {
		cmd.Println("Database:          connected")
	} else {
		cmd.Printf("Database:          unreachable (%s)\n", rep.DatabaseError)
	}
	if rep.PgvectorVersion != "" {
		cmd.Printf("pgvector:          %s\n", rep.PgvectorVersion)
	} else {
		cmd.Println("pgvector:          not installed")
	}
	cmd.Printf("Collections:       %d\n", rep.Collections)
	cmd.Printf("Embedding backend: %s\n", rep.EmbeddingBackend)
	cmd.Printf("Retention:         %d days\n", rep.RetentionDays)
	if !rep.DatabaseOK {
		return fmt.Errorf("database unreachable")
	}
	return nil
}
