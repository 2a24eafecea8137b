package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	middleware "github.com/lihongwen/pgvector-kit/internal/api/middlewares"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token signed with API_AUTH_SECRET",
	RunE: func(cmd *cobra.Command, _ []string) error {
		secret := os.Getenv("API_AUTH_SECRET")
		if secret == "" {
			return fmt.Errorf("API_AUTH_SECRET not set")
		}
		token, err := middleware.MintToken(secret, tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "pgvectorctl", "token subject claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
