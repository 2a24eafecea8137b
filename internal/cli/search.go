package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

var (
	searchLimit         int
	searchMinSimilarity float64
	searchJSON          bool
	searchFilter        []string
)

var searchCmd = &cobra.Command{
	Use:   "search [collection] [query]",
	Short: "Similarity-search a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinSimilarity, "min-similarity", 0, "minimum similarity score [0,1]")
	searchCmd.Flags().StringArrayVarP(&searchFilter, "filter", "f", nil, "metadata filter key=value (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}

	filter := map[string]string{}
	for _, pair := range searchFilter {
		key, val, err := splitFilter(pair)
		if err != nil {
			return err
		}
		filter[key] = val
	}

	results, err := a.Vectors.Search(cmd.Context(), args[0], args[1], models.SearchOptions{
		Limit:          searchLimit,
		MinSimilarity:  searchMinSimilarity,
		MetadataFilter: filter,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	cmd.Println("Results:")
	cmd.Println()
	for i, res := range results {
		preview := res.Record.Content
		if r := []rune(preview); len(r) > 160 {
			preview = string(r[:160]) + "..."
		}
		cmd.Printf("  [%d] %.4f  %s\n", i+1, res.Similarity, preview)
		if name, ok := res.Record.Metadata["file_name"].(string); ok && name != "" {
			cmd.Printf("      Source: %s\n", name)
		}
		cmd.Println()
	}
	return nil
}

func splitFilter(pair string) (string, string, error) {
	key, val, found := strings.Cut(pair, "=")
	if !found || key == "" {
		return "", "", fmt.Errorf("invalid filter %q (use key=value)", pair)
	}
	return key, val, nil
}
