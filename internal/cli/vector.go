package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lihongwen/pgvector-kit/internal/core/validate"
	"github.com/lihongwen/pgvector-kit/internal/models"
	"github.com/lihongwen/pgvector-kit/internal/services"
)

var (
	addTextMeta []string

	addDocAction string
	addDocMeta   []string
	addDocQuiet  bool

	deleteFilePath  string
	deleteFileName  string
	deleteStartDate string
	deleteEndDate   string
)

var addTextCmd = &cobra.Command{
	Use:   "add-text [collection] [text]",
	Short: "Embed a raw text snippet into a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		meta, err := parseMetadataFlags(addTextMeta)
		if err != nil {
			return err
		}
		res, err := a.Vectors.AddText(cmd.Context(), args[0], args[1], meta)
		if err != nil {
			return err
		}
		cmd.Printf("Stored %d vectors in %q (%d chunks)\n",
			res.FileStatus.VectorsCreated, res.Collection, res.ChunksTotal)
		return nil
	},
}

var addDocumentCmd = &cobra.Command{
	Use:   "add-document [collection] [path-or-s3-uri]",
	Short: "Parse, chunk and embed a document file",
	Long: `Ingests a local file or an s3://bucket/key object. Re-ingesting a file
that already has vectors follows the duplicate action:

  smart      skip when the file is unchanged, overwrite otherwise (default)
  skip       keep the existing vectors untouched
  overwrite  replace the existing vectors
  append     add new vectors alongside the old ones`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}
		meta, err := parseMetadataFlags(addDocMeta)
		if err != nil {
			return err
		}

		var progress func(int, string)
		if !addDocQuiet {
			progress = func(percent int, message string) {
				cmd.Printf("[%3d%%] %s\n", percent, message)
			}
		}

		res, err := a.Ingest.Ingest(cmd.Context(), services.IngestRequest{
			Collection:    args[0],
			Source:        args[1],
			Action:        models.DuplicateAction(addDocAction),
			ExtraMetadata: meta,
			Progress:      progress,
		})
		if err != nil {
			return err
		}

		cmd.Printf("%s: %s\n", res.Action, res.FilePath)
		if res.FileStatus.Existed {
			cmd.Printf("  previous vectors: %d, deleted: %d\n",
				res.FileStatus.PreviousVectors, res.FileStatus.VectorsDeleted)
		}
		cmd.Printf("  chunks: %d, vectors created: %d\n", res.ChunksTotal, res.FileStatus.VectorsCreated)
		if res.Message != "" {
			cmd.Printf("  %s\n", res.Message)
		}
		return nil
	},
}

var deleteVectorsCmd = &cobra.Command{
	Use:   "delete-vectors [collection]",
	Short: "Delete vectors by file reference or creation date range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp(cmd)
		if err != nil {
			return err
		}

		var deleted int
		switch {
		case deleteFilePath != "" || deleteFileName != "":
			deleted, err = a.Vectors.DeleteByFile(cmd.Context(), args[0], models.FileMatch{
				Path: deleteFilePath,
				Name: deleteFileName,
			})
		case deleteStartDate != "" || deleteEndDate != "":
			var start, end time.Time
			if deleteStartDate != "" {
				if start, err = parseCLIDate(deleteStartDate); err != nil {
					return err
				}
			}
			if deleteEndDate != "" {
				if end, err = parseCLIDate(deleteEndDate); err != nil {
					return err
				}
			}
			deleted, err = a.Vectors.DeleteByDateRange(cmd.Context(), args[0], start, end)
		default:
			return fmt.Errorf("provide --file/--name or --start/--end")
		}
		if err != nil {
			return err
		}
		cmd.Printf("Deleted %d vectors from %q\n", deleted, args[0])
		return nil
	},
}

func init() {
	addTextCmd.Flags().StringArrayVarP(&addTextMeta, "meta", "m", nil, "metadata key=value (repeatable)")

	addDocumentCmd.Flags().StringVarP(&addDocAction, "action", "a", "smart", "duplicate action: smart, skip, overwrite or append")
	addDocumentCmd.Flags().StringArrayVarP(&addDocMeta, "meta", "m", nil, "metadata key=value (repeatable)")
	addDocumentCmd.Flags().BoolVarP(&addDocQuiet, "quiet", "q", false, "suppress progress output")

	deleteVectorsCmd.Flags().StringVar(&deleteFilePath, "file", "", "delete vectors of this file path")
	deleteVectorsCmd.Flags().StringVar(&deleteFileName, "name", "", "delete vectors of this file name")
	deleteVectorsCmd.Flags().StringVar(&deleteStartDate, "start", "", "delete vectors created on or after this date (YYYY-MM-DD)")
	deleteVectorsCmd.Flags().StringVar(&deleteEndDate, "end", "", "delete vectors created before this date (YYYY-MM-DD)")

	rootCmd.AddCommand(addTextCmd)
	rootCmd.AddCommand(addDocumentCmd)
	rootCmd.AddCommand(deleteVectorsCmd)
}

func parseMetadataFlags(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, val, err := validate.MetadataPair(pair)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func parseCLIDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC 3339)", s)
	}
	return t, nil
}
