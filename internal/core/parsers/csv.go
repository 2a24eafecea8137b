package parsers

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

// csvRowsPerDocument keeps each parsed document small enough that the
// chunker rarely has to split it again.
const csvRowsPerDocument = 20

// CSVParser turns a CSV file into row-group documents, each prefixed with
// the header so every group is self-describing.
type CSVParser struct{}

func NewCSVParser() *CSVParser { return &CSVParser{} }

func (p *CSVParser) Supports(ext string) bool { return ext == ".csv" }

func (p *CSVParser) Parse(ctx context.Context, path string) ([]models.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	base, err := fileMetadata(path, "csv")
	if err != nil {
		return nil, err
	}

	header := rows[0]
	data := rows[1:]
	base["total_rows"] = len(data)
	base["columns"] = strings.Join(header, ", ")

	var docs []models.ParsedDocument
	for start := 0; start < len(data); start += csvRowsPerDocument {
		end := start + csvRowsPerDocument
		if end > len(data) {
			end = len(data)
		}

		var b strings.Builder
		for _, row := range data[start:end] {
			b.WriteString(formatRow(header, row))
			b.WriteString("\n")
		}
		content := strings.TrimSpace(b.String())
		if content == "" {
			continue
		}

		meta := copyMeta(base)
		meta["chunk_type"] = "csv_rows"
		meta["row_start"] = start + 1
		meta["row_end"] = end
		docs = append(docs, models.ParsedDocument{Content: content, Metadata: meta})
	}

	// Header-only file: expose the schema itself.
	if len(docs) == 0 {
		meta := copyMeta(base)
		meta["chunk_type"] = "csv_header"
		docs = append(docs, models.ParsedDocument{
			Content:  strings.Join(header, ", "),
			Metadata: meta,
		})
	}
	return docs, nil
}

// formatRow renders one row as "col: value" pairs so the text remains
// meaningful after embedding.
func formatRow(header, row []string) string {
	var parts []string
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.TrimSpace(header[i]), cell))
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, "; ")
}
