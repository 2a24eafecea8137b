package parsers

import (
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

var docconvExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".odt": true,
	".rtf": true, ".html": true, ".htm": true, ".pptx": true,
	".pages": true, ".xml": true,
}

// DocconvParser extracts text from binary document formats (PDF, DOCX, ...)
// through sajari/docconv. One file yields one parsed document; the chunker
// handles all further splitting.
type DocconvParser struct{}

func NewDocconvParser() *DocconvParser { return &DocconvParser{} }

func (p *DocconvParser) Supports(ext string) bool { return docconvExtensions[ext] }

func (p *DocconvParser) Parse(ctx context.Context, path string) ([]models.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("docconv %s: %w", path, err)
	}
	text := strings.TrimSpace(res.Body)
	if text == "" {
		return nil, nil
	}

	base, err := fileMetadata(path, "docconv")
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(res.Meta["Title"]); title != "" {
		base["title"] = title
	}
	if author := strings.TrimSpace(res.Meta["Author"]); author != "" {
		base["author"] = author
	}

	return []models.ParsedDocument{{Content: text, Metadata: base}}, nil
}
