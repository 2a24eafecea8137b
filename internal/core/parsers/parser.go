// Package parsers converts document files into streams of parsed documents
// the chunker can consume. Each parser attaches the file-identity metadata
// (file_path, file_path_abs, file_name, file_mtime) that duplicate detection
// and delete-by-file rely on.
package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// Registry routes a file to the first parser that supports its extension.
// Unknown extensions fall back to the plain-text parser.
type Registry struct {
	parsers  []core.Parser
	fallback core.Parser
}

// NewRegistry wires the default parser set.
func NewRegistry() *Registry {
	text := NewTextParser()
	return &Registry{
		parsers:  []core.Parser{text, NewCSVParser(), NewDocconvParser()},
		fallback: text,
	}
}

// Parse picks a parser by extension and runs it.
func (r *Registry) Parse(ctx context.Context, path string) ([]models.ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range r.parsers {
		if p.Supports(ext) {
			return p.Parse(ctx, path)
		}
	}
	return r.fallback.Parse(ctx, path)
}

// Supports reports whether any registered parser handles ext. The registry
// itself always parses (via the text fallback), so this is informational.
func (r *Registry) Supports(ext string) bool {
	for _, p := range r.parsers {
		if p.Supports(ext) {
			return true
		}
	}
	return false
}

var _ core.Parser = (*Registry)(nil)

// fileMetadata builds the base metadata every parsed document carries.
func fileMetadata(path, parserType string) (map[string]any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return map[string]any{
		"file_name":      filepath.Base(path),
		"file_path":      path,
		"file_path_abs":  abs,
		"file_extension": strings.ToLower(filepath.Ext(path)),
		"file_size":      info.Size(),
		"file_mtime":     info.ModTime().Unix(),
		"source":         parserType,
		"parser_type":    parserType,
	}, nil
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}
