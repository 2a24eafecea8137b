package parsers

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

var (
	textExtensions = map[string]bool{
		".txt": true, ".md": true, ".markdown": true, ".rst": true,
	}
	markdownExtensions = map[string]bool{".md": true, ".markdown": true}

	headingRe   = regexp.MustCompile(`(?m)^(#{1,6})\s*(.*)$`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
	sectionRe   = regexp.MustCompile(`\n(#{1,6}\s)`)
)

// TextParser handles plain text, markdown and reStructuredText files.
// Markdown is split into heading sections; everything else into paragraphs.
type TextParser struct{}

func NewTextParser() *TextParser { return &TextParser{} }

func (p *TextParser) Supports(ext string) bool { return textExtensions[ext] }

func (p *TextParser) Parse(ctx context.Context, path string) ([]models.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	base, err := fileMetadata(path, "text")
	if err != nil {
		return nil, err
	}
	base["file_type"] = detectFileType(path, text)

	ext := strings.ToLower(pathExt(path))
	if markdownExtensions[ext] {
		return parseMarkdown(text, base), nil
	}
	return parsePlainText(text, base), nil
}

func pathExt(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

func detectFileType(path, text string) string {
	switch ext := strings.ToLower(pathExt(path)); {
	case markdownExtensions[ext]:
		return "markdown"
	case ext == ".rst":
		return "restructuredtext"
	case headingRe.MatchString(text):
		return "markdown_like"
	default:
		return "plain_text"
	}
}

// parseMarkdown splits on headings; a file without headings falls back to
// paragraph splitting so no single document grows unbounded.
func parseMarkdown(text string, base map[string]any) []models.ParsedDocument {
	sections := splitSections(text)
	if len(sections) <= 1 {
		docs := paragraphDocuments(text, base, "markdown_paragraph")
		if len(docs) > 0 {
			return docs
		}
		meta := copyMeta(base)
		meta["chunk_type"] = "markdown_paragraph"
		return []models.ParsedDocument{{Content: strings.TrimSpace(text), Metadata: meta}}
	}

	var docs []models.ParsedDocument
	for idx, section := range sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		title, level := sectionHeading(section)

		meta := copyMeta(base)
		meta["chunk_type"] = "markdown_section"
		meta["section_number"] = idx + 1
		meta["section_title"] = title
		meta["header_level"] = level
		docs = append(docs, models.ParsedDocument{Content: section, Metadata: meta})
	}
	return docs
}

// splitSections cuts before every line starting a markdown heading.
func splitSections(text string) []string {
	idxs := sectionRe.FindAllStringIndex(text, -1)
	if len(idxs) == 0 {
		return []string{text}
	}
	var out []string
	prev := 0
	for _, loc := range idxs {
		out = append(out, text[prev:loc[0]])
		prev = loc[0] + 1 // keep the heading line, drop only the newline
	}
	out = append(out, text[prev:])
	return out
}

func sectionHeading(section string) (title string, level int) {
	line := section
	if i := strings.Index(section, "\n"); i >= 0 {
		line = section[:i]
	}
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return "", 0
	}
	return strings.TrimSpace(m[2]), len(m[1])
}

func parsePlainText(text string, base map[string]any) []models.ParsedDocument {
	return paragraphDocuments(text, base, "text_paragraph")
}

func paragraphDocuments(text string, base map[string]any, chunkType string) []models.ParsedDocument {
	paragraphs := splitParagraphs(text)

	var docs []models.ParsedDocument
	for idx, paragraph := range paragraphs {
		meta := copyMeta(base)
		meta["chunk_type"] = chunkType
		meta["paragraph_number"] = idx + 1
		meta["total_paragraphs"] = len(paragraphs)
		docs = append(docs, models.ParsedDocument{Content: paragraph, Metadata: meta})
	}
	return docs
}

// splitParagraphs splits on blank lines; dense files with few paragraph
// breaks are split per line instead so no block grows huge.
func splitParagraphs(text string) []string {
	parts := paragraphRe.Split(text, -1)
	paragraphs := trimNonEmpty(parts)

	if len(paragraphs) <= 2 && len(text) > 1000 {
		paragraphs = trimNonEmpty(strings.Split(text, "\n"))
	}
	return paragraphs
}

func trimNonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
