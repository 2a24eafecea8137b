// Package validate holds the input checks shared by the CLI, REST and MCP
// front-ends.
package validate

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
)

var collectionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)

// Common embedding sizes; other dimensions are accepted but unusual.
var commonDimensions = map[int]bool{
	128: true, 256: true, 384: true, 512: true, 768: true,
	1024: true, 1536: true, 2048: true, 3072: true, 4096: true,
}

// CollectionName checks that a name is safe to fold into a table name.
// Spaces and hyphens are later converted to underscores by the store.
func CollectionName(name string) error {
	if name == "" {
		return apperr.Validation("collection name cannot be empty")
	}
	if len(name) < 2 {
		return apperr.Validation("collection name must be at least 2 characters long")
	}
	if len(name) > 50 {
		return apperr.Validation("collection name must be 50 characters or less")
	}
	if !collectionNameRe.MatchString(name) {
		return apperr.Validation("collection name can only contain letters, numbers, underscores, hyphens, and spaces")
	}
	if strings.HasPrefix(name, " ") || strings.HasSuffix(name, " ") {
		return apperr.Validation("collection name cannot start or end with spaces")
	}
	return nil
}

// Dimension checks a vector dimension against the pgvector practical bounds.
func Dimension(dim int) error {
	if dim < 1 {
		return apperr.Validation("dimension must be a positive integer")
	}
	if dim > 4096 {
		return apperr.Validation("dimension cannot exceed 4096")
	}
	return nil
}

// CommonDimension reports whether dim is one of the usual embedding sizes.
func CommonDimension(dim int) bool { return commonDimensions[dim] }

// SearchQuery checks a similarity-search query string.
func SearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return apperr.Validation("search query cannot be empty")
	}
	if len(query) > 1000 {
		return apperr.Validation("search query cannot exceed 1000 characters")
	}
	return nil
}

// Limit checks a result-count limit against an upper bound.
func Limit(limit, max int) error {
	if limit < 1 {
		return apperr.Validation("limit must be a positive integer")
	}
	if limit > max {
		return apperr.Validation("limit cannot exceed %d", max)
	}
	return nil
}

// MetadataPair parses a "key=value" string. Values that look like JSON,
// booleans or numbers are converted; everything else stays a string.
func MetadataPair(s string) (string, any, error) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return "", nil, apperr.Validation("invalid metadata format: %s (use key=value)", s)
	}
	key := strings.TrimSpace(s[:idx])
	raw := strings.TrimSpace(s[idx+1:])
	if key == "" {
		return "", nil, apperr.Validation("metadata key cannot be empty")
	}

	switch {
	case strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "["):
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return key, v, nil
		}
	case raw == "true" || raw == "false":
		return key, raw == "true", nil
	case raw == "null":
		return key, nil, nil
	default:
		if n, err := strconv.Atoi(raw); err == nil {
			return key, n, nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return key, f, nil
		}
	}
	return key, raw, nil
}
