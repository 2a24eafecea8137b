package db

import (
	"fmt"
	"strings"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// buildPredicateSQL turns a typed delete predicate into a WHERE clause and
// positional args starting at $1. Values only ever travel as parameters.
func buildPredicateSQL(pred models.DeletePredicate) (string, []any, error) {
	switch {
	case pred.File != nil && pred.Dates != nil:
		return "", nil, apperr.Validation("delete predicate cannot combine file and date filters")
	case pred.File != nil:
		return buildFileMatchSQL(*pred.File)
	case pred.Dates != nil:
		return buildDateRangeSQL(*pred.Dates)
	default:
		return "", nil, apperr.Validation("delete predicate is empty")
	}
}

func buildFileMatchSQL(m models.FileMatch) (string, []any, error) {
	var clauses []string
	var args []any
	add := func(key, val string) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf("metadata->>'%s' = $%d", key, len(args)))
	}
	if m.Path != "" {
		add("file_path", m.Path)
	}
	if m.AbsPath != "" {
		add("file_path_abs", m.AbsPath)
	}
	if m.Name != "" {
		add("file_name", m.Name)
	}
	if len(clauses) == 0 {
		return "", nil, apperr.Validation("file match has no fields set")
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args, nil
}

func buildDateRangeSQL(r models.DateRange) (string, []any, error) {
	if r.Start.IsZero() && r.End.IsZero() {
		return "", nil, apperr.Validation("date range has no bounds set")
	}
	var clauses []string
	var args []any
	if !r.Start.IsZero() {
		args = append(args, r.Start)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !r.End.IsZero() {
		args = append(args, r.End)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	return "(" + strings.Join(clauses, " AND ") + ")", args, nil
}
