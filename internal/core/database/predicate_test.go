package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

func TestVectorTableName(t *testing.T) {
	assert.Equal(t, "vectors_docs", VectorTableName("docs"))
	assert.Equal(t, "vectors_my_notes", VectorTableName("My Notes"))
	assert.Equal(t, "vectors_a_b_c", VectorTableName("a-b c"))
}

func TestBuildPredicateSQL_FileMatch(t *testing.T) {
	where, args, err := buildPredicateSQL(models.DeletePredicate{
		File: &models.FileMatch{Path: "docs/a.md", AbsPath: "/srv/docs/a.md", Name: "a.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, "(metadata->>'file_path' = $1 OR metadata->>'file_path_abs' = $2 OR metadata->>'file_name' = $3)", where)
	assert.Equal(t, []any{"docs/a.md", "/srv/docs/a.md", "a.md"}, args)
}

func TestBuildPredicateSQL_FileMatchPartial(t *testing.T) {
	where, args, err := buildPredicateSQL(models.DeletePredicate{
		File: &models.FileMatch{Name: "a.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, "(metadata->>'file_name' = $1)", where)
	assert.Equal(t, []any{"a.md"}, args)
}

func TestBuildPredicateSQL_DateRange(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	where, args, err := buildPredicateSQL(models.DeletePredicate{
		Dates: &models.DateRange{Start: start, End: end},
	})
	require.NoError(t, err)
	assert.Equal(t, "(created_at >= $1 AND created_at < $2)", where)
	assert.Equal(t, []any{start, end}, args)
}

func TestBuildPredicateSQL_DateRangeOpenEnded(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args, err := buildPredicateSQL(models.DeletePredicate{
		Dates: &models.DateRange{Start: start},
	})
	require.NoError(t, err)
	assert.Equal(t, "(created_at >= $1)", where)
	assert.Equal(t, []any{start}, args)
}

func TestBuildPredicateSQL_Invalid(t *testing.T) {
	_, _, err := buildPredicateSQL(models.DeletePredicate{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, _, err = buildPredicateSQL(models.DeletePredicate{
		File:  &models.FileMatch{Name: "a"},
		Dates: &models.DateRange{Start: time.Now()},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, _, err = buildPredicateSQL(models.DeletePredicate{File: &models.FileMatch{}})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
