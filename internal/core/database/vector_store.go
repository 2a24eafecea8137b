package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// InsertVectors writes all records in one transaction and returns the
// assigned IDs. Records without an ID get a fresh UUID.
func (c *DatabaseClient) InsertVectors(ctx context.Context, col *models.Collection, records []models.VectorRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	table := VectorTableName(col.Name)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage(err, "begin insert into %q", col.Name)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4)`, table))
	if err != nil {
		return nil, apperr.Storage(err, "prepare insert into %s", table)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return nil, apperr.Storage(err, "marshal metadata for record %d", i)
		}
		if _, err := stmt.ExecContext(ctx, id, rec.Content, pgvector.NewVector(rec.Embedding), meta); err != nil {
			return nil, apperr.Storage(err, "insert record %d into %q", i, col.Name)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage(err, "commit insert into %q", col.Name)
	}
	return ids, nil
}

// DeleteWhere removes rows matching the typed predicate and returns how many
// went away.
func (c *DatabaseClient) DeleteWhere(ctx context.Context, col *models.Collection, pred models.DeletePredicate) (int, error) {
	where, args, err := buildPredicateSQL(pred)
	if err != nil {
		return 0, err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s`, VectorTableName(col.Name), where)
	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, apperr.Storage(err, "delete vectors from %q", col.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage(err, "count deleted rows in %q", col.Name)
	}
	return int(n), nil
}

// FindByFile returns the stored records for one ingested file, metadata and
// content included but embeddings left out.
func (c *DatabaseClient) FindByFile(ctx context.Context, col *models.Collection, match models.FileMatch) ([]models.VectorRecord, error) {
	where, args, err := buildFileMatchSQL(match)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
		SELECT id, content, metadata, created_at
		FROM %s
		WHERE %s
		ORDER BY created_at ASC`, VectorTableName(col.Name), where)
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Storage(err, "find vectors by file in %q", col.Name)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (c *DatabaseClient) ListVectors(ctx context.Context, col *models.Collection, offset, limit int) ([]models.VectorRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := fmt.Sprintf(`
		SELECT id, content, metadata, created_at
		FROM %s
		ORDER BY created_at ASC
		OFFSET $1 LIMIT $2`, VectorTableName(col.Name))
	rows, err := c.db.QueryContext(ctx, q, offset, limit)
	if err != nil {
		return nil, apperr.Storage(err, "list vectors in %q", col.Name)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// SearchSimilar runs a cosine nearest-neighbour query. Similarity is
// 1 - cosine distance, clamped at zero.
func (c *DatabaseClient) SearchSimilar(ctx context.Context, col *models.Collection, queryVec []float32, opts models.SearchOptions) ([]models.SearchResult, error) {
	if len(queryVec) != col.Dimension {
		return nil, apperr.Validation("query vector has dimension %d, collection %q expects %d",
			len(queryVec), col.Name, col.Dimension)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	args := []any{pgvector.NewVector(queryVec)}
	var filters []string
	for key, val := range opts.MetadataFilter {
		args = append(args, val)
		filters = append(filters, fmt.Sprintf("metadata->>%s = $%d", quoteLiteral(key), len(args)))
	}
	where := ""
	if len(filters) > 0 {
		where = "WHERE " + strings.Join(filters, " AND ")
	}
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT id, content, metadata, created_at, embedding <=> $1 AS distance
		FROM %s
		%s
		ORDER BY embedding <=> $1
		LIMIT $%d`, VectorTableName(col.Name), where, len(args))

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Storage(err, "search vectors in %q", col.Name)
	}
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var rec models.VectorRecord
		var metaRaw []byte
		var distance float64
		if err := rows.Scan(&rec.ID, &rec.Content, &metaRaw, &rec.CreatedAt, &distance); err != nil {
			return nil, apperr.Storage(err, "scan search row in %q", col.Name)
		}
		if err := json.Unmarshal(metaRaw, &rec.Metadata); err != nil {
			return nil, apperr.Storage(err, "decode metadata for vector %s", rec.ID)
		}
		sim := 1 - distance
		if sim < 0 {
			sim = 0
		}
		if sim < opts.MinSimilarity {
			continue
		}
		out = append(out, models.SearchResult{Record: rec, Similarity: sim})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]models.VectorRecord, error) {
	var out []models.VectorRecord
	for rows.Next() {
		var rec models.VectorRecord
		var metaRaw []byte
		var created time.Time
		if err := rows.Scan(&rec.ID, &rec.Content, &metaRaw, &created); err != nil {
			return nil, apperr.Storage(err, "scan vector row")
		}
		rec.CreatedAt = created
		if err := json.Unmarshal(metaRaw, &rec.Metadata); err != nil {
			return nil, apperr.Storage(err, "decode metadata for vector %s", rec.ID)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// quoteLiteral single-quotes a JSON key for use inside metadata->>'key'.
// Filter keys come from user input, so embedded quotes get doubled.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var _ core.VectorStore = (*DatabaseClient)(nil)
