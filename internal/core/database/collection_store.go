package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

const collectionColumns = `id, name, description, dimension, is_active, deleted_at, created_at, updated_at`

// VectorTableName maps a collection name to its physical table. Names are
// validated upstream (letters, digits, underscore, hyphen, space only), so
// the result is safe to splice into DDL.
func VectorTableName(collectionName string) string {
	s := strings.ToLower(collectionName)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return "vectors_" + s
}

func (c *DatabaseClient) CreateCollection(ctx context.Context, name, description string, dimension int) (*models.Collection, error) {
	existing, err := c.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("collection %q already exists", name)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage(err, "begin create collection")
	}
	defer tx.Rollback() //nolint:errcheck

	var col models.Collection
	err = tx.QueryRowContext(ctx, `
		INSERT INTO collections (name, description, dimension)
		VALUES ($1, $2, $3)
		RETURNING `+collectionColumns,
		name, description, dimension,
	).Scan(&col.ID, &col.Name, &col.Description, &col.Dimension, &col.IsActive, &col.DeletedAt, &col.CreatedAt, &col.UpdatedAt)
	if err != nil {
		return nil, apperr.Storage(err, "insert collection %q", name)
	}

	table := VectorTableName(name)
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         UUID PRIMARY KEY,
			content    TEXT NOT NULL,
			embedding  vector(%d),
			metadata   JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table, dimension)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return nil, apperr.Storage(err, "create vector table %s", table)
	}

	idx := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`, table, table)
	if _, err := tx.ExecContext(ctx, idx); err != nil {
		return nil, apperr.Storage(err, "create vector index on %s", table)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage(err, "commit create collection")
	}
	return &col, nil
}

func (c *DatabaseClient) ResolveCollection(ctx context.Context, name string) (*models.Collection, error) {
	col, err := c.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, apperr.NotFound("collection %q not found", name)
	}
	return col, nil
}

func (c *DatabaseClient) getByName(ctx context.Context, name string) (*models.Collection, error) {
	var col models.Collection
	err := c.db.QueryRowContext(ctx, `
		SELECT `+collectionColumns+`
		FROM collections
		WHERE name = $1 AND is_active`,
		name,
	).Scan(&col.ID, &col.Name, &col.Description, &col.Dimension, &col.IsActive, &col.DeletedAt, &col.CreatedAt, &col.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "lookup collection %q", name)
	}
	return &col, nil
}

func (c *DatabaseClient) ListCollections(ctx context.Context) ([]models.Collection, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+collectionColumns+`
		FROM collections
		WHERE is_active
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, apperr.Storage(err, "list collections")
	}
	defer rows.Close()

	var out []models.Collection
	for rows.Next() {
		var col models.Collection
		if err := rows.Scan(&col.ID, &col.Name, &col.Description, &col.Dimension, &col.IsActive, &col.DeletedAt, &col.CreatedAt, &col.UpdatedAt); err != nil {
			return nil, apperr.Storage(err, "scan collection row")
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) RenameCollection(ctx context.Context, oldName, newName string) (*models.Collection, error) {
	col, err := c.ResolveCollection(ctx, oldName)
	if err != nil {
		return nil, err
	}
	if clash, err := c.getByName(ctx, newName); err != nil {
		return nil, err
	} else if clash != nil && clash.ID != col.ID {
		return nil, apperr.Validation("collection %q already exists", newName)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Storage(err, "begin rename collection")
	}
	defer tx.Rollback() //nolint:errcheck

	err = tx.QueryRowContext(ctx, `
		UPDATE collections
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+collectionColumns,
		col.ID, newName,
	).Scan(&col.ID, &col.Name, &col.Description, &col.Dimension, &col.IsActive, &col.DeletedAt, &col.CreatedAt, &col.UpdatedAt)
	if err != nil {
		return nil, apperr.Storage(err, "rename collection %q", oldName)
	}

	alter := fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, VectorTableName(oldName), VectorTableName(newName))
	if _, err := tx.ExecContext(ctx, alter); err != nil {
		return nil, apperr.Storage(err, "rename vector table for %q", oldName)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Storage(err, "commit rename collection")
	}
	return col, nil
}

// SoftDeleteCollection drops the vector table immediately but keeps the
// metadata row (inactive) until the retention cleanup purges it.
func (c *DatabaseClient) SoftDeleteCollection(ctx context.Context, name string) error {
	col, err := c.ResolveCollection(ctx, name)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(err, "begin delete collection")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		UPDATE collections
		SET is_active = FALSE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1`, col.ID); err != nil {
		return apperr.Storage(err, "soft delete collection %q", name)
	}

	drop := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, VectorTableName(name))
	if _, err := tx.ExecContext(ctx, drop); err != nil {
		return apperr.Storage(err, "drop vector table for %q", name)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storage(err, "commit delete collection")
	}
	return nil
}

// PurgeExpired hard-deletes metadata rows of collections soft-deleted before
// cutoff. Their vector tables were already dropped at soft-delete time.
func (c *DatabaseClient) PurgeExpired(ctx context.Context, cutoff time.Time) ([]models.Collection, error) {
	rows, err := c.db.QueryContext(ctx, `
		DELETE FROM collections
		WHERE NOT is_active AND deleted_at IS NOT NULL AND deleted_at < $1
		RETURNING `+collectionColumns,
		cutoff)
	if err != nil {
		return nil, apperr.Storage(err, "purge expired collections")
	}
	defer rows.Close()

	var out []models.Collection
	for rows.Next() {
		var col models.Collection
		if err := rows.Scan(&col.ID, &col.Name, &col.Description, &col.Dimension, &col.IsActive, &col.DeletedAt, &col.CreatedAt, &col.UpdatedAt); err != nil {
			return nil, apperr.Storage(err, "scan purged collection")
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CountVectors(ctx context.Context, col *models.Collection) (int, error) {
	var n int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, VectorTableName(col.Name))
	if err := c.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, apperr.Storage(err, "count vectors in %q", col.Name)
	}
	return n, nil
}

var _ core.CollectionStore = (*DatabaseClient)(nil)
