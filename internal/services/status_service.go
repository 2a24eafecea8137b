package services

import (
	"context"

	db "github.com/lihongwen/pgvector-kit/internal/core/database"
	"github.com/lihongwen/pgvector-kit/internal/core/embedding"
)

// StatusReport is the health summary returned by every front-end's status
// operation.
type StatusReport struct {
	DatabaseOK       bool   `json:"database_ok"`
	DatabaseError    string `json:"database_error,omitempty"`
	PgvectorVersion  string `json:"pgvector_version,omitempty"`
	Collections      int    `json:"collections"`
	EmbeddingBackend string `json:"embedding_backend"`
	RetentionDays    int    `json:"retention_days"`
}

type StatusService struct {
	client        *db.DatabaseClient
	embedder      *embedding.Service
	retentionDays int
}

func NewStatusService(client *db.DatabaseClient, embedder *embedding.Service, retentionDays int) *StatusService {
	return &StatusService{client: client, embedder: embedder, retentionDays: retentionDays}
}

// Report never fails: connectivity problems land in the report itself so a
// status call stays useful when the database is down.
func (s *StatusService) Report(ctx context.Context) *StatusReport {
	rep := &StatusReport{
		EmbeddingBackend: s.embedder.Backend().Name(),
		RetentionDays:    s.retentionDays,
	}

	if err := s.client.Ping(ctx); err != nil {
		rep.DatabaseError = err.Error()
		return rep
	}
	rep.DatabaseOK = true

	if v, err := s.client.PgvectorVersion(ctx); err == nil {
		rep.PgvectorVersion = v
	}
	if cols, err := s.client.ListCollections(ctx); err == nil {
		rep.Collections = len(cols)
	}
	return rep
}
