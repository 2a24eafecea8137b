package services

import (
	"context"
	"log"
	"time"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// CleanupService purges collections whose soft-delete grace period has
// expired.
type CleanupService struct {
	store         core.CollectionStore
	retentionDays int
}

func NewCleanupService(store core.CollectionStore, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &CleanupService{store: store, retentionDays: retentionDays}
}

// Run removes all soft-deleted collections older than the retention window
// and returns the purged rows.
func (s *CleanupService) Run(ctx context.Context) ([]models.Collection, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	purged, err := s.store.PurgeExpired(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(purged) > 0 {
		log.Printf("cleanup: purged %d expired collections (retention %dd)", len(purged), s.retentionDays)
	}
	return purged, nil
}

// RetentionDays exposes the configured grace period.
func (s *CleanupService) RetentionDays() int { return s.retentionDays }
