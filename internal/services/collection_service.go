package services

import (
	"context"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/validate"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// CollectionInfo is a collection plus its live vector count.
type CollectionInfo struct {
	Collection  models.Collection `json:"collection"`
	VectorCount int               `json:"vector_count"`
}

type CollectionService struct {
	store core.CollectionStore
}

func NewCollectionService(store core.CollectionStore) *CollectionService {
	return &CollectionService{store: store}
}

func (s *CollectionService) Create(ctx context.Context, name, description string, dimension int) (*models.Collection, error) {
	if err := validate.CollectionName(name); err != nil {
		return nil, err
	}
	if err := validate.Dimension(dimension); err != nil {
		return nil, err
	}
	return s.store.CreateCollection(ctx, name, description, dimension)
}

func (s *CollectionService) List(ctx context.Context) ([]CollectionInfo, error) {
	cols, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionInfo, 0, len(cols))
	for i := range cols {
		n, err := s.store.CountVectors(ctx, &cols[i])
		if err != nil {
			return nil, err
		}
		out = append(out, CollectionInfo{Collection: cols[i], VectorCount: n})
	}
	return out, nil
}

func (s *CollectionService) Show(ctx context.Context, name string) (*CollectionInfo, error) {
	col, err := s.store.ResolveCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	n, err := s.store.CountVectors(ctx, col)
	if err != nil {
		return nil, err
	}
	return &CollectionInfo{Collection: *col, VectorCount: n}, nil
}

func (s *CollectionService) Rename(ctx context.Context, oldName, newName string) (*models.Collection, error) {
	if err := validate.CollectionName(newName); err != nil {
		return nil, err
	}
	return s.store.RenameCollection(ctx, oldName, newName)
}

func (s *CollectionService) Delete(ctx context.Context, name string) error {
	return s.store.SoftDeleteCollection(ctx, name)
}
