package repository

import (
	"context"
	"sync"

	"energidash/pkg/domain"
)

// MemoryDatasetRepository in-memory реализация DatasetRepository.
// Снапшот после Save считается неизменяемым, поэтому Active
// возвращает его без копирования.
type MemoryDatasetRepository struct {
	mu sync.RWMutex
	ds *domain.Dataset
}

// NewMemoryDatasetRepository создаёт новый in-memory репозиторий
func NewMemoryDatasetRepository() *MemoryDatasetRepository {
	return &MemoryDatasetRepository{}
}

func (r *MemoryDatasetRepository) Save(ctx context.Context, ds *domain.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ds = ds
	return nil
}

func (r *MemoryDatasetRepository) Active(ctx context.Context) (*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ds == nil {
		return nil, ErrDatasetNotFound
	}
	return r.ds, nil
}

func (r *MemoryDatasetRepository) ActiveID(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ds == nil {
		return "", ErrDatasetNotFound
	}
	return r.ds.ID, nil
}
