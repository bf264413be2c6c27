package repository

import (
	"context"
	"errors"

	"energidash/pkg/domain"
)

// Стандартные ошибки репозитория
var (
	ErrDatasetNotFound = errors.New("dataset not found")
)

// DatasetRepository хранит снапшоты набора данных панели.
// Активен всегда ровно один снапшот; Save атомарно заменяет его.
type DatasetRepository interface {
	Save(ctx context.Context, ds *domain.Dataset) error
	Active(ctx context.Context) (*domain.Dataset, error)
	ActiveID(ctx context.Context) (string, error)
}
