package repository

import (
	"context"
	"fmt"

	"energidash/pkg/config"
	"energidash/pkg/database"
)

// RepositoryType тип репозитория
type RepositoryType string

const (
	RepositoryTypeMemory   RepositoryType = "memory"
	RepositoryTypePostgres RepositoryType = "postgres"
)

// Repositories контейнер репозиториев
type Repositories struct {
	Datasets DatasetRepository
	db       *database.PostgresDB // Для закрытия при shutdown
}

// DB возвращает соединение с базой, nil для in-memory режима
func (r *Repositories) DB() *database.PostgresDB {
	return r.db
}

// Close закрывает соединения
func (r *Repositories) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// NewRepositories создаёт репозитории на основе конфигурации
func NewRepositories(ctx context.Context, cfg *config.DatabaseConfig) (*Repositories, error) {
	repoType := RepositoryType(cfg.Driver)

	switch repoType {
	case RepositoryTypeMemory, "":
		return &Repositories{Datasets: NewMemoryDatasetRepository()}, nil

	case RepositoryTypePostgres, "postgresql":
		db, err := database.NewPostgresDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return &Repositories{
			Datasets: NewPostgresDatasetRepository(db),
			db:       db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported repository type: %s", cfg.Driver)
	}
}
