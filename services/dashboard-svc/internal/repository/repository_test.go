package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energidash/pkg/domain"
)

func sampleDataset(id string) *domain.Dataset {
	building := domain.Building{
		ProjectName:     "Moholt alle",
		City:            "TRONDHEIM",
		ProjectType:     "studentboliger",
		Lat:             63.41,
		Lon:             10.43,
		YearBuilt:       1965,
		StudentCapacity: 420,
		FloorAreaM2:     12000,
	}

	consumption := domain.Consumption{
		ProjectName: "Moholt alle",
		City:        "TRONDHEIM",
		Year:        2021,
		TotalKWh:    950000,
	}
	for i := range consumption.MonthlyKWh {
		consumption.MonthlyKWh[i] = 50000
	}

	return &domain.Dataset{
		ID:          id,
		LoadedAt:    time.Now().UTC(),
		Buildings:   []domain.Building{building},
		Consumption: []domain.Consumption{consumption},
		Climate: []domain.Climate{
			{City: "TRONDHEIM", Year: 2021, Month: 1, TemperatureC: -4.5, HDD17: 21.5, MonthlyHDD: 666, Label: "jan/2021"},
		},
	}
}

func TestMemoryRepository_EmptyUntilSave(t *testing.T) {
	repo := NewMemoryDatasetRepository()
	ctx := context.Background()

	_, err := repo.Active(ctx)
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = repo.ActiveID(ctx)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestMemoryRepository_SaveAndLoad(t *testing.T) {
	repo := NewMemoryDatasetRepository()
	ctx := context.Background()

	ds := sampleDataset("snapshot-1")
	require.NoError(t, repo.Save(ctx, ds))

	got, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-1", got.ID)
	assert.Len(t, got.Buildings, 1)
	assert.Len(t, got.Consumption, 1)
	assert.Len(t, got.Climate, 1)

	id, err := repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-1", id)
}

func TestMemoryRepository_SaveReplacesSnapshot(t *testing.T) {
	repo := NewMemoryDatasetRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleDataset("snapshot-1")))
	require.NoError(t, repo.Save(ctx, sampleDataset("snapshot-2")))

	id, err := repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshot-2", id)
}
