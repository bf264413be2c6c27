package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"energidash/pkg/database"
	"energidash/pkg/domain"
)

// PostgresDatasetRepository PostgreSQL реализация DatasetRepository.
// Таблицы строк хранят row_index, чтобы порядок исходного CSV
// переживал перезагрузку: от него зависит разрешение дубликатов.
type PostgresDatasetRepository struct {
	db database.DB
}

// NewPostgresDatasetRepository создаёт новый репозиторий
func NewPostgresDatasetRepository(db database.DB) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{db: db}
}

func (r *PostgresDatasetRepository) Save(ctx context.Context, ds *domain.Dataset) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// предыдущие снапшоты вычищаются каскадом
		if _, err := tx.Exec(ctx, `DELETE FROM datasets`); err != nil {
			return fmt.Errorf("failed to clear previous snapshot: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO datasets (id, loaded_at) VALUES ($1, $2)`,
			ds.ID, ds.LoadedAt,
		); err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}

		batch := &pgx.Batch{}

		for i := range ds.Buildings {
			b := &ds.Buildings[i]
			batch.Queue(`
				INSERT INTO buildings (
					dataset_id, project_name, city, project_type,
					lat, lon, year_built, student_capacity, floor_area_m2
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				ds.ID, b.ProjectName, b.City, b.ProjectType,
				b.Lat, b.Lon, b.YearBuilt, b.StudentCapacity, b.FloorAreaM2,
			)
		}

		for i := range ds.Consumption {
			c := &ds.Consumption[i]
			batch.Queue(`
				INSERT INTO consumption (
					dataset_id, row_index, project_name, city, year,
					monthly_kwh, total_kwh
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				ds.ID, i, c.ProjectName, c.City, c.Year,
				c.MonthlyKWh[:], c.TotalKWh,
			)
		}

		for i := range ds.Climate {
			c := &ds.Climate[i]
			batch.Queue(`
				INSERT INTO climate (
					dataset_id, row_index, city, year, month,
					temperature_c, hdd_17, monthly_hdd, label
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				ds.ID, i, c.City, c.Year, c.Month,
				c.TemperatureC, c.HDD17, c.MonthlyHDD, c.Label,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert dataset rows: %w", err)
		}

		return nil
	})
}

func (r *PostgresDatasetRepository) Active(ctx context.Context) (*domain.Dataset, error) {
	ds := &domain.Dataset{}

	err := r.db.QueryRow(ctx,
		`SELECT id, loaded_at FROM datasets ORDER BY loaded_at DESC LIMIT 1`,
	).Scan(&ds.ID, &ds.LoadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDatasetNotFound
		}
		return nil, fmt.Errorf("failed to get active dataset: %w", err)
	}

	if ds.Buildings, err = r.loadBuildings(ctx, ds.ID); err != nil {
		return nil, err
	}
	if ds.Consumption, err = r.loadConsumption(ctx, ds.ID); err != nil {
		return nil, err
	}
	if ds.Climate, err = r.loadClimate(ctx, ds.ID); err != nil {
		return nil, err
	}

	return ds, nil
}

func (r *PostgresDatasetRepository) ActiveID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`SELECT id FROM datasets ORDER BY loaded_at DESC LIMIT 1`,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrDatasetNotFound
		}
		return "", fmt.Errorf("failed to get active dataset id: %w", err)
	}
	return id, nil
}

func (r *PostgresDatasetRepository) loadBuildings(ctx context.Context, datasetID string) ([]domain.Building, error) {
	rows, err := r.db.Query(ctx, `
		SELECT project_name, city, project_type, lat, lon,
		       year_built, student_capacity, floor_area_m2
		FROM buildings
		WHERE dataset_id = $1
		ORDER BY project_name`,
		datasetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query buildings: %w", err)
	}
	defer rows.Close()

	var buildings []domain.Building
	for rows.Next() {
		var b domain.Building
		if err := rows.Scan(
			&b.ProjectName, &b.City, &b.ProjectType, &b.Lat, &b.Lon,
			&b.YearBuilt, &b.StudentCapacity, &b.FloorAreaM2,
		); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

func (r *PostgresDatasetRepository) loadConsumption(ctx context.Context, datasetID string) ([]domain.Consumption, error) {
	rows, err := r.db.Query(ctx, `
		SELECT project_name, city, year, monthly_kwh, total_kwh
		FROM consumption
		WHERE dataset_id = $1
		ORDER BY row_index`,
		datasetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query consumption: %w", err)
	}
	defer rows.Close()

	var consumption []domain.Consumption
	for rows.Next() {
		var c domain.Consumption
		var monthly []float64
		if err := rows.Scan(&c.ProjectName, &c.City, &c.Year, &monthly, &c.TotalKWh); err != nil {
			return nil, fmt.Errorf("failed to scan consumption: %w", err)
		}
		copy(c.MonthlyKWh[:], monthly)
		consumption = append(consumption, c)
	}
	return consumption, rows.Err()
}

func (r *PostgresDatasetRepository) loadClimate(ctx context.Context, datasetID string) ([]domain.Climate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT city, year, month, temperature_c, hdd_17, monthly_hdd, label
		FROM climate
		WHERE dataset_id = $1
		ORDER BY row_index`,
		datasetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query climate: %w", err)
	}
	defer rows.Close()

	var climate []domain.Climate
	for rows.Next() {
		var c domain.Climate
		if err := rows.Scan(
			&c.City, &c.Year, &c.Month,
			&c.TemperatureC, &c.HDD17, &c.MonthlyHDD, &c.Label,
		); err != nil {
			return nil, fmt.Errorf("failed to scan climate: %w", err)
		}
		climate = append(climate, c)
	}
	return climate, rows.Err()
}
