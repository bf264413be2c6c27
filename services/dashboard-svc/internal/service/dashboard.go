// Package service собирает слои панели воедино: загрузку данных,
// снапшоты, агрегацию, кэш и выгрузки.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"energidash/pkg/apperror"
	"energidash/pkg/cache"
	"energidash/pkg/config"
	"energidash/pkg/domain"
	"energidash/pkg/logger"
	"energidash/pkg/metrics"
	"energidash/services/dashboard-svc/internal/aggregate"
	"energidash/services/dashboard-svc/internal/analysis"
	"energidash/services/dashboard-svc/internal/export"
	"energidash/services/dashboard-svc/internal/loader"
	"energidash/services/dashboard-svc/internal/mapview"
	"energidash/services/dashboard-svc/internal/repository"
)

// ExportTitle заголовок выгрузок, унаследованный от исходной панели
const ExportTitle = "Energiforbruk i Studentboliger"

const topConsumersLimit = 10

// DashboardService сервис аналитической панели
type DashboardService struct {
	repo      repository.DatasetRepository
	loader    *loader.Loader
	merged    *cache.MergedCache
	exportCfg *config.ExportConfig
}

// NewDashboardService создаёт новый сервис
func NewDashboardService(
	repo repository.DatasetRepository,
	ld *loader.Loader,
	mergedCache *cache.MergedCache,
	exportCfg *config.ExportConfig,
) *DashboardService {
	return &DashboardService{
		repo:      repo,
		loader:    ld,
		merged:    mergedCache,
		exportCfg: exportCfg,
	}
}

// ReloadResult итог перезагрузки набора данных
type ReloadResult struct {
	SnapshotID  string
	LoadedAt    time.Time
	Buildings   int
	Consumption int
	Climate     int
	Warnings    []string
}

// Reload читает исходные таблицы с диска и публикует новый снапшот.
// Старые ключи кэша инвалидируются; свежий snapshot ID гарантирует,
// что производные результаты пересчитываются.
func (s *DashboardService) Reload(ctx context.Context) (*ReloadResult, error) {
	tables, err := s.loader.Load(ctx)
	if err != nil {
		metrics.Get().RecordDatasetReload(false, 0, 0, 0)
		return nil, err
	}

	ds := &domain.Dataset{
		ID:          uuid.NewString(),
		LoadedAt:    time.Now().UTC(),
		Buildings:   tables.Buildings,
		Consumption: tables.Consumption,
		Climate:     tables.Climate,
	}

	if err := s.repo.Save(ctx, ds); err != nil {
		metrics.Get().RecordDatasetReload(false, 0, 0, 0)
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to store dataset snapshot")
	}

	if _, err := s.merged.InvalidateAll(ctx); err != nil {
		logger.Warn("cache invalidation failed after reload", "error", err)
	}

	metrics.Get().RecordDatasetReload(true, len(ds.Buildings), len(ds.Consumption), len(ds.Climate))
	logger.WithDataset(ds.ID).Info("dataset snapshot published",
		"buildings", len(ds.Buildings),
		"consumption", len(ds.Consumption),
		"climate", len(ds.Climate),
		"warnings", len(tables.Warnings),
	)

	return &ReloadResult{
		SnapshotID:  ds.ID,
		LoadedAt:    ds.LoadedAt,
		Buildings:   len(ds.Buildings),
		Consumption: len(ds.Consumption),
		Climate:     len(ds.Climate),
		Warnings:    tables.Warnings,
	}, nil
}

// dataset возвращает активный снапшот
func (s *DashboardService) dataset(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.repo.Active(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			return nil, apperror.New(apperror.CodeDatasetNotLoaded, "no dataset snapshot loaded")
		}
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to load dataset snapshot")
	}
	return ds, nil
}

// Ready проверяет, опубликован ли снапшот
func (s *DashboardService) Ready(ctx context.Context) error {
	_, err := s.repo.ActiveID(ctx)
	if errors.Is(err, repository.ErrDatasetNotFound) {
		return apperror.New(apperror.CodeDatasetNotLoaded, "no dataset snapshot loaded")
	}
	return err
}

// FilterOptions доступные значения фильтров панели
type FilterOptions struct {
	Cities   []string
	Projects []string
	Years    []int
}

// Filters возвращает значения для выпадающих списков панели
func (s *DashboardService) Filters(ctx context.Context) (*FilterOptions, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &FilterOptions{
		Cities:   ds.Cities(),
		Projects: ds.Projects(),
		Years:    ds.Years(),
	}, nil
}

// Merged возвращает объединённую таблицу для фильтра. Результат
// кэшируется по паре (snapshot, фильтр); промах пересчитывает
// таблицу из неизменяемого снапшота.
func (s *DashboardService) Merged(ctx context.Context, filter domain.Filter) ([]domain.Merged, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.mergedForDataset(ctx, ds, filter)
}

func (s *DashboardService) mergedForDataset(ctx context.Context, ds *domain.Dataset, filter domain.Filter) ([]domain.Merged, error) {
	if rows, found, err := s.merged.Get(ctx, ds.ID, filter); err == nil && found {
		metrics.Get().RecordCacheLookup(true)
		return rows, nil
	} else if err != nil {
		logger.Warn("merged cache lookup failed", "error", err)
	}
	metrics.Get().RecordCacheLookup(false)

	start := time.Now()
	rows, err := aggregate.MergeConsumptionWithStatic(ds.Consumption, ds.Buildings, filter.Scope)
	if err != nil {
		metrics.Get().RecordMergeOperation(filter.Scope.String(), false, time.Since(start))
		return nil, err
	}
	rows = filterMerged(rows, filter)
	metrics.Get().RecordMergeOperation(filter.Scope.String(), true, time.Since(start))

	if err := s.merged.Set(ctx, ds.ID, filter, rows, 0); err != nil {
		logger.Warn("merged cache store failed", "error", err)
	}

	return rows, nil
}

// filterMerged применяет фильтры города и проекта к объединённым строкам
func filterMerged(rows []domain.Merged, filter domain.Filter) []domain.Merged {
	if filter.City == "" && filter.Project == "" {
		return rows
	}
	result := make([]domain.Merged, 0, len(rows))
	for i := range rows {
		if filter.MatchBuilding(&rows[i].Building) {
			result = append(result, rows[i])
		}
	}
	return result
}

// filterConsumption применяет фильтры к строкам потребления
func filterConsumption(consumption []domain.Consumption, filter domain.Filter) []domain.Consumption {
	result := make([]domain.Consumption, 0, len(consumption))
	for i := range consumption {
		if filter.MatchConsumption(&consumption[i]) {
			result = append(result, consumption[i])
		}
	}
	return result
}

// filterClimate применяет фильтр города к климатическим наблюдениям
func filterClimate(climate []domain.Climate, filter domain.Filter) []domain.Climate {
	if filter.City == "" {
		return climate
	}
	result := make([]domain.Climate, 0, len(climate))
	for i := range climate {
		if filter.MatchClimate(&climate[i]) {
			result = append(result, climate[i])
		}
	}
	return result
}

// Summary считает KPI по отфильтрованному набору
func (s *DashboardService) Summary(ctx context.Context, filter domain.Filter) (*analysis.KPISummary, error) {
	rows, err := s.Merged(ctx, filter)
	if err != nil {
		return nil, err
	}
	kpis := analysis.ComputeKPIs(rows)
	return &kpis, nil
}

// MonthlyTotals месячные суммы потребления для графика трендов
func (s *DashboardService) MonthlyTotals(ctx context.Context, filter domain.Filter) ([]aggregate.MonthlyTotal, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	consumption := filterConsumption(ds.Consumption, filter)
	return aggregate.MonthlyTotals(consumption, filter.Scope), nil
}

// TopConsumers десять крупнейших потребителей
func (s *DashboardService) TopConsumers(ctx context.Context, filter domain.Filter) ([]analysis.ProjectTotal, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	consumption := filterConsumption(ds.Consumption, filter)
	return analysis.TopConsumers(consumption, topConsumersLimit), nil
}

// Efficiency строки для диаграммы эффективности
func (s *DashboardService) Efficiency(ctx context.Context, filter domain.Filter) ([]domain.Merged, error) {
	rows, err := s.Merged(ctx, filter)
	if err != nil {
		return nil, err
	}
	return analysis.EfficiencyRows(rows), nil
}

// ClimateCorrelation точки корреляции климата и потребления
func (s *DashboardService) ClimateCorrelation(ctx context.Context, filter domain.Filter) ([]analysis.CorrelationPoint, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	climate := filterClimate(ds.Climate, filter)
	consumption := filterConsumption(ds.Consumption, filter)
	return analysis.ClimateCorrelation(climate, consumption), nil
}

// Comparison верхний и нижний квартили потребления
func (s *DashboardService) Comparison(ctx context.Context, filter domain.Filter) (*analysis.Comparison, error) {
	rows, err := s.Merged(ctx, filter)
	if err != nil {
		return nil, err
	}
	cmp := analysis.CompareQuartiles(rows)
	return &cmp, nil
}

// MapData маркеры зданий вместе с центром карты
type MapData struct {
	CenterLat float64
	CenterLon float64
	Metric    mapview.ColorMetric
	Markers   []mapview.Marker
}

// MapMarkers маркеры зданий для интерактивной карты
func (s *DashboardService) MapMarkers(ctx context.Context, filter domain.Filter, metric mapview.ColorMetric) (*MapData, error) {
	rows, err := s.Merged(ctx, filter)
	if err != nil {
		return nil, err
	}
	lat, lon := mapview.Center(rows)
	return &MapData{
		CenterLat: lat,
		CenterLon: lon,
		Metric:    metric,
		Markers:   mapview.Markers(rows, metric),
	}, nil
}

// CityOverview агрегированные маркеры городов
func (s *DashboardService) CityOverview(ctx context.Context, filter domain.Filter) ([]mapview.CityMarker, error) {
	rows, err := s.Merged(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapview.CityOverview(rows), nil
}

// ExportResult готовая выгрузка
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export генерирует выгрузку отфильтрованного набора в выбранном формате
func (s *DashboardService) Export(ctx context.Context, filter domain.Filter, format export.Format) (*ExportResult, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.mergedForDataset(ctx, ds, filter)
	if err != nil {
		return nil, err
	}

	climate := filterClimate(ds.Climate, filter)
	consumption := filterConsumption(ds.Consumption, filter)
	totals := aggregate.MonthlyTotals(consumption, filter.Scope)

	data := &export.Data{
		Title:        ExportTitle,
		Filter:       filter,
		GeneratedAt:  time.Now().UTC(),
		Merged:       rows,
		KPIs:         analysis.ComputeKPIs(rows),
		Temperatures: analysis.CityTemperatureSummary(climate),
		Climate:      aggregate.MergeClimateConsumption(totals, climate),
	}

	exporter, err := export.New(format, s.exportCfg)
	if err != nil {
		return nil, err
	}

	body, err := exporter.Generate(ctx, data)
	if err != nil {
		metrics.Get().RecordExport(string(format), false)
		return nil, apperror.Wrap(err, apperror.CodeInternal, "export generation failed")
	}
	metrics.Get().RecordExport(string(format), true)

	return &ExportResult{
		Filename:    export.Filename(filter, format),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}
