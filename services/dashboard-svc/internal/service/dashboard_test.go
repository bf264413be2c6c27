package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energidash/pkg/apperror"
	"energidash/pkg/cache"
	"energidash/pkg/config"
	"energidash/pkg/domain"
	"energidash/pkg/logger"
	"energidash/services/dashboard-svc/internal/export"
	"energidash/services/dashboard-svc/internal/loader"
	"energidash/services/dashboard-svc/internal/mapview"
	"energidash/services/dashboard-svc/internal/repository"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

func exportConfig() *config.ExportConfig {
	return &config.ExportConfig{
		DefaultFormat:  "csv",
		CompanyName:    "Miljøfyrtårn EMS",
		PDFLeftMargin:  15,
		PDFTopMargin:   15,
		PDFRightMargin: 15,
	}
}

func building(name, city string, capacity, area float64) domain.Building {
	return domain.Building{
		ProjectName:     name,
		City:            city,
		ProjectType:     "studentboliger",
		Lat:             63.4,
		Lon:             10.4,
		StudentCapacity: capacity,
		FloorAreaM2:     area,
	}
}

func consumptionRow(name, city string, year int, total float64) domain.Consumption {
	c := domain.Consumption{ProjectName: name, City: city, Year: year, TotalKWh: total}
	for i := range c.MonthlyKWh {
		c.MonthlyKWh[i] = total / 12
	}
	return c
}

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		ID:       "snapshot-1",
		LoadedAt: time.Now().UTC(),
		Buildings: []domain.Building{
			building("Moholt", "TRONDHEIM", 400, 10000),
			building("Berg", "TRONDHEIM", 100, 2000),
			building("Sogn", "GJØVIK", 200, 5000),
		},
		Consumption: []domain.Consumption{
			consumptionRow("Moholt", "TRONDHEIM", 2020, 1200000),
			consumptionRow("Moholt", "TRONDHEIM", 2021, 1100000),
			consumptionRow("Berg", "TRONDHEIM", 2020, 240000),
			consumptionRow("Sogn", "GJØVIK", 2020, 480000),
		},
		Climate: []domain.Climate{
			{City: "TRONDHEIM", Year: 2020, Month: 1, TemperatureC: -4, HDD17: 21, MonthlyHDD: 650, Label: "jan/2020"},
			{City: "GJØVIK", Year: 2020, Month: 1, TemperatureC: -9, HDD17: 26, MonthlyHDD: 800, Label: "jan/2020"},
		},
	}
}

func newTestService(t *testing.T, ds *domain.Dataset) *DashboardService {
	t.Helper()

	repo := repository.NewMemoryDatasetRepository()
	if ds != nil {
		require.NoError(t, repo.Save(context.Background(), ds))
	}

	c := cache.MustNew(cache.DefaultOptions())
	t.Cleanup(func() { _ = c.Close() })

	return NewDashboardService(repo, nil, cache.NewMergedCache(c, time.Minute), exportConfig())
}

func TestFilters(t *testing.T) {
	svc := newTestService(t, testDataset())

	opts, err := svc.Filters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"GJØVIK", "TRONDHEIM"}, opts.Cities)
	assert.Equal(t, []string{"Berg", "Moholt", "Sogn"}, opts.Projects)
	assert.Equal(t, []int{2020, 2021}, opts.Years)
}

func TestFilters_NoDataset(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Filters(context.Background())
	assert.True(t, apperror.Is(err, apperror.CodeDatasetNotLoaded))
}

func TestReady(t *testing.T) {
	svc := newTestService(t, testDataset())
	assert.NoError(t, svc.Ready(context.Background()))

	empty := newTestService(t, nil)
	assert.Error(t, empty.Ready(context.Background()))
}

func TestMerged_AllYears(t *testing.T) {
	svc := newTestService(t, testDataset())

	rows, err := svc.Merged(context.Background(), domain.Filter{Scope: domain.AllYears()})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := make(map[string]domain.Merged)
	for _, r := range rows {
		byName[r.ProjectName] = r
	}
	// все годы суммируются
	assert.Equal(t, 2300000.0, byName["Moholt"].TotalKWh)
	assert.Equal(t, 240000.0, byName["Berg"].TotalKWh)
}

func TestMerged_SpecificYearAndCity(t *testing.T) {
	svc := newTestService(t, testDataset())

	filter := domain.Filter{City: "TRONDHEIM", Scope: domain.ForYear(2021)}
	rows, err := svc.Merged(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := make(map[string]domain.Merged)
	for _, r := range rows {
		byName[r.ProjectName] = r
	}
	assert.Equal(t, 1100000.0, byName["Moholt"].TotalKWh)
	// у Berg нет строки за 2021, потребление заполняется нулём
	assert.Equal(t, 0.0, byName["Berg"].TotalKWh)
}

func TestMerged_ProjectFilter(t *testing.T) {
	svc := newTestService(t, testDataset())

	rows, err := svc.Merged(context.Background(), domain.Filter{Project: "Sogn", Scope: domain.AllYears()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sogn", rows[0].ProjectName)
}

func TestMerged_CachedResultIsStable(t *testing.T) {
	svc := newTestService(t, testDataset())
	filter := domain.Filter{Scope: domain.AllYears()}

	first, err := svc.Merged(context.Background(), filter)
	require.NoError(t, err)
	second, err := svc.Merged(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t, testDataset())

	kpis, err := svc.Summary(context.Background(), domain.Filter{City: "GJØVIK", Scope: domain.AllYears()})
	require.NoError(t, err)

	assert.Equal(t, 1, kpis.ProjectCount)
	assert.Equal(t, 480000.0, kpis.TotalConsumptionKWh)
	assert.Equal(t, 2400.0, kpis.AvgKWhPerStudent)
}

func TestTopConsumers(t *testing.T) {
	svc := newTestService(t, testDataset())

	top, err := svc.TopConsumers(context.Background(), domain.Filter{Scope: domain.AllYears()})
	require.NoError(t, err)

	require.Len(t, top, 3)
	assert.Equal(t, "Moholt", top[0].ProjectName)
	assert.Equal(t, 2300000.0, top[0].TotalKWh)
}

func TestMonthlyTotals(t *testing.T) {
	svc := newTestService(t, testDataset())

	totals, err := svc.MonthlyTotals(context.Background(), domain.Filter{City: "GJØVIK", Scope: domain.ForYear(2020)})
	require.NoError(t, err)

	require.Len(t, totals, 12)
	assert.Equal(t, 2020, totals[0].Year)
	assert.InDelta(t, 40000, totals[0].KWh, 0.01)
}

func TestClimateCorrelation(t *testing.T) {
	svc := newTestService(t, testDataset())

	points, err := svc.ClimateCorrelation(context.Background(), domain.Filter{City: "TRONDHEIM", Scope: domain.AllYears()})
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, "TRONDHEIM", points[0].City)
	assert.InDelta(t, 120000, points[0].MonthlyKWh, 0.01)
}

func TestComparison(t *testing.T) {
	svc := newTestService(t, testDataset())

	cmp, err := svc.Comparison(context.Background(), domain.Filter{Scope: domain.AllYears()})
	require.NoError(t, err)

	require.NotEmpty(t, cmp.Top)
	assert.Equal(t, "Moholt", cmp.Top[0].ProjectName)
	require.NotEmpty(t, cmp.Bottom)
	assert.Equal(t, "Berg", cmp.Bottom[0].ProjectName)
}

func TestMapMarkers(t *testing.T) {
	svc := newTestService(t, testDataset())

	data, err := svc.MapMarkers(context.Background(), domain.Filter{Scope: domain.AllYears()}, mapview.MetricKWhPerM2)
	require.NoError(t, err)

	assert.Len(t, data.Markers, 3)
	assert.NotZero(t, data.CenterLat)
	assert.Equal(t, mapview.MetricKWhPerM2, data.Metric)
}

func TestCityOverview(t *testing.T) {
	svc := newTestService(t, testDataset())

	overview, err := svc.CityOverview(context.Background(), domain.Filter{Scope: domain.AllYears()})
	require.NoError(t, err)

	require.Len(t, overview, 2)
	assert.Equal(t, "GJØVIK", overview[0].City)
	assert.Equal(t, 2, overview[1].ProjectCount)
}

func TestExport_CSV(t *testing.T) {
	svc := newTestService(t, testDataset())

	filter := domain.Filter{City: "TRONDHEIM", Scope: domain.ForYear(2020)}
	res, err := svc.Export(context.Background(), filter, export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "miljofyrtarn_analyse_TRONDHEIM_2020.csv", res.Filename)
	assert.Contains(t, res.ContentType, "text/csv")
	assert.Contains(t, string(res.Body), "Moholt")
}

func TestExport_UnknownFormat(t *testing.T) {
	svc := newTestService(t, testDataset())

	_, err := svc.Export(context.Background(), domain.Filter{Scope: domain.AllYears()}, "docx")
	assert.True(t, apperror.Is(err, apperror.CodeUnknownFormat))
}

func TestReload_PublishesSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	writeFile("electricity.csv",
		"project_name;City;Year;Jan_KwH;Feb_KwH;Mar_KwH;Apr__KwH;may__KwH;Jun_KwH;Jul_KwH;Aug_KwH;Sep_KwH;Oct_KwH;Nov_KwH;Dec_KwH;Year_total_KwH\n"+
			"Moholt;Trondheim;2020;10;10;10;10;10;10;10;10;10;10;10;10;120\n")
	writeFile("static.csv",
		"project_name,city,project_type,year_built,lat,lon,total_HE,Total_BRA\n"+
			"Moholt,Trondheim,studentboliger,1965,63.41,10.43,420,12000\n")
	writeFile("temperature.csv",
		"City,Time,Year,Month,Temperature,HDD_17,Monthly_HDD\n"+
			"Trondheim,jan.20,2020,1,-4.0,21.0,650\n")

	dataCfg := &config.DataConfig{
		Dir:               dir,
		ElectricityFile:   "electricity.csv",
		StaticFile:        "static.csv",
		TemperatureFile:   "temperature.csv",
		ProjectTypeFilter: "studentboliger",
	}

	repo := repository.NewMemoryDatasetRepository()
	c := cache.MustNew(cache.DefaultOptions())
	t.Cleanup(func() { _ = c.Close() })

	svc := NewDashboardService(repo, loader.New(dataCfg), cache.NewMergedCache(c, time.Minute), exportConfig())

	res, err := svc.Reload(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.SnapshotID)
	assert.Equal(t, 1, res.Buildings)
	assert.Equal(t, 1, res.Consumption)
	assert.Equal(t, 1, res.Climate)

	id, err := repo.ActiveID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.SnapshotID, id)
}

func TestReload_NewSnapshotID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "electricity.csv"),
		[]byte("project_name;City;Year;Jan_KwH;Feb_KwH;Mar_KwH;Apr__KwH;may__KwH;Jun_KwH;Jul_KwH;Aug_KwH;Sep_KwH;Oct_KwH;Nov_KwH;Dec_KwH;Year_total_KwH\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static.csv"),
		[]byte("project_name,city,project_type,year_built,lat,lon,total_HE,Total_BRA\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temperature.csv"),
		[]byte("City,Time,Year,Month,Temperature,HDD_17,Monthly_HDD\n"), 0o644))

	dataCfg := &config.DataConfig{
		Dir:               dir,
		ElectricityFile:   "electricity.csv",
		StaticFile:        "static.csv",
		TemperatureFile:   "temperature.csv",
		ProjectTypeFilter: "studentboliger",
	}

	repo := repository.NewMemoryDatasetRepository()
	c := cache.MustNew(cache.DefaultOptions())
	t.Cleanup(func() { _ = c.Close() })

	svc := NewDashboardService(repo, loader.New(dataCfg), cache.NewMergedCache(c, time.Minute), exportConfig())

	first, err := svc.Reload(context.Background())
	require.NoError(t, err)
	second, err := svc.Reload(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.SnapshotID, second.SnapshotID)
}
