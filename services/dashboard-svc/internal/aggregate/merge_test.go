package aggregate

import (
	"math"
	"os"
	"reflect"
	"testing"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
	"energidash/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

func building(name, city string, capacity, area float64) domain.Building {
	return domain.Building{
		ProjectName:     name,
		City:            city,
		StudentCapacity: capacity,
		FloorAreaM2:     area,
	}
}

func consumption(name, city string, year int, total float64) domain.Consumption {
	return domain.Consumption{
		ProjectName: name,
		City:        city,
		Year:        year,
		TotalKWh:    total,
	}
}

func TestAggregateConsumption_SpecificYear(t *testing.T) {
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2020, 1000),
		consumption("X", "OSLO", 2021, 2000),
		consumption("Y", "BERGEN", 2021, 500),
	}

	result := AggregateConsumption(rows, domain.ForYear(2021))

	if len(result) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(result))
	}
	if result["X"].TotalKWh != 2000 {
		t.Errorf("expected X total 2000, got %f", result["X"].TotalKWh)
	}
	if result["Y"].TotalKWh != 500 {
		t.Errorf("expected Y total 500, got %f", result["Y"].TotalKWh)
	}
	if result["X"].City != "OSLO" {
		t.Errorf("expected city OSLO, got %s", result["X"].City)
	}
}

func TestAggregateConsumption_AllYears(t *testing.T) {
	// Scenario: два года для одного проекта суммируются
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2020, 1000),
		consumption("X", "OSLO", 2021, 2000),
	}

	result := AggregateConsumption(rows, domain.AllYears())

	if result["X"].TotalKWh != 3000 {
		t.Errorf("expected 3000 across years, got %f", result["X"].TotalKWh)
	}
}

func TestAggregateConsumption_DuplicateYearFirstWins(t *testing.T) {
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2021, 1000),
		consumption("X", "OSLO", 2021, 9999),
	}

	result := AggregateConsumption(rows, domain.ForYear(2021))

	if result["X"].TotalKWh != 1000 {
		t.Errorf("first row should win on duplicate year, got %f", result["X"].TotalKWh)
	}
}

func TestAggregateConsumption_MissingTotal(t *testing.T) {
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2020, domain.Missing()),
		consumption("X", "OSLO", 2021, 2000),
	}

	result := AggregateConsumption(rows, domain.AllYears())

	if result["X"].TotalKWh != 2000 {
		t.Errorf("missing totals should count as zero, got %f", result["X"].TotalKWh)
	}
}

func TestAggregateConsumption_NoMatchingRows(t *testing.T) {
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2020, 1000),
	}

	result := AggregateConsumption(rows, domain.ForYear(1999))

	if len(result) != 0 {
		t.Errorf("expected empty result for year without rows, got %d entries", len(result))
	}
}

func TestMergeWithBuildings_LeftJoinCompleteness(t *testing.T) {
	// Каждое здание выживает независимо от наличия потребления
	buildings := []domain.Building{
		building("X", "OSLO", 100, 500),
		building("Y", "BERGEN", 50, 200),
		building("Z", "OSLO", 80, 300),
	}
	aggregated := map[string]AggregatedRow{
		"X": {TotalKWh: 10000, City: "OSLO"},
	}

	merged := MergeWithBuildings(buildings, aggregated)

	if len(merged) != len(buildings) {
		t.Fatalf("left join must keep all %d buildings, got %d", len(buildings), len(merged))
	}
	if merged[0].TotalKWh != 10000 {
		t.Errorf("expected matched total 10000, got %f", merged[0].TotalKWh)
	}
	if merged[1].TotalKWh != 0 {
		t.Errorf("unmatched building should have zero total, got %f", merged[1].TotalKWh)
	}
}

func TestMergeWithBuildings_BuildingCityAuthoritative(t *testing.T) {
	buildings := []domain.Building{building("X", "TRONDHEIM", 10, 10)}
	aggregated := map[string]AggregatedRow{
		"X": {TotalKWh: 100, City: "JAKOBSLI"},
	}

	merged := MergeWithBuildings(buildings, aggregated)

	if merged[0].City != "TRONDHEIM" {
		t.Errorf("city must come from building table, got %s", merged[0].City)
	}
}

func TestComputeEfficiencyMetrics_Ratios(t *testing.T) {
	merged := []domain.Merged{
		{Building: building("X", "OSLO", 100, 500), TotalKWh: 10000},
	}

	result := ComputeEfficiencyMetrics(merged)

	if result[0].KWhPerStudent != 100 {
		t.Errorf("expected 100 kwh/student, got %f", result[0].KWhPerStudent)
	}
	if result[0].KWhPerM2 != 20 {
		t.Errorf("expected 20 kwh/m2, got %f", result[0].KWhPerM2)
	}
}

func TestComputeEfficiencyMetrics_ZeroGuards(t *testing.T) {
	tests := []struct {
		name     string
		capacity float64
		area     float64
		total    float64
	}{
		{"zero capacity", 0, 500, 5000},
		{"zero area", 100, 0, 5000},
		{"missing total", 100, 500, domain.Missing()},
		{"zero total", 100, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := []domain.Merged{
				{Building: building("X", "OSLO", tt.capacity, tt.area), TotalKWh: tt.total},
			}

			result := ComputeEfficiencyMetrics(merged)
			row := result[0]

			if math.IsNaN(row.TotalKWh) || math.IsNaN(row.KWhPerStudent) || math.IsNaN(row.KWhPerM2) {
				t.Fatal("output must never contain NaN")
			}
			if tt.capacity == 0 && row.KWhPerStudent != 0 {
				t.Errorf("zero capacity must give zero ratio, got %f", row.KWhPerStudent)
			}
			if tt.area == 0 && row.KWhPerM2 != 0 {
				t.Errorf("zero area must give zero ratio, got %f", row.KWhPerM2)
			}
		})
	}
}

func TestComputeEfficiencyMetrics_DoesNotMutateInput(t *testing.T) {
	merged := []domain.Merged{
		{Building: building("X", "OSLO", 100, 500), TotalKWh: 10000},
	}

	_ = ComputeEfficiencyMetrics(merged)

	if merged[0].KWhPerStudent != 0 {
		t.Error("input slice must not be mutated")
	}
}

func TestMergeConsumptionWithStatic_ScenarioA(t *testing.T) {
	buildings := []domain.Building{building("X", "OSLO", 100, 500)}
	rows := []domain.Consumption{consumption("X", "OSLO", 2021, 10000)}

	merged, err := MergeConsumptionWithStatic(rows, buildings, domain.ForYear(2021))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if len(merged) != 1 {
		t.Fatalf("expected 1 row, got %d", len(merged))
	}
	if merged[0].TotalKWh != 10000 {
		t.Errorf("expected total 10000, got %f", merged[0].TotalKWh)
	}
	if merged[0].KWhPerStudent != 100 {
		t.Errorf("expected 100 kwh/student, got %f", merged[0].KWhPerStudent)
	}
	if merged[0].KWhPerM2 != 20 {
		t.Errorf("expected 20 kwh/m2, got %f", merged[0].KWhPerM2)
	}
}

func TestMergeConsumptionWithStatic_ScenarioB_NoConsumption(t *testing.T) {
	buildings := []domain.Building{building("X", "OSLO", 100, 500)}

	merged, err := MergeConsumptionWithStatic(nil, buildings, domain.AllYears())
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if len(merged) != 1 {
		t.Fatalf("expected 1 row, got %d", len(merged))
	}
	if merged[0].TotalKWh != 0 || merged[0].KWhPerStudent != 0 || merged[0].KWhPerM2 != 0 {
		t.Errorf("expected zero-filled row, got %+v", merged[0])
	}
}

func TestMergeConsumptionWithStatic_ScenarioC_ZeroCapacity(t *testing.T) {
	buildings := []domain.Building{building("X", "OSLO", 0, 500)}
	rows := []domain.Consumption{consumption("X", "OSLO", 2021, 5000)}

	merged, err := MergeConsumptionWithStatic(rows, buildings, domain.ForYear(2021))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if merged[0].KWhPerStudent != 0 {
		t.Errorf("guard must trigger despite nonzero consumption, got %f", merged[0].KWhPerStudent)
	}
	if merged[0].KWhPerM2 != 10 {
		t.Errorf("expected 10 kwh/m2, got %f", merged[0].KWhPerM2)
	}
}

func TestMergeConsumptionWithStatic_NilBuildings(t *testing.T) {
	_, err := MergeConsumptionWithStatic(nil, nil, domain.AllYears())
	if err == nil {
		t.Fatal("expected error for nil building table")
	}
}

func TestMergeConsumptionWithStatic_DuplicateBuilding(t *testing.T) {
	// Дубликат в статической таблице — ошибка, а не двойной join
	buildings := []domain.Building{
		building("X", "OSLO", 100, 500),
		building("X", "OSLO", 100, 500),
	}
	rows := []domain.Consumption{consumption("X", "OSLO", 2021, 1000)}

	merged, err := MergeConsumptionWithStatic(rows, buildings, domain.ForYear(2021))
	if err == nil {
		t.Fatalf("expected duplicate building error, got %d rows", len(merged))
	}
	if !apperror.Is(err, apperror.CodeDuplicateBuilding) {
		t.Errorf("expected DUPLICATE_BUILDING code, got %v", err)
	}
}

func TestMergeConsumptionWithStatic_ScopeConsistency(t *testing.T) {
	// Сумма по отдельным годам равна результату "все годы"
	buildings := []domain.Building{building("X", "OSLO", 100, 500)}
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2019, 700),
		consumption("X", "OSLO", 2020, 1000),
		consumption("X", "OSLO", 2021, 2000),
	}

	var perYearSum float64
	for _, year := range []int{2019, 2020, 2021} {
		merged, err := MergeConsumptionWithStatic(rows, buildings, domain.ForYear(year))
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		perYearSum += merged[0].TotalKWh
	}

	allYears, err := MergeConsumptionWithStatic(rows, buildings, domain.AllYears())
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if perYearSum != allYears[0].TotalKWh {
		t.Errorf("per-year sum %f != all-years total %f", perYearSum, allYears[0].TotalKWh)
	}
}

func TestMergeConsumptionWithStatic_Idempotent(t *testing.T) {
	buildings := []domain.Building{
		building("X", "OSLO", 100, 500),
		building("Y", "BERGEN", 0, 0),
	}
	rows := []domain.Consumption{
		consumption("X", "OSLO", 2020, 1000),
		consumption("X", "OSLO", 2021, 2000),
	}

	first, err := MergeConsumptionWithStatic(rows, buildings, domain.AllYears())
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	second, err := MergeConsumptionWithStatic(rows, buildings, domain.AllYears())
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated calls must produce identical output")
	}
}
