// Package aggregate содержит слой объединения таблиц: join потребления
// со статическими атрибутами зданий и вычисление метрик эффективности.
package aggregate

import (
	"energidash/pkg/apperror"
	"energidash/pkg/domain"
	"energidash/pkg/logger"
)

// AggregatedRow итог агрегации потребления по одному проекту
type AggregatedRow struct {
	TotalKWh float64
	City     string
}

// AggregateConsumption группирует строки потребления по имени проекта.
// Для конкретного года берётся единственная строка этого года
// (при дубликатах выигрывает первая встреченная, пишется warning),
// для "все годы" суммируются все строки проекта. Город переносится
// из первой встреченной строки.
//
// Проекты без подходящих строк в выходе отсутствуют.
func AggregateConsumption(consumption []domain.Consumption, scope domain.YearScope) map[string]AggregatedRow {
	result := make(map[string]AggregatedRow)

	if year, ok := scope.Year(); ok {
		for i := range consumption {
			c := &consumption[i]
			if c.Year != year {
				continue
			}
			if _, exists := result[c.ProjectName]; exists {
				logger.Log.Warn("duplicate consumption row, keeping first",
					"project", c.ProjectName,
					"year", c.Year,
				)
				continue
			}
			result[c.ProjectName] = AggregatedRow{
				TotalKWh: presentOrZero(c.TotalKWh),
				City:     c.City,
			}
		}
		return result
	}

	for i := range consumption {
		c := &consumption[i]
		row, exists := result[c.ProjectName]
		if !exists {
			row.City = c.City
		}
		row.TotalKWh += presentOrZero(c.TotalKWh)
		result[c.ProjectName] = row
	}
	return result
}

// MergeWithBuildings выполняет left join зданий с агрегированным
// потреблением. Каждая строка таблицы зданий сохраняется; здания
// без потребления получают ноль. Город всегда берётся из таблицы
// зданий, она авторитетна для отображения.
func MergeWithBuildings(buildings []domain.Building, aggregated map[string]AggregatedRow) []domain.Merged {
	merged := make([]domain.Merged, 0, len(buildings))
	for i := range buildings {
		b := buildings[i]
		row := domain.Merged{Building: b}
		if agg, ok := aggregated[b.ProjectName]; ok {
			row.TotalKWh = agg.TotalKWh
		}
		merged = append(merged, row)
	}
	return merged
}

// ComputeEfficiencyMetrics вычисляет удельное потребление на студента
// и на квадратный метр. Деление защищено: при нулевом или отсутствующем
// знаменателе метрика равна нулю, ошибок деления не бывает. Чистая
// функция, вход не мутируется.
func ComputeEfficiencyMetrics(merged []domain.Merged) []domain.Merged {
	result := make([]domain.Merged, len(merged))
	copy(result, merged)

	for i := range result {
		row := &result[i]
		row.TotalKWh = presentOrZero(row.TotalKWh)

		if row.StudentCapacity > 0 && row.TotalKWh > 0 {
			row.KWhPerStudent = row.TotalKWh / row.StudentCapacity
		} else {
			row.KWhPerStudent = 0
		}

		if row.FloorAreaM2 > 0 && row.TotalKWh > 0 {
			row.KWhPerM2 = row.TotalKWh / row.FloorAreaM2
		} else {
			row.KWhPerM2 = 0
		}
	}
	return result
}

// MergeConsumptionWithStatic единая точка входа: агрегация, join
// и метрики эффективности одной цепочкой. Дубликат имени здания в
// статической таблице — ошибка, иначе join удвоил бы строки.
// Идемпотентна для фиксированных входов, разделяемого состояния нет.
func MergeConsumptionWithStatic(consumption []domain.Consumption, buildings []domain.Building, scope domain.YearScope) ([]domain.Merged, error) {
	if buildings == nil {
		return nil, apperror.New(apperror.CodeNilInput, "building table is nil")
	}

	seen := make(map[string]bool, len(buildings))
	for i := range buildings {
		name := buildings[i].ProjectName
		if seen[name] {
			return nil, apperror.New(apperror.CodeDuplicateBuilding,
				"duplicate building in static table").WithField(name)
		}
		seen[name] = true
	}

	aggregated := AggregateConsumption(consumption, scope)
	merged := MergeWithBuildings(buildings, aggregated)
	return ComputeEfficiencyMetrics(merged), nil
}

// presentOrZero заменяет отсутствующее значение нулём
func presentOrZero(v float64) float64 {
	if domain.IsMissing(v) {
		return 0
	}
	return v
}
