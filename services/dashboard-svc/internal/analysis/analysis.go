// Package analysis вычисляет аналитические представления над
// объединённым набором данных: KPI панели, топ потребителей,
// квартильное сравнение и корреляцию потребления с климатом.
package analysis

import (
	"sort"

	"energidash/pkg/domain"
)

// KPISummary агрегированные показатели по отфильтрованному набору
type KPISummary struct {
	ProjectCount        int
	TotalConsumptionKWh float64
	TotalStudents       float64
	TotalFloorAreaM2    float64
	AvgKWhPerStudent    float64
	AvgKWhPerM2         float64
}

// ComputeKPIs считает сводные показатели по объединённым строкам.
// Средние метрики равны нулю при нулевом знаменателе.
func ComputeKPIs(merged []domain.Merged) KPISummary {
	s := KPISummary{ProjectCount: len(merged)}

	for i := range merged {
		s.TotalConsumptionKWh += merged[i].TotalKWh
		s.TotalStudents += merged[i].StudentCapacity
		s.TotalFloorAreaM2 += merged[i].FloorAreaM2
	}

	if s.TotalStudents > 0 {
		s.AvgKWhPerStudent = s.TotalConsumptionKWh / s.TotalStudents
	}
	if s.TotalFloorAreaM2 > 0 {
		s.AvgKWhPerM2 = s.TotalConsumptionKWh / s.TotalFloorAreaM2
	}

	return s
}

// ProjectTotal суммарное потребление одного проекта
type ProjectTotal struct {
	ProjectName string
	TotalKWh    float64
}

// TopConsumers группирует потребление по проектам и возвращает
// limit крупнейших по убыванию. Отсутствующие годовые суммы
// трактуются как ноль. При равенстве сумм порядок определяется
// именем проекта.
func TopConsumers(consumption []domain.Consumption, limit int) []ProjectTotal {
	totals := make(map[string]float64)
	for i := range consumption {
		c := &consumption[i]
		v := c.TotalKWh
		if domain.IsMissing(v) {
			v = 0
		}
		totals[c.ProjectName] += v
	}

	result := make([]ProjectTotal, 0, len(totals))
	for name, total := range totals {
		result = append(result, ProjectTotal{ProjectName: name, TotalKWh: total})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalKWh != result[j].TotalKWh {
			return result[i].TotalKWh > result[j].TotalKWh
		}
		return result[i].ProjectName < result[j].ProjectName
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// EfficiencyRows отбирает строки для диаграммы эффективности:
// здания без потребления, без вместимости или с нулевой удельной
// метрикой исключаются.
func EfficiencyRows(merged []domain.Merged) []domain.Merged {
	result := make([]domain.Merged, 0, len(merged))
	for i := range merged {
		m := &merged[i]
		if m.TotalKWh > 0 && m.StudentCapacity > 0 && m.KWhPerStudent > 0 {
			result = append(result, *m)
		}
	}
	return result
}

// Comparison верхний и нижний квартили по годовому потреблению
type Comparison struct {
	Top    []domain.Merged
	Bottom []domain.Merged
}

// CompareQuartiles выделяет четверть зданий с наибольшим потреблением
// и четверть с наименьшим. Нижний квартиль считается только среди
// зданий с ненулевым потреблением, чтобы пропуски данных не
// выглядели как образцовая эффективность. Каждый квартиль содержит
// минимум одну строку, если есть из чего выбирать.
func CompareQuartiles(merged []domain.Merged) Comparison {
	var cmp Comparison
	if len(merged) == 0 {
		return cmp
	}

	byTotal := make([]domain.Merged, len(merged))
	copy(byTotal, merged)
	sort.SliceStable(byTotal, func(i, j int) bool {
		return byTotal[i].TotalKWh > byTotal[j].TotalKWh
	})

	topN := max(1, len(byTotal)/4)
	cmp.Top = byTotal[:topN]

	nonzero := make([]domain.Merged, 0, len(byTotal))
	for i := len(byTotal) - 1; i >= 0; i-- {
		if byTotal[i].TotalKWh > 0 {
			nonzero = append(nonzero, byTotal[i])
		}
	}
	if len(nonzero) == 0 {
		return cmp
	}

	bottomN := max(1, len(nonzero)/4)
	cmp.Bottom = nonzero[:bottomN]

	return cmp
}

// CityTemperature сводка температурного ряда по одному городу
type CityTemperature struct {
	City            string
	AvgTemperatureC float64
	MinTemperatureC float64
	MaxTemperatureC float64
}

// CityTemperatureSummary агрегирует температуру по городам:
// среднее, минимум и максимум по присутствующим наблюдениям.
// Города без единого определённого значения опускаются.
// Результат отсортирован по имени города.
func CityTemperatureSummary(climate []domain.Climate) []CityTemperature {
	type agg struct {
		sum, min, max float64
		count         int
	}
	byCity := make(map[string]*agg)

	for i := range climate {
		c := &climate[i]
		if domain.IsMissing(c.TemperatureC) {
			continue
		}
		a, ok := byCity[c.City]
		if !ok {
			a = &agg{min: c.TemperatureC, max: c.TemperatureC}
			byCity[c.City] = a
		}
		a.sum += c.TemperatureC
		a.count++
		if c.TemperatureC < a.min {
			a.min = c.TemperatureC
		}
		if c.TemperatureC > a.max {
			a.max = c.TemperatureC
		}
	}

	result := make([]CityTemperature, 0, len(byCity))
	for city, a := range byCity {
		result = append(result, CityTemperature{
			City:            city,
			AvgTemperatureC: a.sum / float64(a.count),
			MinTemperatureC: a.min,
			MaxTemperatureC: a.max,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].City < result[j].City })
	return result
}
