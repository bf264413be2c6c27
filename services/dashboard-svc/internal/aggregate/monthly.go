package aggregate

import (
	"sort"

	"energidash/pkg/domain"
)

// MonthlyTotal суммарное потребление всех проектов за один месяц года
type MonthlyTotal struct {
	Year  int
	Month int // 1-12
	KWh   float64
}

// MonthlyTotals суммирует месячные колонки потребления по каждому
// (год, месяц) в выбранном scope. Отсутствующие значения
// пропускаются, выход отсортирован по году и месяцу.
func MonthlyTotals(consumption []domain.Consumption, scope domain.YearScope) []MonthlyTotal {
	type ym struct {
		year, month int
	}
	sums := make(map[ym]float64)

	for i := range consumption {
		c := &consumption[i]
		if !scope.Includes(c.Year) {
			continue
		}
		for m := 1; m <= domain.MonthCount; m++ {
			v := c.MonthKWh(m)
			if domain.IsMissing(v) {
				continue
			}
			sums[ym{c.Year, m}] += v
		}
	}

	totals := make([]MonthlyTotal, 0, len(sums))
	for k, v := range sums {
		totals = append(totals, MonthlyTotal{Year: k.year, Month: k.month, KWh: v})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Month < totals[j].Month
	})
	return totals
}

// ClimateJoinRow месячное потребление, совмещённое с климатом
type ClimateJoinRow struct {
	Year         int
	Month        int
	Label        string
	TemperatureC float64
	HDD17        float64
	TotalKWh     float64
}

// MergeClimateConsumption объединяет месячные суммы потребления
// с климатическими наблюдениями по ключу (год, месяц). Температура
// усредняется, градусо-дни суммируются по городам наблюдений.
// Месяцы без климатических данных опускаются: корреляционный
// график требует обе величины.
func MergeClimateConsumption(totals []MonthlyTotal, climate []domain.Climate) []ClimateJoinRow {
	type ym struct {
		year, month int
	}
	type climAgg struct {
		tempSum float64
		hddSum  float64
		count   int
		label   string
	}

	byMonth := make(map[ym]*climAgg)
	for i := range climate {
		c := &climate[i]
		key := ym{c.Year, c.Month}
		agg, ok := byMonth[key]
		if !ok {
			agg = &climAgg{label: c.Label}
			byMonth[key] = agg
		}
		if !domain.IsMissing(c.TemperatureC) {
			agg.tempSum += c.TemperatureC
			agg.count++
		}
		if !domain.IsMissing(c.HDD17) {
			agg.hddSum += c.HDD17
		}
	}

	rows := make([]ClimateJoinRow, 0, len(totals))
	for _, t := range totals {
		agg, ok := byMonth[ym{t.Year, t.Month}]
		if !ok || agg.count == 0 {
			continue
		}
		rows = append(rows, ClimateJoinRow{
			Year:         t.Year,
			Month:        t.Month,
			Label:        agg.label,
			TemperatureC: agg.tempSum / float64(agg.count),
			HDD17:        agg.hddSum,
			TotalKWh:     t.KWh,
		})
	}
	return rows
}
