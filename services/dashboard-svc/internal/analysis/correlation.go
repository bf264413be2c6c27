package analysis

import (
	"sort"

	"energidash/pkg/domain"
)

// CorrelationPoint точка корреляции климата и потребления:
// одно наблюдение температуры с суммарным потреблением зданий
// того же города за тот же месяц.
type CorrelationPoint struct {
	City         string
	Year         int
	Month        int
	Label        string
	TemperatureC float64
	HDD17        float64
	MonthlyHDD   float64
	MonthlyKWh   float64
}

// ClimateCorrelation сопоставляет каждому климатическому наблюдению
// месячное потребление города. Потребление суммируется по всем
// проектам города за соответствующий год, пропуски считаются нулём.
// Наблюдения городов без строк потребления за этот год опускаются.
// Результат отсортирован по городу и периоду.
func ClimateCorrelation(climate []domain.Climate, consumption []domain.Consumption) []CorrelationPoint {
	type cityYear struct {
		city string
		year int
	}

	// суммарное потребление по (город, год, месяц)
	monthly := make(map[cityYear]*[domain.MonthCount]float64)
	for i := range consumption {
		c := &consumption[i]
		key := cityYear{city: c.City, year: c.Year}
		months, ok := monthly[key]
		if !ok {
			months = new([domain.MonthCount]float64)
			monthly[key] = months
		}
		for m := 0; m < domain.MonthCount; m++ {
			if v := c.MonthlyKWh[m]; !domain.IsMissing(v) {
				months[m] += v
			}
		}
	}

	result := make([]CorrelationPoint, 0, len(climate))
	for i := range climate {
		cl := &climate[i]
		months, ok := monthly[cityYear{city: cl.City, year: cl.Year}]
		if !ok {
			continue
		}
		if cl.Month < 1 || cl.Month > domain.MonthCount {
			continue
		}
		result = append(result, CorrelationPoint{
			City:         cl.City,
			Year:         cl.Year,
			Month:        cl.Month,
			Label:        cl.Label,
			TemperatureC: cl.TemperatureC,
			HDD17:        cl.HDD17,
			MonthlyHDD:   cl.MonthlyHDD,
			MonthlyKWh:   months[cl.Month-1],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].City != result[j].City {
			return result[i].City < result[j].City
		}
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})

	return result
}
