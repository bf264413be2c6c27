// Package mapview формирует данные для интерактивной карты:
// маркеры зданий с цветом по выбранной метрике эффективности
// и обзор по городам.
package mapview

import (
	"sort"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
)

// ColorMetric метрика, по которой раскрашиваются маркеры
type ColorMetric string

const (
	MetricKWhPerM2      ColorMetric = "kwh_per_m2"
	MetricKWhPerStudent ColorMetric = "kwh_per_student"
)

// Пороги цветовой шкалы: выше первого порога красный,
// между порогами жёлтый, ниже второго зелёный.
const (
	perM2HighThreshold      = 50.0
	perM2LowThreshold       = 30.0
	perStudentHighThreshold = 4000.0
	perStudentLowThreshold  = 2000.0
)

// Центр карты по умолчанию, когда нет ни одной координаты (Trondheim)
const (
	DefaultCenterLat = 63.4305
	DefaultCenterLon = 10.3951
)

// ParseMetric разбирает метрику из query-параметра.
// Пустая строка означает метрику по умолчанию (kWh per m²).
func ParseMetric(s string) (ColorMetric, error) {
	switch s {
	case "", string(MetricKWhPerM2):
		return MetricKWhPerM2, nil
	case string(MetricKWhPerStudent):
		return MetricKWhPerStudent, nil
	default:
		return "", apperror.New(apperror.CodeUnknownMetric, "unknown map metric: "+s)
	}
}

// Marker маркер одного здания на карте
type Marker struct {
	ProjectName     string
	City            string
	Lat             float64
	Lon             float64
	YearBuilt       int
	StudentCapacity float64
	FloorAreaM2     float64
	TotalKWh        float64
	KWhPerStudent   float64
	KWhPerM2        float64
	Color           string
	Radius          int
}

// Markers строит маркеры по объединённым строкам. Цвет определяется
// значением выбранной метрики, размер — суммарным потреблением.
// Здания без данных потребления отмечаются чёрным.
func Markers(merged []domain.Merged, metric ColorMetric) []Marker {
	markers := make([]Marker, 0, len(merged))
	for i := range merged {
		m := &merged[i]
		markers = append(markers, Marker{
			ProjectName:     m.ProjectName,
			City:            m.City,
			Lat:             m.Lat,
			Lon:             m.Lon,
			YearBuilt:       m.YearBuilt,
			StudentCapacity: m.StudentCapacity,
			FloorAreaM2:     m.FloorAreaM2,
			TotalKWh:        m.TotalKWh,
			KWhPerStudent:   m.KWhPerStudent,
			KWhPerM2:        m.KWhPerM2,
			Color:           markerColor(m, metric),
			Radius:          markerRadius(m.TotalKWh),
		})
	}
	return markers
}

func markerColor(m *domain.Merged, metric ColorMetric) string {
	if !m.HasConsumption() {
		return "black"
	}

	value := m.KWhPerM2
	high, low := perM2HighThreshold, perM2LowThreshold
	if metric == MetricKWhPerStudent {
		value = m.KWhPerStudent
		high, low = perStudentHighThreshold, perStudentLowThreshold
	}

	switch {
	case value > high:
		return "red"
	case value >= low:
		return "yellow"
	default:
		return "green"
	}
}

// markerRadius размер маркера по уровню годового потребления
func markerRadius(totalKWh float64) int {
	switch {
	case totalKWh == 0:
		return 5
	case totalKWh > 1_000_000:
		return 15
	case totalKWh > 100_000:
		return 10
	default:
		return 7
	}
}

// Center возвращает центр карты как среднее координат зданий.
// Без зданий используется центр по умолчанию.
func Center(merged []domain.Merged) (lat, lon float64) {
	if len(merged) == 0 {
		return DefaultCenterLat, DefaultCenterLon
	}
	for i := range merged {
		lat += merged[i].Lat
		lon += merged[i].Lon
	}
	n := float64(len(merged))
	return lat / n, lon / n
}

// CityMarker агрегированный маркер города для обзорной карты
type CityMarker struct {
	City         string
	Lat          float64
	Lon          float64
	ProjectCount int
	TotalKWh     float64
	Radius       float64
}

// CityOverview группирует здания по городам: количество проектов,
// суммарное потребление и усреднённые координаты. Размер маркера
// пропорционален потреблению и ограничен диапазоном 10-30.
// Результат отсортирован по имени города.
func CityOverview(merged []domain.Merged) []CityMarker {
	type agg struct {
		lat, lon, total float64
		count           int
	}
	byCity := make(map[string]*agg)

	for i := range merged {
		m := &merged[i]
		a, ok := byCity[m.City]
		if !ok {
			a = &agg{}
			byCity[m.City] = a
		}
		a.lat += m.Lat
		a.lon += m.Lon
		a.total += m.TotalKWh
		a.count++
	}

	result := make([]CityMarker, 0, len(byCity))
	for city, a := range byCity {
		n := float64(a.count)
		result = append(result, CityMarker{
			City:         city,
			Lat:          a.lat / n,
			Lon:          a.lon / n,
			ProjectCount: a.count,
			TotalKWh:     a.total,
			Radius:       cityRadius(a.total),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].City < result[j].City })
	return result
}

func cityRadius(totalKWh float64) float64 {
	r := totalKWh / 100_000
	if r < 10 {
		return 10
	}
	if r > 30 {
		return 30
	}
	return r
}
