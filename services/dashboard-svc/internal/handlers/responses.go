package handlers

import (
	"time"

	"energidash/pkg/domain"
	"energidash/services/dashboard-svc/internal/aggregate"
	"energidash/services/dashboard-svc/internal/analysis"
	"energidash/services/dashboard-svc/internal/mapview"
	"energidash/services/dashboard-svc/internal/service"
)

// DTO слоя API. Доменные типы не несут json-тегов,
// поэтому форма ответов фиксируется здесь.

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type filtersResponse struct {
	Cities   []string `json:"cities"`
	Projects []string `json:"projects"`
	Years    []int    `json:"years"`
}

type summaryResponse struct {
	ProjectCount        int     `json:"project_count"`
	TotalConsumptionKWh float64 `json:"total_consumption_kwh"`
	TotalStudents       float64 `json:"total_students"`
	TotalFloorAreaM2    float64 `json:"total_floor_area_m2"`
	AvgKWhPerStudent    float64 `json:"avg_kwh_per_student"`
	AvgKWhPerM2         float64 `json:"avg_kwh_per_m2"`
}

func toSummaryResponse(k *analysis.KPISummary) summaryResponse {
	return summaryResponse{
		ProjectCount:        k.ProjectCount,
		TotalConsumptionKWh: k.TotalConsumptionKWh,
		TotalStudents:       k.TotalStudents,
		TotalFloorAreaM2:    k.TotalFloorAreaM2,
		AvgKWhPerStudent:    k.AvgKWhPerStudent,
		AvgKWhPerM2:         k.AvgKWhPerM2,
	}
}

type buildingRow struct {
	ProjectName     string  `json:"project_name"`
	City            string  `json:"city"`
	ProjectType     string  `json:"project_type"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	YearBuilt       int     `json:"year_built,omitempty"`
	StudentCapacity float64 `json:"student_capacity"`
	FloorAreaM2     float64 `json:"floor_area_m2"`
	TotalKWh        float64 `json:"total_kwh"`
	KWhPerStudent   float64 `json:"kwh_per_student"`
	KWhPerM2        float64 `json:"kwh_per_m2"`
}

func toBuildingRows(rows []domain.Merged) []buildingRow {
	out := make([]buildingRow, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		out = append(out, buildingRow{
			ProjectName:     m.ProjectName,
			City:            m.City,
			ProjectType:     m.ProjectType,
			Lat:             m.Lat,
			Lon:             m.Lon,
			YearBuilt:       m.YearBuilt,
			StudentCapacity: m.StudentCapacity,
			FloorAreaM2:     m.FloorAreaM2,
			TotalKWh:        m.TotalKWh,
			KWhPerStudent:   m.KWhPerStudent,
			KWhPerM2:        m.KWhPerM2,
		})
	}
	return out
}

type buildingsResponse struct {
	Count     int           `json:"count"`
	Buildings []buildingRow `json:"buildings"`
}

type markerDTO struct {
	ProjectName     string  `json:"project_name"`
	City            string  `json:"city"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	YearBuilt       int     `json:"year_built,omitempty"`
	StudentCapacity float64 `json:"student_capacity"`
	FloorAreaM2     float64 `json:"floor_area_m2"`
	TotalKWh        float64 `json:"total_kwh"`
	KWhPerStudent   float64 `json:"kwh_per_student"`
	KWhPerM2        float64 `json:"kwh_per_m2"`
	Color           string  `json:"color"`
	Radius          int     `json:"radius"`
}

type mapResponse struct {
	CenterLat float64     `json:"center_lat"`
	CenterLon float64     `json:"center_lon"`
	Metric    string      `json:"metric"`
	Markers   []markerDTO `json:"markers"`
}

func toMapResponse(data *service.MapData) mapResponse {
	markers := make([]markerDTO, 0, len(data.Markers))
	for _, m := range data.Markers {
		markers = append(markers, markerDTO{
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
			Color:           m.Color,
			Radius:          m.Radius,
		})
	}
	return mapResponse{
		CenterLat: data.CenterLat,
		CenterLon: data.CenterLon,
		Metric:    string(data.Metric),
		Markers:   markers,
	}
}

type cityMarkerDTO struct {
	City         string  `json:"city"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	ProjectCount int     `json:"project_count"`
	TotalKWh     float64 `json:"total_kwh"`
	Radius       float64 `json:"radius"`
}

func toCityMarkers(markers []mapview.CityMarker) []cityMarkerDTO {
	out := make([]cityMarkerDTO, 0, len(markers))
	for _, m := range markers {
		out = append(out, cityMarkerDTO{
			City:         m.City,
			Lat:          m.Lat,
			Lon:          m.Lon,
			ProjectCount: m.ProjectCount,
			TotalKWh:     m.TotalKWh,
			Radius:       m.Radius,
		})
	}
	return out
}

type monthlyTotalDTO struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	KWh   float64 `json:"kwh"`
}

func toMonthlyTotals(totals []aggregate.MonthlyTotal) []monthlyTotalDTO {
	out := make([]monthlyTotalDTO, 0, len(totals))
	for _, t := range totals {
		out = append(out, monthlyTotalDTO{Year: t.Year, Month: t.Month, KWh: t.KWh})
	}
	return out
}

type projectTotalDTO struct {
	ProjectName string  `json:"project_name"`
	TotalKWh    float64 `json:"total_kwh"`
}

func toProjectTotals(totals []analysis.ProjectTotal) []projectTotalDTO {
	out := make([]projectTotalDTO, 0, len(totals))
	for _, t := range totals {
		out = append(out, projectTotalDTO{ProjectName: t.ProjectName, TotalKWh: t.TotalKWh})
	}
	return out
}

type correlationPointDTO struct {
	City         string  `json:"city"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Label        string  `json:"label"`
	TemperatureC float64 `json:"temperature_c"`
	HDD17        float64 `json:"hdd17"`
	MonthlyHDD   float64 `json:"monthly_hdd"`
	MonthlyKWh   float64 `json:"monthly_kwh"`
}

func toCorrelationPoints(points []analysis.CorrelationPoint) []correlationPointDTO {
	out := make([]correlationPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, correlationPointDTO{
			City:         p.City,
			Year:         p.Year,
			Month:        p.Month,
			Label:        p.Label,
			TemperatureC: p.TemperatureC,
			HDD17:        p.HDD17,
			MonthlyHDD:   p.MonthlyHDD,
			MonthlyKWh:   p.MonthlyKWh,
		})
	}
	return out
}

type comparisonResponse struct {
	Top    []buildingRow `json:"top"`
	Bottom []buildingRow `json:"bottom"`
}

type reloadResponse struct {
	SnapshotID  string    `json:"snapshot_id"`
	LoadedAt    time.Time `json:"loaded_at"`
	Buildings   int       `json:"buildings"`
	Consumption int       `json:"consumption"`
	Climate     int       `json:"climate"`
	Warnings    []string  `json:"warnings,omitempty"`
}
