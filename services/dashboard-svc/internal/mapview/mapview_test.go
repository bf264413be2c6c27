package mapview

import (
	"testing"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
)

func row(name, city string, lat, lon, total, perStudent, perM2 float64) domain.Merged {
	m := domain.Merged{
		TotalKWh:      total,
		KWhPerStudent: perStudent,
		KWhPerM2:      perM2,
	}
	m.ProjectName = name
	m.City = city
	m.Lat = lat
	m.Lon = lon
	return m
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMetric
		wantErr bool
	}{
		{"", MetricKWhPerM2, false},
		{"kwh_per_m2", MetricKWhPerM2, false},
		{"kwh_per_student", MetricKWhPerStudent, false},
		{"kwh_per_room", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMetric(%q): expected error", tt.in)
			} else if !apperror.Is(err, apperror.CodeUnknownMetric) {
				t.Errorf("ParseMetric(%q): wrong code: %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMetric(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMetric(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkers_ColorByPerM2(t *testing.T) {
	tests := []struct {
		name  string
		perM2 float64
		total float64
		want  string
	}{
		{"high", 60, 500000, "red"},
		{"upper bound of medium", 50, 500000, "yellow"},
		{"medium", 35, 500000, "yellow"},
		{"lower bound of medium", 30, 500000, "yellow"},
		{"low", 20, 500000, "green"},
		{"no consumption", 0, 0, "black"},
	}

	for _, tt := range tests {
		merged := []domain.Merged{row("P", "TRONDHEIM", 63, 10, tt.total, 0, tt.perM2)}
		markers := Markers(merged, MetricKWhPerM2)
		if markers[0].Color != tt.want {
			t.Errorf("%s: color = %q, want %q", tt.name, markers[0].Color, tt.want)
		}
	}
}

func TestMarkers_ColorByPerStudent(t *testing.T) {
	tests := []struct {
		name       string
		perStudent float64
		total      float64
		want       string
	}{
		{"high", 5000, 500000, "red"},
		{"medium", 3000, 500000, "yellow"},
		{"low", 1500, 500000, "green"},
		{"no consumption", 0, 0, "black"},
	}

	for _, tt := range tests {
		merged := []domain.Merged{row("P", "TRONDHEIM", 63, 10, tt.total, tt.perStudent, 0)}
		markers := Markers(merged, MetricKWhPerStudent)
		if markers[0].Color != tt.want {
			t.Errorf("%s: color = %q, want %q", tt.name, markers[0].Color, tt.want)
		}
	}
}

func TestMarkers_RadiusBuckets(t *testing.T) {
	tests := []struct {
		total float64
		want  int
	}{
		{0, 5},
		{50_000, 7},
		{100_000, 7},
		{500_000, 10},
		{1_000_000, 10},
		{2_000_000, 15},
	}

	for _, tt := range tests {
		merged := []domain.Merged{row("P", "TRONDHEIM", 63, 10, tt.total, 10, 10)}
		markers := Markers(merged, MetricKWhPerM2)
		if markers[0].Radius != tt.want {
			t.Errorf("total %v: radius = %d, want %d", tt.total, markers[0].Radius, tt.want)
		}
	}
}

func TestCenter(t *testing.T) {
	merged := []domain.Merged{
		row("A", "TRONDHEIM", 63.0, 10.0, 0, 0, 0),
		row("B", "TRONDHEIM", 64.0, 11.0, 0, 0, 0),
	}

	lat, lon := Center(merged)
	if lat != 63.5 || lon != 10.5 {
		t.Errorf("Center = %v, %v; want 63.5, 10.5", lat, lon)
	}
}

func TestCenter_EmptyFallsBackToDefault(t *testing.T) {
	lat, lon := Center(nil)
	if lat != DefaultCenterLat || lon != DefaultCenterLon {
		t.Errorf("Center = %v, %v; want default", lat, lon)
	}
}

func TestCityOverview(t *testing.T) {
	merged := []domain.Merged{
		row("A", "TRONDHEIM", 63.0, 10.0, 1_500_000, 0, 0),
		row("B", "TRONDHEIM", 64.0, 11.0, 500_000, 0, 0),
		row("C", "GJØVIK", 60.8, 10.7, 50_000, 0, 0),
	}

	overview := CityOverview(merged)

	if len(overview) != 2 {
		t.Fatalf("len = %d, want 2", len(overview))
	}
	if overview[0].City != "GJØVIK" || overview[1].City != "TRONDHEIM" {
		t.Errorf("order = %q, %q", overview[0].City, overview[1].City)
	}

	trh := overview[1]
	if trh.ProjectCount != 2 {
		t.Errorf("ProjectCount = %d, want 2", trh.ProjectCount)
	}
	if trh.TotalKWh != 2_000_000 {
		t.Errorf("TotalKWh = %v, want 2000000", trh.TotalKWh)
	}
	if trh.Lat != 63.5 || trh.Lon != 10.5 {
		t.Errorf("coords = %v, %v; want averaged 63.5, 10.5", trh.Lat, trh.Lon)
	}
	if trh.Radius != 20 {
		t.Errorf("Radius = %v, want 20", trh.Radius)
	}

	// маленький город прижимается к нижней границе размера
	if overview[0].Radius != 10 {
		t.Errorf("GJØVIK radius = %v, want 10", overview[0].Radius)
	}
}

func TestCityOverview_RadiusClamped(t *testing.T) {
	merged := []domain.Merged{
		row("Huge", "TRONDHEIM", 63, 10, 10_000_000, 0, 0),
	}

	overview := CityOverview(merged)
	if overview[0].Radius != 30 {
		t.Errorf("Radius = %v, want clamped 30", overview[0].Radius)
	}
}
