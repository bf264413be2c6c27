package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVExporter генератор CSV выгрузок
type CSVExporter struct {
	BaseExporter
}

// NewCSVExporter создаёт новый генератор
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format возвращает формат генератора
func (g *CSVExporter) Format() Format {
	return FormatCSV
}

// ContentType возвращает MIME-тип выгрузки
func (g *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Generate генерирует CSV выгрузку: объединённая таблица зданий
// с температурной сводкой их городов.
func (g *CSVExporter) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{
		"project_name", "city", "project_type", "year_built",
		"lat", "lon", "total_he", "total_bra",
		"year_total_kwh", "kwh_per_student", "kwh_per_m2",
		"avg_temperature", "min_temperature", "max_temperature",
	})

	temps := temperatureByCity(data.Temperatures)

	for i := range data.Merged {
		m := &data.Merged[i]

		avgTemp, minTemp, maxTemp := "", "", ""
		if t, ok := temps[m.City]; ok {
			avgTemp = g.FormatFloat(t.AvgTemperatureC, 1)
			minTemp = g.FormatFloat(t.MinTemperatureC, 1)
			maxTemp = g.FormatFloat(t.MaxTemperatureC, 1)
		}

		cw.Write([]string{
			m.ProjectName,
			m.City,
			m.ProjectType,
			strconv.Itoa(m.YearBuilt),
			g.FormatFloat(m.Lat, 6),
			g.FormatFloat(m.Lon, 6),
			g.FormatFloat(m.StudentCapacity, 0),
			g.FormatFloat(m.FloorAreaM2, 0),
			g.FormatFloat(m.TotalKWh, 0),
			g.FormatFloat(m.KWhPerStudent, 2),
			g.FormatFloat(m.KWhPerM2, 2),
			avgTemp,
			minTemp,
			maxTemp,
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}
