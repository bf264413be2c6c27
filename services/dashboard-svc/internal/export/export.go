// Package export генерирует выгрузки панели в форматах CSV, Excel и PDF
package export

import (
	"context"
	"fmt"
	"time"

	"energidash/pkg/apperror"
	"energidash/pkg/config"
	"energidash/pkg/domain"
	"energidash/services/dashboard-svc/internal/aggregate"
	"energidash/services/dashboard-svc/internal/analysis"
)

// Format формат выгрузки
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ParseFormat разбирает формат из query-параметра.
// Пустая строка означает формат по умолчанию из конфигурации.
func ParseFormat(s, fallback string) (Format, error) {
	if s == "" {
		s = fallback
	}
	switch Format(s) {
	case FormatCSV, FormatExcel, FormatPDF:
		return Format(s), nil
	default:
		return "", apperror.New(apperror.CodeUnknownFormat, "unknown export format: "+s)
	}
}

// Data данные для генерации выгрузки
type Data struct {
	Title       string
	Filter      domain.Filter
	GeneratedAt time.Time

	Merged       []domain.Merged
	KPIs         analysis.KPISummary
	Temperatures []analysis.CityTemperature
	Climate      []aggregate.ClimateJoinRow
}

// Exporter интерфейс генератора выгрузок
type Exporter interface {
	Generate(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
	ContentType() string
}

// New создаёт генератор для формата
func New(format Format, cfg *config.ExportConfig) (Exporter, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatExcel:
		return NewExcelExporter(), nil
	case FormatPDF:
		return NewPDFExporter(cfg), nil
	default:
		return nil, apperror.New(apperror.CodeUnknownFormat, "unknown export format: "+string(format))
	}
}

// Filename имя файла выгрузки в манере исходной панели:
// miljofyrtarn_analyse_{by}_{år}.{ext}
func Filename(filter domain.Filter, format Format) string {
	city := filter.City
	if city == "" {
		city = "alle"
	}
	return fmt.Sprintf("miljofyrtarn_analyse_%s_%s.%s", city, filter.Scope.String(), format)
}

// BaseExporter базовые утилиты для генераторов
type BaseExporter struct{}

// FormatFloat форматирует число с заданной точностью
func (b *BaseExporter) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatTimestamp форматирует время
func (b *BaseExporter) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// temperatureByCity индексирует сводку температур для join по городу
func temperatureByCity(temps []analysis.CityTemperature) map[string]analysis.CityTemperature {
	byCity := make(map[string]analysis.CityTemperature, len(temps))
	for _, t := range temps {
		byCity[t.City] = t
	}
	return byCity
}
