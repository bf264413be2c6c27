package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter генератор Excel выгрузок
type ExcelExporter struct {
	BaseExporter
}

// NewExcelExporter создаёт новый генератор
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Format возвращает формат генератора
func (g *ExcelExporter) Format() Format {
	return FormatExcel
}

// ContentType возвращает MIME-тип выгрузки
func (g *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Generate генерирует Excel выгрузку: листы с ключевыми показателями,
// объединённой таблицей, температурной сводкой и климатическим рядом.
func (g *ExcelExporter) Generate(ctx context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	g.writeSummarySheet(f, data)
	g.writeMergedSheet(f, data)
	g.writeTemperatureSheet(f, data)
	g.writeClimateSheet(f, data)

	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *ExcelExporter) headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func (g *ExcelExporter) writeSummarySheet(f *excelize.File, data *Data) {
	sheetName := "Nokkeltall"
	f.NewSheet(sheetName)

	style := g.headerStyle(f)
	row := 1

	f.SetCellValue(sheetName, cellAddr("A", row), data.Title)
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("B", row))
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Generert")
	f.SetCellValue(sheetName, cellAddr("B", row), g.FormatTimestamp(data.GeneratedAt))
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Filter")
	f.SetCellValue(sheetName, cellAddr("B", row), data.Filter.Key())
	row += 2

	f.SetCellValue(sheetName, cellAddr("A", row), "Indikator")
	f.SetCellValue(sheetName, cellAddr("B", row), "Verdi")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), style)
	row++

	kpis := []struct {
		label string
		value any
	}{
		{"Totalt antall prosjekter", data.KPIs.ProjectCount},
		{"Totalt forbruk (kWh)", data.KPIs.TotalConsumptionKWh},
		{"Antall studenter (HE)", data.KPIs.TotalStudents},
		{"Totalt areal (m2)", data.KPIs.TotalFloorAreaM2},
		{"kWh per student", data.KPIs.AvgKWhPerStudent},
		{"kWh per m2", data.KPIs.AvgKWhPerM2},
	}
	for _, kpi := range kpis {
		f.SetCellValue(sheetName, cellAddr("A", row), kpi.label)
		f.SetCellValue(sheetName, cellAddr("B", row), kpi.value)
		row++
	}
}

func (g *ExcelExporter) writeMergedSheet(f *excelize.File, data *Data) {
	sheetName := "Forbruk"
	f.NewSheet(sheetName)

	headers := []string{
		"Prosjekt", "By", "Type", "Byggeår", "Lat", "Lon",
		"Studenter (HE)", "Areal (BRA)", "Årsforbruk (kWh)",
		"kWh per student", "kWh per m2",
	}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddrByIndex(i, 1), h)
	}
	f.SetCellStyle(sheetName, cellAddrByIndex(0, 1), cellAddrByIndex(len(headers)-1, 1), g.headerStyle(f))

	for i := range data.Merged {
		m := &data.Merged[i]
		row := i + 2
		f.SetCellValue(sheetName, cellAddrByIndex(0, row), m.ProjectName)
		f.SetCellValue(sheetName, cellAddrByIndex(1, row), m.City)
		f.SetCellValue(sheetName, cellAddrByIndex(2, row), m.ProjectType)
		f.SetCellValue(sheetName, cellAddrByIndex(3, row), m.YearBuilt)
		f.SetCellValue(sheetName, cellAddrByIndex(4, row), m.Lat)
		f.SetCellValue(sheetName, cellAddrByIndex(5, row), m.Lon)
		f.SetCellValue(sheetName, cellAddrByIndex(6, row), m.StudentCapacity)
		f.SetCellValue(sheetName, cellAddrByIndex(7, row), m.FloorAreaM2)
		f.SetCellValue(sheetName, cellAddrByIndex(8, row), m.TotalKWh)
		f.SetCellValue(sheetName, cellAddrByIndex(9, row), m.KWhPerStudent)
		f.SetCellValue(sheetName, cellAddrByIndex(10, row), m.KWhPerM2)
	}
}

func (g *ExcelExporter) writeTemperatureSheet(f *excelize.File, data *Data) {
	sheetName := "Temperatur"
	f.NewSheet(sheetName)

	headers := []string{"By", "Snitt (°C)", "Min (°C)", "Maks (°C)"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddrByIndex(i, 1), h)
	}
	f.SetCellStyle(sheetName, cellAddrByIndex(0, 1), cellAddrByIndex(len(headers)-1, 1), g.headerStyle(f))

	for i, t := range data.Temperatures {
		row := i + 2
		f.SetCellValue(sheetName, cellAddrByIndex(0, row), t.City)
		f.SetCellValue(sheetName, cellAddrByIndex(1, row), t.AvgTemperatureC)
		f.SetCellValue(sheetName, cellAddrByIndex(2, row), t.MinTemperatureC)
		f.SetCellValue(sheetName, cellAddrByIndex(3, row), t.MaxTemperatureC)
	}
}

func (g *ExcelExporter) writeClimateSheet(f *excelize.File, data *Data) {
	sheetName := "Klima"
	f.NewSheet(sheetName)

	headers := []string{"Periode", "Temperatur (°C)", "Graddager", "Forbruk (kWh)"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddrByIndex(i, 1), h)
	}
	f.SetCellStyle(sheetName, cellAddrByIndex(0, 1), cellAddrByIndex(len(headers)-1, 1), g.headerStyle(f))

	for i, c := range data.Climate {
		row := i + 2
		f.SetCellValue(sheetName, cellAddrByIndex(0, row), c.Label)
		f.SetCellValue(sheetName, cellAddrByIndex(1, row), c.TemperatureC)
		f.SetCellValue(sheetName, cellAddrByIndex(2, row), c.HDD17)
		f.SetCellValue(sheetName, cellAddrByIndex(3, row), c.TotalKWh)
	}
}

// cellAddr возвращает адрес ячейки
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// cellAddrByIndex возвращает адрес ячейки по индексам (0 -> A1)
func cellAddrByIndex(colIndex, row int) string {
	name, _ := excelize.ColumnNumberToName(colIndex + 1)
	return fmt.Sprintf("%s%d", name, row)
}
