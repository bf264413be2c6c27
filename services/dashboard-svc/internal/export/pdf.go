package export

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"energidash/pkg/config"
)

// PDFExporter генератор PDF выгрузок
type PDFExporter struct {
	BaseExporter
	cfg *config.ExportConfig
}

// NewPDFExporter создаёт новый генератор
func NewPDFExporter(cfg *config.ExportConfig) *PDFExporter {
	return &PDFExporter{cfg: cfg}
}

// Format возвращает формат генератора
func (g *PDFExporter) Format() Format {
	return FormatPDF
}

// ContentType возвращает MIME-тип выгрузки
func (g *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Стили
var (
	// Цвета
	primaryColor   = &props.Color{Red: 46, Green: 125, Blue: 50}    // #2e7d32
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}     // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}  // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}  // #7f8c8d

	titleStyle = props.Text{
		Size:  22,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  15,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  18,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// Generate генерирует PDF выгрузку
func (g *PDFExporter) Generate(ctx context.Context, data *Data) ([]byte, error) {
	cfg := marotocfg.NewBuilder().
		WithPageNumber().
		WithLeftMargin(g.cfg.PDFLeftMargin).
		WithTopMargin(g.cfg.PDFTopMargin).
		WithRightMargin(g.cfg.PDFRightMargin).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)
	g.addKPIContent(m, data)
	g.addMergedTable(m, data)
	g.addTemperatureTable(m, data)
	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFExporter) addHeader(m core.Maroto, data *Data) {
	m.AddRow(15,
		text.NewCol(12, data.Title, titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Filter: %s", data.Filter.Key()), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generert: %s", g.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	m.AddRow(8)
}

func (g *PDFExporter) addKPIContent(m core.Maroto, data *Data) {
	g.addSection(m, "Nøkkeltall")

	g.addMetricCards(m, []metricCard{
		{Label: "Prosjekter", Value: fmt.Sprintf("%d", data.KPIs.ProjectCount), Highlight: true},
		{Label: "Totalt forbruk (kWh)", Value: g.FormatFloat(data.KPIs.TotalConsumptionKWh, 0), Highlight: true},
	})

	m.AddRow(5)
	g.addMetricCards(m, []metricCard{
		{Label: "Studenter (HE)", Value: g.FormatFloat(data.KPIs.TotalStudents, 0)},
		{Label: "kWh per student", Value: g.FormatFloat(data.KPIs.AvgKWhPerStudent, 1)},
		{Label: "kWh per m²", Value: g.FormatFloat(data.KPIs.AvgKWhPerM2, 1)},
	})
}

func (g *PDFExporter) addMergedTable(m core.Maroto, data *Data) {
	if len(data.Merged) == 0 {
		return
	}

	g.addSection(m, "Forbruk per prosjekt")

	m.AddRow(8,
		text.NewCol(4, "Prosjekt", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "By", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "kWh", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "kWh/student", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "kWh/m²", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for i := range data.Merged {
		r := &data.Merged[i]
		m.AddRow(6,
			text.NewCol(4, r.ProjectName, props.Text{Size: 9}).WithStyle(tableCellStyle),
			text.NewCol(2, r.City, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(r.TotalKWh, 0), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(r.KWhPerStudent, 1), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(r.KWhPerM2, 1), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFExporter) addTemperatureTable(m core.Maroto, data *Data) {
	if len(data.Temperatures) == 0 {
		return
	}

	g.addSection(m, "Temperatur per by")

	for _, t := range data.Temperatures {
		m.AddRow(6,
			text.NewCol(6, t.City, boldStyle),
			text.NewCol(6, fmt.Sprintf("snitt %s°C (min %s, maks %s)",
				g.FormatFloat(t.AvgTemperatureC, 1),
				g.FormatFloat(t.MinTemperatureC, 1),
				g.FormatFloat(t.MaxTemperatureC, 1)), normalStyle),
		)
	}
}

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (g *PDFExporter) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 13
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

func (g *PDFExporter) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

func (g *PDFExporter) addFooter(m core.Maroto, data *Data) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("%s | %s", g.cfg.CompanyName, g.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
