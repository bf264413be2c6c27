package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
)

// table разобранная таблица: заголовок и строки.
// Поиск колонок нечувствителен к пробелам по краям имён.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

// readTable читает таблицу из CSV или XLSX файла, формат
// определяется расширением. CSV с запятой или точкой с запятой
// в качестве разделителя, допускается UTF-8 BOM.
func readTable(path, name string, comma rune) (*table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeFileNotFound, "data file not found").
			WithDetails("path", path).
			WithDetails("table", name)
	}

	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path, comma)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeBadHeader, "failed to parse data file").
			WithDetails("path", path).
			WithDetails("table", name)
	}

	if len(records) == 0 {
		return nil, apperror.New(apperror.CodeEmptyDataset, "data file has no header row").
			WithDetails("table", name)
	}

	columns := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		columns[strings.TrimSpace(stripBOM(col))] = i
	}

	return &table{
		name:    name,
		columns: columns,
		rows:    records[1:],
	}, nil
}

func readCSV(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	return r.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.New(apperror.CodeEmptyDataset, "workbook has no sheets")
	}

	return f.GetRows(sheets[0])
}

// stripBOM убирает UTF-8 BOM, который pandas-экспорт оставляет
// в первом имени колонки
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// requireColumns проверяет наличие обязательных колонок
func (t *table) requireColumns(names ...string) error {
	for _, name := range names {
		if _, ok := t.columns[name]; !ok {
			return apperror.MissingColumn(t.name, name)
		}
	}
	return nil
}

// cell возвращает значение ячейки по имени колонки.
// Пустая строка для отсутствующей колонки или короткой строки.
func (t *table) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// floatCell парсит число; нечисловые и пустые значения становятся NaN,
// как при pandas to_numeric(errors='coerce')
func (t *table) floatCell(row []string, column string) float64 {
	s := t.cell(row, column)
	if s == "" {
		return domain.Missing()
	}
	// Норвежские выгрузки иногда используют запятую как десятичный знак
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Missing()
	}
	return v
}

// intCell парсит целое; при ошибке возвращает 0
func (t *table) intCell(row []string, column string) int {
	v := t.floatCell(row, column)
	if domain.IsMissing(v) {
		return 0
	}
	return int(v)
}
