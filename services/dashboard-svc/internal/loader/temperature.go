package loader

import (
	"fmt"
	"strings"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
)

// LoadClimate читает таблицу температурных наблюдений.
// Колонка Time хранит период в виде "aug.20"; для отображения
// она разворачивается в "aug/2020". Колонки градусо-дней
// необязательны, при отсутствии значения остаются NaN.
func (l *Loader) LoadClimate(validation *apperror.ValidationErrors) ([]domain.Climate, error) {
	t, err := readTable(l.path(l.cfg.TemperatureFile), "temperature", ',')
	if err != nil {
		return nil, err
	}

	if err := t.requireColumns("City", "Time", "Year", "Month", "Temperature"); err != nil {
		return nil, err
	}

	climate := make([]domain.Climate, 0, len(t.rows))
	for i, row := range t.rows {
		month := t.intCell(row, "Month")
		if month < 1 || month > domain.MonthCount {
			validation.AddWarning(apperror.CodeBadValue,
				fmt.Sprintf("temperature row %d: month %d out of range, row skipped", i+2, month))
			continue
		}

		climate = append(climate, domain.Climate{
			City:         l.canonicalCity(t.cell(row, "City")),
			Year:         t.intCell(row, "Year"),
			Month:        month,
			TemperatureC: t.floatCell(row, "Temperature"),
			HDD17:        t.floatCell(row, "HDD_17"),
			MonthlyHDD:   t.floatCell(row, "Monthly_HDD"),
			Label:        expandTimeLabel(t.cell(row, "Time")),
		})
	}

	return climate, nil
}

// expandTimeLabel превращает "aug.20" в "aug/2020"
func expandTimeLabel(label string) string {
	return strings.Replace(label, ".", "/20", 1)
}
