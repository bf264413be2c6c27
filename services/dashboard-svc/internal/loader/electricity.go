package loader

import (
	"fmt"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
)

// monthColumns имена месячных колонок в файле потребления.
// Двойные подчёркивания и нижний регистр мая — причуды источника,
// сохраняются как есть.
var monthColumns = [domain.MonthCount]string{
	"Jan_KwH", "Feb_KwH", "Mar_KwH", "Apr__KwH", "may__KwH", "Jun_KwH",
	"Jul_KwH", "Aug_KwH", "Sep_KwH", "Oct_KwH", "Nov_KwH", "Dec_KwH",
}

// LoadConsumption читает таблицу потребления электроэнергии.
// Файл разделён точкой с запятой. Города нормализуются и проходят
// через таблицу алиасов из конфигурации.
func (l *Loader) LoadConsumption(validation *apperror.ValidationErrors) ([]domain.Consumption, error) {
	t, err := readTable(l.path(l.cfg.ElectricityFile), "electricity", ';')
	if err != nil {
		return nil, err
	}

	required := []string{"project_name", "City", "Year", "Year_total_KwH"}
	required = append(required, monthColumns[:]...)
	if err := t.requireColumns(required...); err != nil {
		return nil, err
	}

	type projectYear struct {
		name string
		year int
	}
	seen := make(map[projectYear]bool)

	consumption := make([]domain.Consumption, 0, len(t.rows))
	for i, row := range t.rows {
		name := t.cell(row, "project_name")
		if name == "" {
			validation.AddWarning(apperror.CodeBadValue,
				fmt.Sprintf("electricity row %d: empty project_name, row skipped", i+2))
			continue
		}

		key := projectYear{name, t.intCell(row, "Year")}
		if seen[key] {
			validation.AddWarning(apperror.CodeDuplicateYearRow,
				fmt.Sprintf("electricity row %d: duplicate (%q, %d), keeping first", i+2, key.name, key.year))
			continue
		}
		seen[key] = true

		c := domain.Consumption{
			ProjectName: name,
			City:        l.canonicalCity(t.cell(row, "City")),
			Year:        t.intCell(row, "Year"),
			TotalKWh:    t.floatCell(row, "Year_total_KwH"),
		}
		for m, col := range monthColumns {
			c.MonthlyKWh[m] = t.floatCell(row, col)
		}

		consumption = append(consumption, c)
	}

	return consumption, nil
}

// canonicalCity нормализует название города и применяет алиасы
// (например, JAKOBSLI учитывается как TRONDHEIM)
func (l *Loader) canonicalCity(city string) string {
	canonical := domain.NormalizeCity(city)
	if alias, ok := l.cfg.CityAliases[canonical]; ok {
		return alias
	}
	return canonical
}
