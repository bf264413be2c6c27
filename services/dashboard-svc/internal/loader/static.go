package loader

import (
	"fmt"

	"energidash/pkg/apperror"
	"energidash/pkg/domain"
)

// LoadBuildings читает статическую таблицу зданий. Оставляются
// только проекты отфильтрованного типа (по умолчанию studentboliger).
// Здания без координат получают базовые координаты города с малым
// смещением по индексу строки; если город неизвестен, строка
// отбрасывается с warning.
func (l *Loader) LoadBuildings(validation *apperror.ValidationErrors) ([]domain.Building, error) {
	t, err := readTable(l.path(l.cfg.StaticFile), "static", ',')
	if err != nil {
		return nil, err
	}

	if err := t.requireColumns("project_name", "city", "project_type", "total_HE", "Total_BRA"); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	buildings := make([]domain.Building, 0, len(t.rows))
	for i, row := range t.rows {
		if l.cfg.ProjectTypeFilter != "" && t.cell(row, "project_type") != l.cfg.ProjectTypeFilter {
			continue
		}

		name := t.cell(row, "project_name")
		if name == "" {
			validation.AddWarning(apperror.CodeBadValue,
				fmt.Sprintf("static row %d: empty project_name, row skipped", i+2))
			continue
		}
		if seen[name] {
			validation.AddWarning(apperror.CodeDuplicateBuilding,
				fmt.Sprintf("static row %d: duplicate project %q, keeping first", i+2, name))
			continue
		}

		b := domain.Building{
			ProjectName:     name,
			City:            domain.NormalizeCity(t.cell(row, "city")),
			ProjectType:     t.cell(row, "project_type"),
			Lat:             t.floatCell(row, "lat"),
			Lon:             t.floatCell(row, "lon"),
			YearBuilt:       t.intCell(row, "year_built"),
			StudentCapacity: zeroIfMissing(t.floatCell(row, "total_HE")),
			FloorAreaM2:     zeroIfMissing(t.floatCell(row, "Total_BRA")),
		}

		if domain.IsMissing(b.Lat) || domain.IsMissing(b.Lon) {
			coords, ok := l.cfg.CityCoordinates[b.City]
			if !ok {
				validation.AddWarning(apperror.CodeMissingCoords,
					fmt.Sprintf("static row %d: project %q has no coordinates and city %q is unknown, row dropped", i+2, name, b.City))
				continue
			}
			// Смещение разводит маркеры одного города на карте
			offset := float64(i%10) * 0.001
			b.Lat = coords.Lat + offset
			b.Lon = coords.Lon + offset
		}

		seen[name] = true
		buildings = append(buildings, b)
	}

	return buildings, nil
}

func zeroIfMissing(v float64) float64 {
	if domain.IsMissing(v) {
		return 0
	}
	return v
}
