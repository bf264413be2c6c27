package domain

import "strings"

// Building статическая запись о студенческом жилом комплексе.
// ProjectName уникален в пределах таблицы и служит ключом join'а
// с таблицей потребления.
type Building struct {
	ProjectName     string
	City            string // каноническая форма: upper-case, trimmed
	ProjectType     string
	Lat             float64
	Lon             float64
	YearBuilt       int     // 0 = неизвестен
	StudentCapacity float64 // total_HE в исходных данных
	FloorAreaM2     float64 // Total_BRA в исходных данных
}

// NormalizeCity приводит название города к канонической форме,
// общей для всех трёх таблиц.
func NormalizeCity(city string) string {
	return strings.ToUpper(strings.TrimSpace(city))
}
