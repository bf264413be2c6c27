package domain

// Merged денормализованная строка: атрибуты здания плюс агрегированное
// потребление и метрики эффективности. Все числовые поля всегда
// определены — NaN из входных таблиц заменяется нулём.
type Merged struct {
	Building

	TotalKWh      float64 // 0 если нет строк потребления в выбранном scope
	KWhPerStudent float64 // 0 при нулевой вместимости или отсутствии данных
	KWhPerM2      float64 // 0 при нулевой площади или отсутствии данных
}

// HasConsumption показывает, есть ли у здания данные потребления
// в выбранном scope. Нулевые строки исключаются из графиков
// эффективности и цветовых шкал.
func (m *Merged) HasConsumption() bool {
	return m.TotalKWh > 0
}
