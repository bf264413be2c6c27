package domain

import "math"

// MonthCount количество месячных колонок в таблице потребления
const MonthCount = 12

// Consumption запись о потреблении электроэнергии:
// одна строка на пару (проект, год). Отсутствующие значения
// представлены как NaN и никогда не попадают в выходные таблицы.
type Consumption struct {
	ProjectName string
	City        string
	Year        int
	MonthlyKWh  [MonthCount]float64 // индекс 0 = январь
	TotalKWh    float64             // годовая сумма из источника, NaN если нет
}

// Missing возвращает сентинел отсутствующего значения
func Missing() float64 {
	return math.NaN()
}

// IsMissing проверяет, отсутствует ли значение
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// SumMonthly суммирует присутствующие месячные значения
func (c *Consumption) SumMonthly() float64 {
	var sum float64
	for _, v := range c.MonthlyKWh {
		if !IsMissing(v) {
			sum += v
		}
	}
	return sum
}

// MonthKWh возвращает потребление за месяц (1-12).
// Для некорректного месяца возвращает NaN.
func (c *Consumption) MonthKWh(month int) float64 {
	if month < 1 || month > MonthCount {
		return Missing()
	}
	return c.MonthlyKWh[month-1]
}
