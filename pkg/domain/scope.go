package domain

import (
	"fmt"
	"strconv"
)

// YearScope область агрегации по годам: либо конкретный год,
// либо сумма по всем годам. Нулевое значение — все годы.
type YearScope struct {
	year int
	all  bool
}

// AllYears scope, суммирующий потребление по всей истории
func AllYears() YearScope {
	return YearScope{all: true}
}

// ForYear scope одного конкретного года
func ForYear(year int) YearScope {
	return YearScope{year: year}
}

// ParseYearScope разбирает значение фильтра года.
// Пустая строка и "alle" означают все годы.
func ParseYearScope(s string) (YearScope, error) {
	switch s {
	case "", "alle", "Alle", "all":
		return AllYears(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return YearScope{}, fmt.Errorf("invalid year %q: %w", s, err)
	}
	return ForYear(year), nil
}

// All true если scope охватывает все годы
func (s YearScope) All() bool {
	return s.all || s.year == 0
}

// Year возвращает выбранный год; ok=false для "все годы"
func (s YearScope) Year() (int, bool) {
	if s.All() {
		return 0, false
	}
	return s.year, true
}

// Includes проверяет, входит ли год в scope
func (s YearScope) Includes(year int) bool {
	return s.All() || s.year == year
}

// String каноническое строковое представление (участвует в ключах кэша)
func (s YearScope) String() string {
	if s.All() {
		return "alle"
	}
	return strconv.Itoa(s.year)
}
