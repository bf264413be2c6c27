package domain

import (
	"sort"
	"time"
)

// Dataset снапшот трёх загруженных таблиц. После публикации
// снапшот неизменяем; ID меняется при каждой перезагрузке,
// что инвалидирует производные ключи кэша.
type Dataset struct {
	ID          string // uuid снапшота
	LoadedAt    time.Time
	Buildings   []Building
	Consumption []Consumption
	Climate     []Climate
}

// Cities отсортированный список уникальных городов зданий
func (d *Dataset) Cities() []string {
	seen := make(map[string]bool)
	var cities []string
	for i := range d.Buildings {
		city := d.Buildings[i].City
		if city != "" && !seen[city] {
			seen[city] = true
			cities = append(cities, city)
		}
	}
	sort.Strings(cities)
	return cities
}

// Projects отсортированный список имён проектов
func (d *Dataset) Projects() []string {
	names := make([]string, 0, len(d.Buildings))
	for i := range d.Buildings {
		names = append(names, d.Buildings[i].ProjectName)
	}
	sort.Strings(names)
	return names
}

// Years отсортированный список лет, встречающихся в таблице потребления
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for i := range d.Consumption {
		year := d.Consumption[i].Year
		if year != 0 && !seen[year] {
			seen[year] = true
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}
