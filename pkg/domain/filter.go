package domain

// Filter пользовательские фильтры панели: город, проект, год.
// Пустая строка означает "все".
type Filter struct {
	City    string
	Project string
	Scope   YearScope
}

// MatchBuilding проверяет здание против фильтров города и проекта
func (f Filter) MatchBuilding(b *Building) bool {
	if f.City != "" && b.City != f.City {
		return false
	}
	if f.Project != "" && b.ProjectName != f.Project {
		return false
	}
	return true
}

// MatchConsumption проверяет строку потребления против фильтров
func (f Filter) MatchConsumption(c *Consumption) bool {
	if f.City != "" && c.City != f.City {
		return false
	}
	if f.Project != "" && c.ProjectName != f.Project {
		return false
	}
	return f.Scope.Includes(c.Year)
}

// MatchClimate проверяет климатическую запись против фильтра города.
// Год намеренно не учитывается: температурные ряды показываются
// целиком, как в исходной панели.
func (f Filter) MatchClimate(c *Climate) bool {
	return f.City == "" || c.City == f.City
}

// Key каноническое представление фильтра для ключей кэша
func (f Filter) Key() string {
	city := f.City
	if city == "" {
		city = "*"
	}
	project := f.Project
	if project == "" {
		project = "*"
	}
	return city + ":" + project + ":" + f.Scope.String()
}
