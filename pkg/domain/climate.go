package domain

// Climate месячное наблюдение температуры и градусо-дней для города.
// HDD17 — heating degree days с базой 17°C.
type Climate struct {
	City         string
	Year         int
	Month        int // 1-12
	TemperatureC float64
	HDD17        float64
	MonthlyHDD   float64
	Label        string // отображаемая метка периода, например "aug/2020"
}

// MonthLabels нормативные норвежские названия месяцев,
// используются в графиках и экспорте
var MonthLabels = [MonthCount]string{
	"Januar", "Februar", "Mars", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Desember",
}
