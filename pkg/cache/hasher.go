package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"energidash/pkg/domain"
)

// FilterHash вычисляет хеш фильтра для использования как ключ кэша
func FilterHash(filter domain.Filter) string {
	data := []byte(filter.Key())
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// BuildMergedKey строит ключ кэша для агрегированных метрик.
// Ключ включает ID снимка данных, поэтому после перезагрузки
// датасета старые записи становятся недостижимыми.
func BuildMergedKey(datasetID string, filter domain.Filter) string {
	return fmt.Sprintf("merged:%s:%s", datasetID, FilterHash(filter))
}

// BuildAnalysisKey строит ключ кэша для производных аналитик
// (KPI, графики, сравнения) по имени аналитики
func BuildAnalysisKey(datasetID, analysis string, filter domain.Filter) string {
	return fmt.Sprintf("analysis:%s:%s:%s", analysis, datasetID, FilterHash(filter))
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
