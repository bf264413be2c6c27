package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"energidash/pkg/domain"
)

// MergedCache специализированный кэш для агрегированных метрик зданий.
// Результаты merge детерминированы для фиксированного снимка данных,
// поэтому безопасно кэшируются по (datasetID, filter).
type MergedCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedMergedResult кэшированный результат агрегации
type CachedMergedResult struct {
	DatasetID  string          `json:"dataset_id"`
	Rows       []domain.Merged `json:"rows"`
	ComputedAt time.Time       `json:"computed_at"`
}

// NewMergedCache создаёт кэш агрегированных метрик
func NewMergedCache(cache Cache, defaultTTL time.Duration) *MergedCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &MergedCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат агрегации
func (mc *MergedCache) Get(ctx context.Context, datasetID string, filter domain.Filter) ([]domain.Merged, bool, error) {
	key := BuildMergedKey(datasetID, filter)

	data, err := mc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedMergedResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённый кэш — удаляем, ошибку удаления игнорируем намеренно
		_ = mc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return result.Rows, true, nil
}

// Set сохраняет результат агрегации в кэш
func (mc *MergedCache) Set(ctx context.Context, datasetID string, filter domain.Filter, rows []domain.Merged, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}

	key := BuildMergedKey(datasetID, filter)

	result := CachedMergedResult{
		DatasetID:  datasetID,
		Rows:       rows,
		ComputedAt: time.Now(),
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return mc.cache.Set(ctx, key, data, ttl)
}

// InvalidateDataset удаляет все записи для снимка данных
func (mc *MergedCache) InvalidateDataset(ctx context.Context, datasetID string) error {
	pattern := fmt.Sprintf("merged:%s:*", datasetID)
	if _, err := mc.cache.DeleteByPattern(ctx, pattern); err != nil {
		return err
	}
	pattern = fmt.Sprintf("analysis:*:%s:*", datasetID)
	_, err := mc.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll удаляет весь кэш агрегаций
func (mc *MergedCache) InvalidateAll(ctx context.Context) (int64, error) {
	n1, err := mc.cache.DeleteByPattern(ctx, "merged:*")
	if err != nil {
		return n1, err
	}
	n2, err := mc.cache.DeleteByPattern(ctx, "analysis:*")
	return n1 + n2, err
}
