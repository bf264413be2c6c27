// Package loader читает три исходные таблицы (потребление, статика,
// температура) из CSV или XLSX файлов и приводит их к доменным типам.
// Все правила очистки (нормализация городов, алиасы, импутация
// координат) управляются конфигурацией, неявных путей нет.
package loader

import (
	"context"
	"path/filepath"

	"energidash/pkg/apperror"
	"energidash/pkg/config"
	"energidash/pkg/domain"
	"energidash/pkg/logger"
)

// Tables результат полной загрузки
type Tables struct {
	Buildings   []domain.Building
	Consumption []domain.Consumption
	Climate     []domain.Climate
	Warnings    []string
}

// Loader читает и очищает исходные таблицы
type Loader struct {
	cfg *config.DataConfig
}

// New создаёт загрузчик с заданной конфигурацией данных
func New(cfg *config.DataConfig) *Loader {
	return &Loader{cfg: cfg}
}

// Load читает все три таблицы. Схемные ошибки фатальны,
// проблемы качества данных собираются в Warnings.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	validation := apperror.NewValidationErrors()

	consumption, err := l.LoadConsumption(validation)
	if err != nil {
		return nil, err
	}

	buildings, err := l.LoadBuildings(validation)
	if err != nil {
		return nil, err
	}

	climate, err := l.LoadClimate(validation)
	if err != nil {
		return nil, err
	}

	warnings := validation.WarningMessages()
	for _, w := range warnings {
		logger.Log.Warn("data quality issue", "detail", w)
	}

	logger.Log.Info("datasets loaded",
		"buildings", len(buildings),
		"consumption", len(consumption),
		"climate", len(climate),
		"warnings", len(warnings),
	)

	return &Tables{
		Buildings:   buildings,
		Consumption: consumption,
		Climate:     climate,
		Warnings:    warnings,
	}, nil
}

func (l *Loader) path(name string) string {
	return filepath.Join(l.cfg.Dir, name)
}
