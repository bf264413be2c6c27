package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Бизнес-метрики
	MergeOperationsTotal *prometheus.CounterVec
	MergeDuration        *prometheus.HistogramVec
	DatasetRowsLoaded    *prometheus.GaugeVec
	DatasetReloadsTotal  *prometheus.CounterVec
	ExportsTotal         *prometheus.CounterVec
	CacheLookupsTotal    *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		// HTTP метрики
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Бизнес-метрики
		MergeOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "merge_operations_total",
				Help:      "Total number of consumption merge operations",
			},
			[]string{"scope", "status"},
		),

		MergeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "merge_duration_seconds",
				Help:      "Duration of consumption merge operations",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"scope"},
		),

		DatasetRowsLoaded: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dataset_rows_loaded",
				Help:      "Number of rows in the current dataset snapshot",
			},
			[]string{"table"},
		),

		DatasetReloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dataset_reloads_total",
				Help:      "Total number of dataset reloads",
			},
			[]string{"status"},
		),

		ExportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exports_total",
				Help:      "Total number of report exports",
			},
			[]string{"format", "status"},
		),

		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "Total number of merged-result cache lookups",
			},
			[]string{"result"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("energidash", "")
	}
	return defaultMetrics
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMergeOperation записывает метрики операции агрегации
func (m *Metrics) RecordMergeOperation(scope string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	m.MergeOperationsTotal.WithLabelValues(scope, status).Inc()
	m.MergeDuration.WithLabelValues(scope).Observe(duration.Seconds())
}

// RecordDatasetReload записывает результат перезагрузки датасета
func (m *Metrics) RecordDatasetReload(success bool, buildings, consumption, climate int) {
	status := "success"
	if !success {
		status = "error"
	}
	m.DatasetReloadsTotal.WithLabelValues(status).Inc()

	if success {
		m.DatasetRowsLoaded.WithLabelValues("buildings").Set(float64(buildings))
		m.DatasetRowsLoaded.WithLabelValues("consumption").Set(float64(consumption))
		m.DatasetRowsLoaded.WithLabelValues("climate").Set(float64(climate))
	}
}

// RecordExport записывает метрики экспорта отчёта
func (m *Metrics) RecordExport(format string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ExportsTotal.WithLabelValues(format, status).Inc()
}

// RecordCacheLookup записывает результат обращения к кэшу
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
