package middleware

import (
	"net/http"
	"strconv"
	"time"

	"energidash/pkg/metrics"
)

// Metrics записывает Prometheus-метрики HTTP запросов.
// В качестве path используется шаблон маршрута ServeMux,
// чтобы не плодить кардинальность на параметрах.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := metrics.Get()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.Pattern
			if path == "" {
				path = r.URL.Path
			}
			m.RecordHTTPRequest(r.Method, path, strconv.Itoa(rec.status), time.Since(start))
		})
	}
}
