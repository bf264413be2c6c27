package middleware

import (
	"net/http"
	"time"

	"energidash/pkg/logger"
)

// Logging логирует запросы с длительностью и статусом
func Logging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)

			logFields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
				"bytes", rec.bytes,
			}

			if rec.status >= http.StatusInternalServerError {
				logger.Log.Error("request failed", logFields...)
			} else {
				logger.Log.Info("request completed", logFields...)
			}
		})
	}
}
