package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"energidash/pkg/logger"
	"energidash/pkg/ratelimit"
)

// RateLimit ограничивает частоту запросов по ключу клиента.
// При превышении лимита отвечает 429 с заголовками X-RateLimit-*.
func RateLimit(limiter ratelimit.Limiter, extractor ratelimit.KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractor(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// Лимитер недоступен — пропускаем запрос
				logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			info, infoErr := limiter.GetInfo(r.Context(), key)
			if infoErr == nil {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
			}

			if !allowed {
				if infoErr == nil && info.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck // response already committed
					"code":    "RATE_LIMITED",
					"message": "too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
