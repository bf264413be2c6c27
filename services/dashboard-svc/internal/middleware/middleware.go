// Package middleware содержит HTTP middleware панели:
// recovery, логирование, метрики, rate limiting и CORS.
package middleware

import "net/http"

// Middleware обёртка над http.Handler
type Middleware func(http.Handler) http.Handler

// Chain применяет middleware в порядке перечисления:
// первый элемент оказывается внешним.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusRecorder запоминает статус ответа для логов и метрик
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
