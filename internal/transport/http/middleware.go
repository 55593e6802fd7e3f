package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// RequestLogger logs basic request details and latency.
func RequestLogger(next http.Handler, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info(
			"request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// recoveryLogger feeds gorilla's RecoveryHandler into slog.
type recoveryLogger struct {
	log *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("handler panic recovered", slog.String("panic", fmt.Sprint(v...)))
}
