package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mackflow-bridge/internal/common/logger"
	"mackflow-bridge/internal/common/metrics"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID honors an inbound x-request-id header and mints a fresh UUID
// otherwise. The id is echoed on the response and stored in the request
// context for handlers and logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("x-request-id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("x-request-id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id stored by the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger emits one structured line per request and feeds the latency
// histogram.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			metrics.RequestDuration.WithLabelValues(r.URL.Path).Observe(duration.Seconds())
			log.Info("request handled", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     recorder.status,
				"durationMs": duration.Milliseconds(),
				"requestId":  GetRequestID(r.Context()),
			})
		})
	}
}
