package middleware

import (
	"context"
	"net/http"
	"time"

	"sosmed/pkg/logger"
	"sosmed/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDKey contextKey = "requestID"

// RequestLogger tags each request with an id (kept from X-Request-ID when
// the client sends one) and writes an access log line when it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)

		rw := &monitoring.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		logger.Log.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.Status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
