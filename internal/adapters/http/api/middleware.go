package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
	statusUnavailable     = 503
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= statusBadRequest {
			metrics.RecordHTTPError(endpoint, r.Method, getErrorType(wrapped.statusCode))
		}
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode == statusUnavailable:
		return "unavailable"
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// requestContext assigns a request id, echoes it in the response and makes
// it visible to both chi and the logger.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		ctx = logger.WithRequestID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []logger.Field{
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("duration", time.Since(start)),
		}
		if status >= statusInternalError {
			s.logger.Warn(r.Context(), "request failed", fields...)
			return
		}
		s.logger.Debug(r.Context(), "request served", fields...)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
