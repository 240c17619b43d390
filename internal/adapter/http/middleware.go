package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// NewMetricsMiddleware records request latency and a request counter with an
// outcome attribute for every route.
func NewMetricsMiddleware(meter metric.Meter) (mux.MiddlewareFunc, error) {
	requestLatency, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Latency of HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestCounter, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Number of HTTP requests processed"),
	)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start).Seconds()

			route := routeTemplate(r)
			baseAttrs := []attribute.KeyValue{
				attribute.String("http.route", route),
				attribute.String("http.method", r.Method),
			}

			requestLatency.Record(r.Context(), elapsed, metric.WithAttributes(baseAttrs...))

			counterAttrs := append(baseAttrs,
				attribute.Int("http.status_code", rec.status),
				attribute.String("outcome", outcomeFromStatus(rec.status)),
			)
			requestCounter.Add(r.Context(), 1, metric.WithAttributes(counterAttrs...))
		})
	}, nil
}

// NewLoggingMiddleware logs one line per request.
func NewLoggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unknown"
}

func outcomeFromStatus(status int) string {
	if status < 400 {
		return "success"
	}
	return "failure"
}
