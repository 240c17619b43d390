// Package observability wires the OpenTelemetry meter and tracer providers
// and exposes the Prometheus metrics handler.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config carries what the setup needs. Trace export is off unless
// TracingEndpoint is set; metrics are always collected and exposed via
// MetricsHandler.
type Config struct {
	ServiceName     string
	TracingEndpoint string
	TracingInsecure bool
}

// Provider owns everything Setup installed and knows how to tear it down.
type Provider struct {
	registry *prometheus.Registry
	closers  []func(context.Context) error
}

// Setup installs the global OpenTelemetry meter and tracer providers. The
// meter feeds a private Prometheus registry; the tracer exports over OTLP/HTTP
// only when an endpoint is configured, otherwise spans stay in-process.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("observability: service name required")
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	p := &Provider{registry: prometheus.NewRegistry()}

	promExporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)
	p.closers = append(p.closers, meterProvider.Shutdown)

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if endpoint := strings.TrimSpace(cfg.TracingEndpoint); endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, traceExportOptions(endpoint, cfg.TracingInsecure)...)
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)
	p.closers = append(p.closers, tracerProvider.Shutdown)

	return p, nil
}

// traceExportOptions turns a collector endpoint (host:port or full URL) into
// otlptracehttp options.
func traceExportOptions(endpoint string, insecure bool) []otlptracehttp.Option {
	var opts []otlptracehttp.Option

	if strings.Contains(endpoint, "://") {
		if parsed, err := url.Parse(endpoint); err == nil {
			if parsed.Host != "" {
				endpoint = parsed.Host
			}
			if path := parsed.Path; path != "" && path != "/" {
				opts = append(opts, otlptracehttp.WithURLPath(path))
			}
			if parsed.Scheme == "http" {
				insecure = true
			}
		}
	}

	opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// MetricsHandler serves the Prometheus scrape endpoint.
func (p *Provider) MetricsHandler() http.Handler {
	if p == nil || p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops every installed provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, closeFn := range p.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
