package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/core/config"
	"github.com/anoideaopen/tipledger/core/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// InstallTraceProvider sets the global trace provider based on http otlp
// exporter. Without an endpoint a no-op provider is installed.
func InstallTraceProvider(
	settings *config.CollectorEndpoint,
	serviceName string,
) {
	var tracerProvider trace.TracerProvider = trace.NewNoopTracerProvider()

	defer func() {
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	}()

	if settings == nil || len(settings.Endpoint) == 0 {
		return
	}

	opts, err := collectorOptions(settings)
	if err != nil {
		logger.Logger().Errorf("tracing collector: %v", err)
		return
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		logger.Logger().Errorf("creating OTLP trace exporter: %v", err)
		return
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName)))
	if err != nil {
		logger.Logger().Errorf("creating resource: %v", err)
		return
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r))
}

// collectorOptions builds the otlp http client options for the collector.
// TLSCA holds base64 encoded PEM certificates; without it the connection is
// plain http.
func collectorOptions(settings *config.CollectorEndpoint) ([]otlptracehttp.Option, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(settings.Endpoint)}
	if settings.AuthorizationHeaderKey != "" {
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{
			settings.AuthorizationHeaderKey: settings.AuthorizationHeaderValue,
		}))
	}
	if settings.TLSCA == "" {
		return append(opts, otlptracehttp.WithInsecure()), nil
	}

	pem, err := base64.StdEncoding.DecodeString(settings.TLSCA)
	if err != nil {
		return nil, fmt.Errorf("decode tls ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("no CA certificates in tls ca")
	}
	return append(opts, otlptracehttp.WithTLSClientConfig(&tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	})), nil
}
