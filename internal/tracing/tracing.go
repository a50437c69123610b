// Package tracing wires OpenTelemetry spans around the two hot paths the
// rest of the gateway does not otherwise observe: bot event-loop dispatch
// and inbound API-frame handling.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/zalogw/gateway"

// Config controls where spans are exported. An empty Endpoint disables
// export — Setup then installs nothing, leaving otel's default no-op global
// provider in place, so callers never need to branch on whether tracing is
// configured.
type Config struct {
	Endpoint    string
	ServiceName string
	Insecure    bool
	// Protocol selects the OTLP transport: "grpc" (default) or "http".
	Protocol string
}

// Setup installs a global TracerProvider per cfg and returns a shutdown
// func that must be called (typically via defer) to flush pending spans.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if cfg.Endpoint == "" {
		// otel's default global TracerProvider is already a no-op until one
		// is installed, so there is nothing to set up here.
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "zalo-gateway"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

// newExporter builds the OTLP span exporter for cfg.Protocol. "http" uses
// otlptracehttp; anything else (including the empty string) defaults to
// gRPC, matching config.Default()'s "grpc" setting.
func newExporter(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	if cfg.Protocol == "http" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("tracing: new otlp/http exporter: %w", err)
		}
		return exp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing: new otlp/grpc exporter: %w", err)
	}
	return exp, nil
}

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartEventSpan wraps one bot event-loop dispatch (translate + fan-out
// to every plugin connection) in a span.
func StartEventSpan(ctx context.Context, uin string, frameType int32) (context.Context, trace.Span) {
	return tracer().Start(ctx, "bot.handle_event",
		trace.WithAttributes(
			attribute.String("gateway.uin", uin),
			attribute.Int64("gateway.frame_type", int64(frameType)),
		),
	)
}

// StartDispatchSpan wraps one inbound API frame's handling.
func StartDispatchSpan(ctx context.Context, botID int64, frameType int32) (context.Context, trace.Span) {
	return tracer().Start(ctx, "apidispatch.handle",
		trace.WithAttributes(
			attribute.Int64("gateway.bot_id", botID),
			attribute.Int64("gateway.frame_type", int64(frameType)),
		),
	)
}

// EndWithError records err on span (if non-nil) and ends it. A small
// convenience so every call site doesn't repeat the same three lines.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
