package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials/insecure"
)

// createExporter creates an OTLP trace exporter for the configured protocol.
// gRPC is the default.
func createExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case "http/protobuf", "http":
		return otlptracehttp.New(ctx, httpOptions(cfg)...)
	default:
		return otlptracegrpc.New(ctx, grpcOptions(cfg)...)
	}
}

// splitEndpoint strips the scheme and reports whether it was plain http.
func splitEndpoint(endpoint string) (string, bool) {
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return rest, true
	}
	return strings.TrimPrefix(endpoint, "https://"), false
}

func grpcOptions(cfg *Config) []otlptracegrpc.Option {
	var opts []otlptracegrpc.Option
	plain := cfg.Insecure
	if cfg.Endpoint != "" {
		endpoint, isHTTP := splitEndpoint(cfg.Endpoint)
		plain = plain || isHTTP
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	if plain {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	return opts
}

func httpOptions(cfg *Config) []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	plain := cfg.Insecure
	if cfg.Endpoint != "" {
		endpoint, isHTTP := splitEndpoint(cfg.Endpoint)
		plain = plain || isHTTP
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	if plain {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}
