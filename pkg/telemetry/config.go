// Package telemetry provides OpenTelemetry integration for tracing registry
// maintenance and persistence.
package telemetry

import (
	"os"
	"strings"

	"github.com/objectregistry/pkg/config"
)

// Config holds OpenTelemetry configuration.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP collector endpoint.
	Endpoint string

	// Protocol is the OTLP protocol (grpc or http/protobuf).
	Protocol string

	// Headers contains custom headers for the exporter, e.g. Authorization.
	Headers map[string]string

	Insecure bool

	// Sampler is one of always_on, always_off, traceidratio,
	// parentbased_always_on, parentbased_always_off, parentbased_traceidratio.
	Sampler    string
	SamplerArg string

	ResourceAttrs map[string]string
}

// FromSettings builds a Config from the file configuration and then applies
// the standard OTEL_* environment variables on top.
func FromSettings(s config.TelemetryConfig, version string) *Config {
	cfg := &Config{
		Enabled:        s.Enabled,
		ServiceName:    s.ServiceName,
		ServiceVersion: version,
		Endpoint:       s.Endpoint,
		Protocol:       s.Protocol,
		Headers:        map[string]string{},
		Insecure:       s.Insecure,
		Sampler:        s.Sampler,
		SamplerArg:     s.SamplerArg,
		ResourceAttrs:  map[string]string{},
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "objreg"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "unknown"
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "grpc"
	}
	applyEnv(cfg)
	return cfg
}

// applyEnv overrides cfg with any OTEL_* variables that are set.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("OTEL_ENABLED"); ok {
		cfg.Enabled = strings.EqualFold(v, "true")
	}
	setIfPresent(&cfg.ServiceName, "OTEL_SERVICE_NAME")
	setIfPresent(&cfg.ServiceVersion, "OTEL_SERVICE_VERSION")
	setIfPresent(&cfg.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setIfPresent(&cfg.Protocol, "OTEL_EXPORTER_OTLP_PROTOCOL")
	if v, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_INSECURE"); ok {
		cfg.Insecure = strings.EqualFold(v, "true")
	}
	setIfPresent(&cfg.Sampler, "OTEL_TRACES_SAMPLER")
	setIfPresent(&cfg.SamplerArg, "OTEL_TRACES_SAMPLER_ARG")

	for k, v := range parseKeyValuePairs(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")) {
		cfg.Headers[k] = v
	}
	for k, v := range parseKeyValuePairs(os.Getenv("OTEL_RESOURCE_ATTRIBUTES")) {
		cfg.ResourceAttrs[k] = v
	}
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// parseKeyValuePairs parses "key1=value1,key2=value2". Values may contain '='.
func parseKeyValuePairs(s string) map[string]string {
	result := make(map[string]string)
	if s == "" {
		return result
	}

	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		result[key] = strings.TrimSpace(value)
	}
	return result
}
