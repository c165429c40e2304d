package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/objectregistry/pkg/config"
)

var otelEnv = []string{
	"OTEL_ENABLED",
	"OTEL_SERVICE_NAME",
	"OTEL_SERVICE_VERSION",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_PROTOCOL",
	"OTEL_EXPORTER_OTLP_HEADERS",
	"OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_TRACES_SAMPLER",
	"OTEL_TRACES_SAMPLER_ARG",
	"OTEL_RESOURCE_ATTRIBUTES",
}

// clearOtelEnv blanks every OTEL_* variable for the duration of the test.
func clearOtelEnv(t *testing.T) {
	t.Helper()
	for _, k := range otelEnv {
		t.Setenv(k, "")
	}
}

func TestFromSettings_Defaults(t *testing.T) {
	clearOtelEnv(t)

	cfg := FromSettings(config.TelemetryConfig{}, "")

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "objreg", cfg.ServiceName)
	assert.Equal(t, "unknown", cfg.ServiceVersion)
	assert.Equal(t, "grpc", cfg.Protocol)
	assert.Empty(t, cfg.Headers)
}

func TestFromSettings_FileValues(t *testing.T) {
	clearOtelEnv(t)

	cfg := FromSettings(config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "registry-sim",
		Endpoint:    "collector:4317",
		Protocol:    "http",
		Insecure:    true,
		Sampler:     "traceidratio",
		SamplerArg:  "0.5",
	}, "1.2.3")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "registry-sim", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.Equal(t, "http", cfg.Protocol)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, "traceidratio", cfg.Sampler)
}

func TestFromSettings_EnvOverrides(t *testing.T) {
	clearOtelEnv(t)
	t.Setenv("OTEL_ENABLED", "TRUE")
	t.Setenv("OTEL_SERVICE_NAME", "from-env")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://collector.example.com:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "Authorization=Bearer token123,X-Custom=value")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment=production")

	cfg := FromSettings(config.TelemetryConfig{ServiceName: "from-file"}, "1.0.0")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "from-env", cfg.ServiceName)
	assert.Equal(t, "https://collector.example.com:4317", cfg.Endpoint)
	assert.Equal(t, "Bearer token123", cfg.Headers["Authorization"])
	assert.Equal(t, "value", cfg.Headers["X-Custom"])
	assert.Equal(t, "production", cfg.ResourceAttrs["deployment.environment"])
}

func TestFromSettings_EnvCanDisable(t *testing.T) {
	clearOtelEnv(t)
	t.Setenv("OTEL_ENABLED", "false")

	cfg := FromSettings(config.TelemetryConfig{Enabled: true}, "")
	assert.False(t, cfg.Enabled)
}

func TestParseKeyValuePairs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single_pair", "key=value", map[string]string{"key": "value"}},
		{"multiple_pairs", "key1=value1,key2=value2", map[string]string{"key1": "value1", "key2": "value2"}},
		{"with_spaces", " key1 = value1 , key2 = value2 ", map[string]string{"key1": "value1", "key2": "value2"}},
		{"value_with_equals", "Authorization=Bearer token=abc", map[string]string{"Authorization": "Bearer token=abc"}},
		{"empty_value", "key=", map[string]string{"key": ""}},
		{"invalid_no_equals", "invalid", map[string]string{}},
		{"mixed_valid_invalid", "valid=value,invalid,another=test", map[string]string{"valid": "value", "another": "test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseKeyValuePairs(tt.input))
		})
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		input    string
		endpoint string
		plain    bool
	}{
		{"http://collector:4318", "collector:4318", true},
		{"https://collector:4317", "collector:4317", false},
		{"collector:4317", "collector:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			endpoint, plain := splitEndpoint(tt.input)
			assert.Equal(t, tt.endpoint, endpoint)
			assert.Equal(t, tt.plain, plain)
		})
	}
}

func TestExporterOptions(t *testing.T) {
	cfg := &Config{
		Endpoint: "http://collector:4317",
		Headers:  map[string]string{"Authorization": "x"},
	}
	assert.Len(t, grpcOptions(cfg), 3)
	assert.Len(t, httpOptions(cfg), 3)

	assert.Empty(t, grpcOptions(&Config{}))
	assert.Len(t, httpOptions(&Config{Insecure: true}), 1)
}
