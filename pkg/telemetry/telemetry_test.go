package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.False(t, Enabled())
	assert.NoError(t, shutdown(ctx))

	shutdown, err = Init(ctx, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
}

func TestTracer(t *testing.T) {
	assert.NotNil(t, Tracer())
}

func TestBuildResource(t *testing.T) {
	res, err := buildResource(context.Background(), &Config{
		ServiceName:    "objreg-test",
		ServiceVersion: "0.0.1",
		ResourceAttrs:  map[string]string{"team": "storage"},
	})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "objreg-test", attrs["service.name"])
	assert.Equal(t, "0.0.1", attrs["service.version"])
	assert.Equal(t, "storage", attrs["team"])
	assert.Equal(t, serviceNamespace, attrs["service.namespace"])
	assert.Equal(t, "go", attrs["process.runtime.name"])
	assert.NotEmpty(t, attrs["process.runtime.version"])
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		sampler     string
		arg         string
		description string
	}{
		{"", "", "AlwaysOnSampler"},
		{"always_on", "", "AlwaysOnSampler"},
		{"always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"parentbased_always_on", "", "ParentBased{root:AlwaysOnSampler"},
		{"parentbased_always_off", "", "ParentBased{root:AlwaysOffSampler"},
		{"parentbased_traceidratio", "0.1", "ParentBased{root:TraceIDRatioBased{0.1}"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			var s sdktrace.Sampler = createSampler(&Config{Sampler: tt.sampler, SamplerArg: tt.arg})
			require.NotNil(t, s)
			assert.Contains(t, s.Description(), tt.description)
		})
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"empty", "", 1.0},
		{"valid_half", "0.5", 0.5},
		{"valid_zero", "0", 0},
		{"valid_one", "1", 1.0},
		{"invalid_string", "invalid", 1.0},
		{"negative", "-0.5", 0},
		{"greater_than_one", "1.5", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseRatio(tt.input))
		})
	}
}
