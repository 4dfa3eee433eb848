package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/internhub/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TracingConfig
	}{
		{name: "sample rate above one", cfg: config.TracingConfig{Enabled: true, Exporter: ExporterNone, SampleRate: 1.5}},
		{name: "negative sample rate", cfg: config.TracingConfig{Enabled: true, Exporter: ExporterNone, SampleRate: -0.1}},
		{name: "unknown exporter", cfg: config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitTracing(context.Background(), tt.cfg, "test")
			assert.Error(t, err)
		})
	}
}

func TestInitTracingNoneExporter(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:     true,
		ServiceName: "internhub-test",
		Exporter:    ExporterNone,
		SampleRate:  1,
	}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	always, err := newSampler(1)
	require.NoError(t, err)
	assert.Equal(t, sdktrace.AlwaysSample().Description(), always.Description())

	never, err := newSampler(0)
	require.NoError(t, err)
	assert.Equal(t, sdktrace.NeverSample().Description(), never.Description())

	ratio, err := newSampler(0.25)
	require.NoError(t, err)
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), ratio.Description())
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	exporter, err := newExporter(context.Background(), config.TracingConfig{Exporter: ExporterStdout}, &buf)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	_, span := tp.Tracer("test").Start(context.Background(), "apply")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"apply"`)
}
