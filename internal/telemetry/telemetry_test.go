package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	SetTracerProvider(tp, tp.Shutdown)
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		SetTracerProvider(nil, nil)
	})
	return recorder
}

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, span := StartSpan(context.Background(), "save", "persist")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitProviderEnabledWithoutEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.SampleRate = 0.5

	shutdown, err := InitProvider(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	_, span := StartSpan(context.Background(), "content", "merge")
	span.End()
}

func TestSpans(t *testing.T) {
	recorder := installRecorder(t)

	_, ok := StartSpan(context.Background(), "content", "merge", attribute.Int("packs", 2))
	End(ok, nil)

	_, failed := StartCommandSpan(context.Background(), "validate")
	End(failed, errors.New("duplicate id"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "content.merge", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("packs", 2))

	assert.Equal(t, "cli.validate", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String("command", "validate"))
}
