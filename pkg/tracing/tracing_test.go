package tracing

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracer_DisabledStillPropagates(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("storefront"))
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	h := http.Header{}
	InjectHTTP(ctx, h)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", h.Get("traceparent"))

	extracted := trace.SpanContextFromContext(ExtractHTTP(context.Background(), h))
	assert.Equal(t, traceID, extracted.TraceID())
}

func TestInitTracer_EnabledInstallsSDKProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("storefront")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	_ = shutdown(context.Background())
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "ParentBased")
}

func TestTracer_RecordsWithSDK(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	_, span := Tracer("storeapi").Start(context.Background(), "GET /api/carrinho")
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "GET /api/carrinho", rec.Ended()[0].Name())
}
