package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProvider_NoEndpoint(t *testing.T) {
	tp, err := newTracerProvider("svc", "")
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestStartSpan_RecordsAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "llm.complete", map[string]string{"purpose": "chat"})
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "llm.complete", ended[0].Name())
	attrs := ended[0].Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "chat", attrs[0].Value.AsString())
}

func TestObservability_RecordWithoutProvider(t *testing.T) {
	o := &Observability{}
	o.RecordJobProcessed(context.Background(), "copilot.intent.classify", "completed")
	o.RecordJobDuration(context.Background(), "copilot.intent.classify", time.Second, "completed")
	o.Shutdown()
}
