package tracer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"orcs/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanDataSelect, tracer.String(tracer.AttrTable, "keys"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Int64(tracer.AttrRows, 3))
	span.AddEvent("retry")
	span.End(errors.New("boom"))
}

func TestOTelTracerWithNoopProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	_, span := tr.Start(context.Background(), tracer.SpanAuthSignIn,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail("a@b.fr")),
		tracer.Bool(tracer.AttrBreakerOpen, false),
		tracer.Float64("weight", 1.5),
		tracer.Attribute{Key: "ignored", Value: struct{}{}},
	)
	require.NotNil(t, span)
	assert.NotPanics(t, func() { span.End(errors.New("invalid_credentials")) })
}

func TestHashEmail(t *testing.T) {
	assert.Empty(t, tracer.HashEmail("  "))
	h := tracer.HashEmail("Alice@Club.fr")
	assert.Len(t, h, 16)
	assert.Equal(t, h, tracer.HashEmail(" alice@club.fr"))
	assert.NotEqual(t, h, tracer.HashEmail("bob@club.fr"))
}

func TestOTelSpanEndOnCancel(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
	_, span := tr.Start(context.Background(), tracer.SpanDataSelect, tracer.Attribute{Key: "elapsed", Value: time.Second})
	assert.NotPanics(t, func() { span.End(fmt.Errorf("select: %w", context.Canceled)) })
}
