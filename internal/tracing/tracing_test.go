package tracing

import (
	"context"
	"errors"
	"testing"
)

func TestSetup_EmptyEndpointIsANoOp(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestStartEventSpanAndDispatchSpan_NeverPanicWithoutAProvider(t *testing.T) {
	ctx, span := StartEventSpan(context.Background(), "123", 11)
	if ctx == nil || span == nil {
		t.Fatal("StartEventSpan returned a nil context or span")
	}
	EndWithError(span, nil)

	ctx, span = StartDispatchSpan(context.Background(), 123, 52)
	if ctx == nil || span == nil {
		t.Fatal("StartDispatchSpan returned a nil context or span")
	}
	EndWithError(span, errors.New("handler failed"))
}
