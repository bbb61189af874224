package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReexports(t *testing.T) {
	log := New("test-package")
	assert.NotNil(t, log)

	ctx := ContextWithTraceID(context.Background(), "trace-123")
	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))
	assert.NotNil(t, NewWithContext(ctx, "svc"))

	original := errors.New("original")
	assert.Equal(t, original, log.Function("fn").Err("context", original))
}
