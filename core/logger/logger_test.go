package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithLoggerIsIdempotent(t *testing.T) {
	ctx, rlog := ContextWithLogger(context.Background())
	assert.NotNil(t, rlog)

	// a context that already carries a logger is returned unchanged
	ctx2, rlog2 := ContextWithLogger(ctx)
	assert.Equal(t, ctx, ctx2)
	assert.Equal(t, rlog, rlog2)
}

func TestRequestIDFromContext(t *testing.T) {
	ctx, _ := ContextWithLogger(context.Background())

	id := RequestIDFromContext(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	// a context without a logger has no request id
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestContextWithLoggerIdentity(t *testing.T) {
	ctx, rlog := ContextWithLoggerIdentity(context.Background(), "shop1")
	assert.Equal(t, "shop1", rlog.Data[identityLoggerKey])

	// the identity is added on top of the request id logger
	assert.NotEmpty(t, RequestIDFromContext(ctx))
}
