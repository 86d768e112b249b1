package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/errors"
)

type contextKey string

func TestCtxValue(t *testing.T) {
	k := contextKey("owner")
	ctx := context.WithValue(context.Background(), k, "user-1")

	owner, err := CtxValue[string](ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)

	_, err = CtxValue[int](ctx, k)
	assert.Equal(t, 500, errors.Code(err))

	_, err = CtxValue[string](ctx, contextKey("missing"))
	assert.Error(t, err)

	_, err = CtxValue[string](nil, k)
	assert.Error(t, err)
}
