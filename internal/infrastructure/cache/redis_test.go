package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_UnavailableBypasses(t *testing.T) {
	r := NewFromClient(nil, 0, nil)
	ctx := context.Background()

	var out map[string]int
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, r.Delete(ctx, "k"))

	ok, err := r.AcquireLock(ctx, "lock", "token", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, r.ReleaseLock(ctx, "lock", "token"))

	assert.Error(t, r.Ping(ctx))
	assert.NoError(t, r.Close())
}
