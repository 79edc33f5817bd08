package kv

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// Spins up a real Redis container; skipped with -short.
func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	redisC, err := tcredis.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := redisC.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	store := NewRedis(client, time.Hour)

	require.NoError(t, store.Set(ctx, "guest_cart:g1", []byte(`[]`)))
	data, err := store.Get(ctx, "guest_cart:g1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)

	require.NoError(t, store.Delete(ctx, "guest_cart:g1"))
	_, err = store.Get(ctx, "guest_cart:g1")
	require.ErrorIs(t, err, ErrNotFound)
}
