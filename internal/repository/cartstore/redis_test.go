package cartstore

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/domain"
)

func TestRedisLoadSave(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	repo := NewRedis(client, "test:", zerolog.Nop())
	scope := domain.CartScope("cart_redis_test")
	require.NoError(t, client.Del(ctx, "test:"+string(scope)).Err())

	_, err := repo.Load(ctx, scope)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Save(ctx, scope, []byte(`[{"id":"static:1","quantity":2}]`)))
	raw, err := repo.Load(ctx, scope)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"static:1","quantity":2}]`, string(raw))
}

func TestMemoryScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, domain.GuestScope, []byte("[]")))

	_, err := m.Load(ctx, domain.CartScope("cart_u1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	raw, err := m.Load(ctx, domain.GuestScope)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
