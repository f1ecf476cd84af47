package docstore

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/migrate"
)

func TestPostgresDocumentsAndNotify(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err := pool.Exec(ctx, `TRUNCATE documents`)
	require.NoError(t, err)

	store := NewPostgres(pool, zerolog.Nop())
	defer store.Close()

	var lastSize atomic.Int64
	lastSize.Store(-1)
	unsubscribe, err := store.Subscribe(ctx, "messages", Where("userId", "u1"), func(docs []Document) {
		lastSize.Store(int64(len(docs)))
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()

	require.Eventually(t, func() bool { return lastSize.Load() == 0 }, 2*time.Second, 10*time.Millisecond)

	id, err := store.Add(ctx, "messages", map[string]any{"userId": "u1", "question": "Is it red?", "createdAt": ServerTimestamp})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return lastSize.Load() == 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, store.Update(ctx, "messages", id, map[string]any{"userHasRead": true}))
	doc, err := store.Get(ctx, "messages", id)
	require.NoError(t, err)
	assert.Equal(t, true, doc.Fields["userHasRead"])
	assert.Equal(t, "Is it red?", doc.Fields["question"])

	err = store.Update(ctx, "messages", "nope", map[string]any{"x": 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"favorites": ArrayUnion("static:4")}, true))
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]any{"favorites": ArrayUnion("static:4", "static:5")}, true))
	user, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, []any{"static:4", "static:5"}, user.Fields["favorites"])
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}
