package review

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

func TestResolveTimestamp(t *testing.T) {
	want := time.Date(2026, 2, 14, 12, 30, 0, 0, time.UTC)
	ms := float64(want.UnixMilli())

	cases := []struct {
		name     string
		in       any
		fallback float64
	}{
		{"native", want, 0},
		{"rfc3339", want.Format(time.RFC3339Nano), 0},
		{"millis", ms, 0},
		{"seconds map", map[string]any{"seconds": float64(want.Unix()), "nanoseconds": float64(0)}, 0},
		{"underscore map", map[string]any{"_seconds": float64(want.Unix())}, 0},
		{"fallback", "garbage", ms},
		{"missing", nil, ms},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, ResolveTimestamp(tc.in, tc.fallback).Equal(want))
		})
	}
	assert.True(t, ResolveTimestamp(nil, 0).IsZero())
}

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	repo := NewDocstore(store, zerolog.Nop())

	added, err := repo.Add(ctx, domain.Review{ProductID: "static:1", UserID: "u1", UserName: "Ann", Rating: 5, Message: "Lovely"})
	require.NoError(t, err)
	assert.True(t, added.CreatedAt.Equal(now))

	// Legacy record carrying only epoch millis.
	require.NoError(t, store.Set(ctx, Collection, "legacy", map[string]any{
		"productId":       "static:1",
		"userName":        "Bob",
		"rating":          4,
		"message":         "Nice",
		"createdAtMillis": now.Add(-time.Hour).UnixMilli(),
	}, false))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, rv := range list {
		assert.False(t, rv.CreatedAt.IsZero(), rv.ID)
	}
}
