package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

func TestCreateKeepsExistingFavorites(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := NewDocstore(store, zerolog.Nop())

	require.NoError(t, repo.AddFavorite(ctx, "u1", domain.StaticProductID(4)))
	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "u1", Email: "a@example.com", DisplayName: "Ann"}))

	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, []string{"static:4"}, p.Favorites)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestFavoritesUnionAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstore(docstore.NewMemory(), zerolog.Nop())
	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "u1"}))

	require.NoError(t, repo.AddFavorite(ctx, "u1", domain.ExternalProductID("x")))
	require.NoError(t, repo.AddFavorite(ctx, "u1", domain.ExternalProductID("x")))
	require.NoError(t, repo.AddFavorite(ctx, "u1", domain.StaticProductID(2)))
	require.NoError(t, repo.RemoveFavorite(ctx, "u1", domain.ExternalProductID("x")))

	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"static:2"}, p.Favorites)
}

func TestSaveDetailsLeavesFavorites(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstore(docstore.NewMemory(), zerolog.Nop())
	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "u1", Email: "a@example.com"}))
	require.NoError(t, repo.AddFavorite(ctx, "u1", domain.StaticProductID(9)))

	require.NoError(t, repo.SaveDetails(ctx, domain.Profile{UID: "u1", DisplayName: "Ann", City: "Lyon", Country: "FR"}))

	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.DisplayName)
	assert.Equal(t, "Lyon", p.City)
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, []string{"static:9"}, p.Favorites)
}

func TestSubscribeReportsMissingThenCreated(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstore(docstore.NewMemory(), zerolog.Nop())

	var mu sync.Mutex
	var seen []*domain.Profile
	stop, err := repo.Subscribe(ctx, "u1", func(p *domain.Profile) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}, nil)
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0] == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, repo.AddFavorite(ctx, "u1", domain.StaticProductID(1)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		last := seen[len(seen)-1]
		return last != nil && len(last.Favorites) == 1
	}, time.Second, 5*time.Millisecond)
}
