package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/catalog"
	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/repository/product"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := product.NewDocstore(docstore.NewMemory(), zerolog.Nop())

	require.NoError(t, Apply(ctx, repo, zerolog.Nop()))
	require.NoError(t, Apply(ctx, repo, zerolog.Nop()))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(Products))
}

func TestSeededProductsMergeIntoCatalog(t *testing.T) {
	ctx := context.Background()
	repo := product.NewDocstore(docstore.NewMemory(), zerolog.Nop())
	require.NoError(t, Apply(ctx, repo, zerolog.Nop()))

	external, err := repo.List(ctx)
	require.NoError(t, err)
	merged := catalog.Merge(external, catalog.Static())

	var externalCount int
	for _, p := range merged {
		if p.Origin == domain.OriginExternal {
			externalCount++
			assert.NotEqual(t, "demo-retired", p.ID.Key)
		}
	}
	assert.Equal(t, len(Products)-1, externalCount)
}
