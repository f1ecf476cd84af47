package order

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

func TestCreateAndListByUser(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	clock := time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })
	repo := NewDocstore(store, zerolog.Nop())

	line := domain.CartLine{ProductID: domain.StaticProductID(1), Name: "Rose", Price: decimal.RequireFromString("12.50"), Quantity: 2, Note: "red"}
	first, err := repo.Create(ctx, domain.Order{UserID: "u1", Lines: []domain.CartLine{line}, Total: line.Subtotal(), Status: domain.OrderPending})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.True(t, first.CreatedAt.Equal(clock))
	require.Len(t, first.Lines, 1)
	assert.Equal(t, domain.StaticProductID(1), first.Lines[0].ProductID)
	assert.True(t, first.Total.Equal(decimal.NewFromInt(25)))

	store.SetClock(func() time.Time { return clock.Add(time.Hour) })
	second, err := repo.Create(ctx, domain.Order{UserID: "u1", Lines: []domain.CartLine{line}, Total: line.Subtotal(), Status: domain.OrderPending})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Order{UserID: domain.GuestOwner, Lines: []domain.CartLine{line}, Total: line.Subtotal()})
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
