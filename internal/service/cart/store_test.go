package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/repository/cartstore"
)

var (
	ann   = &domain.Identity{UID: "ann", Email: "ann@example.com"}
	bob   = &domain.Identity{UID: "bob", Email: "bob@example.com"}
	roses = domain.Product{ID: domain.StaticProductID(1), Name: "Red Roses", Price: decimal.RequireFromString("24.99"), Image: "/images/flowers/1.jpg"}
	card  = domain.Product{ID: domain.ExternalProductID("c1"), Name: "Pop-Up Card", Price: decimal.RequireFromString("5.50")}
)

func TestAddMergesSameNote(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, cartstore.NewMemory(), ann, zerolog.Nop())

	require.NoError(t, s.Add(ctx, roses, 2, "Happy Bday"))
	require.NoError(t, s.Add(ctx, roses, 1, "Happy Bday"))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "Happy Bday", lines[0].Note)
}

func TestAddDistinctNotesMakeDistinctLines(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, cartstore.NewMemory(), ann, zerolog.Nop())

	require.NoError(t, s.Add(ctx, roses, 1, "A"))
	require.NoError(t, s.Add(ctx, roses, 1, "B"))
	require.NoError(t, s.Add(ctx, card, 1, ""))

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "A", lines[0].Note)
	assert.Equal(t, "B", lines[1].Note)
	assert.Equal(t, card.ID, lines[2].ProductID)
}

func TestAddRequiresIdentity(t *testing.T) {
	ctx := context.Background()
	repo := cartstore.NewMemory()
	s := Open(ctx, repo, nil, zerolog.Nop())

	err := s.Add(ctx, roses, 1, "")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Empty(t, s.Lines())
	_, err = repo.Load(ctx, domain.GuestScope)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddTreatsNonPositiveQuantityAsOne(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, cartstore.NewMemory(), ann, zerolog.Nop())
	require.NoError(t, s.Add(ctx, roses, 0, ""))
	assert.Equal(t, 1, s.Count())
}

func TestUpdateQuantityBelowOneIsNoop(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, cartstore.NewMemory(), ann, zerolog.Nop())
	require.NoError(t, s.Add(ctx, roses, 2, "x"))

	require.NoError(t, s.UpdateQuantity(ctx, roses.ID, "x", 0))
	require.NoError(t, s.UpdateQuantity(ctx, roses.ID, "x", -4))
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, roses.ID, "x", 5))
	assert.Equal(t, 5, s.Lines()[0].Quantity)

	// Different note: no line, nothing changes.
	require.NoError(t, s.UpdateQuantity(ctx, roses.ID, "y", 9))
	assert.Equal(t, 5, s.Count())
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, cartstore.NewMemory(), ann, zerolog.Nop())
	require.NoError(t, s.Add(ctx, roses, 1, "A"))
	require.NoError(t, s.Add(ctx, roses, 1, "B"))

	require.NoError(t, s.Remove(ctx, roses.ID, "A"))
	require.NoError(t, s.Remove(ctx, roses.ID, "missing"))
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0].Note)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Lines())
	assert.True(t, s.Total().IsZero())
}

func TestCountAndTotal(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, cartstore.NewMemory(), ann, zerolog.Nop())
	require.NoError(t, s.Add(ctx, roses, 2, ""))
	require.NoError(t, s.Add(ctx, card, 3, ""))

	assert.Equal(t, 5, s.Count())
	assert.True(t, s.Total().Equal(decimal.RequireFromString("66.48")), s.Total().String())

	v := s.View()
	assert.Equal(t, domain.CartScope("cart_ann"), v.Scope)
	assert.Equal(t, 5, v.Count)
}

func TestEveryMutationPersistsFullList(t *testing.T) {
	ctx := context.Background()
	repo := cartstore.NewMemory()
	s := Open(ctx, repo, ann, zerolog.Nop())
	require.NoError(t, s.Add(ctx, roses, 1, "n"))
	require.NoError(t, s.Add(ctx, card, 2, ""))

	raw, err := repo.Load(ctx, "cart_ann")
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "static:1", stored[0]["id"])
	assert.Equal(t, "n", stored[0]["customization"])

	require.NoError(t, s.Clear(ctx))
	raw, err = repo.Load(ctx, "cart_ann")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := cartstore.NewMemory()
	s := Open(ctx, repo, ann, zerolog.Nop())
	require.NoError(t, s.Add(ctx, roses, 1, ""))

	s.SetIdentity(ctx, bob)
	assert.Empty(t, s.Lines())
	require.NoError(t, s.Add(ctx, card, 4, ""))

	s.SetIdentity(ctx, nil)
	assert.Equal(t, domain.GuestScope, s.Scope())
	assert.Empty(t, s.Lines())

	s.SetIdentity(ctx, ann)
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, roses.ID, s.Lines()[0].ProductID)
}

func TestCorruptStoredCartLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := cartstore.NewMemory()
	repo.Put("cart_ann", "{not json")

	s := Open(ctx, repo, ann, zerolog.Nop())
	assert.Empty(t, s.Lines())
	require.NoError(t, s.Add(ctx, roses, 1, ""))
	assert.Equal(t, 1, s.Count())
}

func TestInvalidStoredLinesAreDropped(t *testing.T) {
	ctx := context.Background()
	repo := cartstore.NewMemory()
	repo.Put("cart_ann", `[{"id":"static:1","name":"Roses","price":"2","quantity":0},{"id":"static:2","name":"Tulips","price":"3","quantity":2}]`)

	s := Open(ctx, repo, ann, zerolog.Nop())
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.StaticProductID(2), lines[0].ProductID)
}

type failingRepo struct {
	cartstore.Repository
	saveErr error
}

func (f failingRepo) Save(context.Context, domain.CartScope, []byte) error {
	return f.saveErr
}

func TestFailedSaveLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("storage down")
	s := Open(ctx, failingRepo{Repository: cartstore.NewMemory(), saveErr: boom}, ann, zerolog.Nop())

	err := s.Add(ctx, roses, 1, "")
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.Lines())
}

func TestUnopenedStoreActsAsGuest(t *testing.T) {
	ctx := context.Background()
	repo := cartstore.NewMemory()
	repo.Put(domain.GuestScope, `[{"id":"static:3","name":"Card","price":"1","quantity":1}]`)

	s := NewStore(repo, zerolog.Nop())
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, domain.GuestScope, s.Scope())
	assert.Empty(t, s.Lines())
}
