package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/domain"
)

type stubResolver struct {
	id  *domain.Identity
	err error
}

func (s stubResolver) CurrentIdentity(context.Context, string) (*domain.Identity, error) {
	return s.id, s.err
}

func TestGuestSession(t *testing.T) {
	s := Guest()
	assert.False(t, s.SignedIn())
	assert.Nil(t, s.Identity())
	assert.Equal(t, domain.GuestScope, s.CartScope())
	assert.Equal(t, domain.GuestOwner, s.Owner())
	assert.Empty(t, s.UID())
}

func TestSignedInSession(t *testing.T) {
	s := New("tok", domain.Identity{UID: "u1", Email: "a@example.com"})
	assert.True(t, s.SignedIn())
	assert.Equal(t, domain.CartScope("cart_u1"), s.CartScope())
	assert.Equal(t, "u1", s.Owner())
	assert.Equal(t, "tok", s.Token())

	id := s.Identity()
	id.UID = "changed"
	assert.Equal(t, "u1", s.UID())
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	s, err := Resolve(ctx, stubResolver{id: &domain.Identity{UID: "u1"}}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UID())

	s, err = Resolve(ctx, stubResolver{id: &domain.Identity{UID: "u1"}}, "")
	require.NoError(t, err)
	assert.False(t, s.SignedIn())

	bad := errors.New("expired")
	s, err = Resolve(ctx, stubResolver{err: bad}, "tok")
	assert.ErrorIs(t, err, bad)
	assert.False(t, s.SignedIn())
}
