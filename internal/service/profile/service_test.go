package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	profilerepo "valentine-storefront/internal/repository/profile"
)

var ann = &domain.Identity{UID: "ann", Email: "ann@example.com", DisplayName: "Ann"}

func TestGetFallsBackToIdentity(t *testing.T) {
	svc := New(profilerepo.NewDocstore(docstore.NewMemory(), zerolog.Nop()), zerolog.Nop())
	p, err := svc.Get(context.Background(), ann)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", p.Email)
	assert.Equal(t, "Ann", p.DisplayName)
	assert.NotNil(t, p.Favorites)

	_, err = svc.Get(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := profilerepo.NewDocstore(docstore.NewMemory(), zerolog.Nop())
	require.NoError(t, repo.Create(ctx, domain.Profile{UID: "ann", Email: "ann@example.com"}))
	svc := New(repo, zerolog.Nop())

	p, err := svc.Update(ctx, ann, Details{DisplayName: " Ann Lee ", City: "Oslo", PostalCode: "0150", Country: "NO"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", p.DisplayName)
	assert.Equal(t, "0150", p.PostalCode)
	assert.Equal(t, "ann@example.com", p.Email)
}

func TestUpdateRejectsWholeSubmission(t *testing.T) {
	ctx := context.Background()
	repo := profilerepo.NewDocstore(docstore.NewMemory(), zerolog.Nop())
	svc := New(repo, zerolog.Nop())
	_, err := svc.Update(ctx, ann, Details{DisplayName: "Ann", City: "Oslo"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ann, Details{DisplayName: "A", City: "Bergen", PostalCode: "##", Country: "N"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)

	p, err := svc.Get(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", p.City)
	assert.Equal(t, "Ann", p.DisplayName)
}
