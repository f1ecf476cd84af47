// Package favorites keeps a signed-in shopper's favorite products in sync
// with their profile document.
package favorites

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	profilerepo "valentine-storefront/internal/repository/profile"
)

// SyncError reports a toggle that was applied locally but not stored.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string { return "favorites not synced: " + e.Err.Error() }

func (e *SyncError) Unwrap() error { return e.Err }

type Service struct {
	profiles profilerepo.Repository
	logger   zerolog.Logger
}

func New(profiles profilerepo.Repository, logger zerolog.Logger) *Service {
	return &Service{profiles: profiles, logger: logger}
}

// List returns the stored favorites. A missing profile has none.
func (s *Service) List(ctx context.Context, uid string) (domain.FavoriteSet, error) {
	p, err := s.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FavoriteSet{}, nil
		}
		return nil, err
	}
	return domain.NewFavoriteSet(p.Favorites), nil
}

// Toggle flips id and reports the new membership. When only the write fails
// the result still reflects the intended state and the error is a
// *SyncError. A failed read toggles nothing.
func (s *Service) Toggle(ctx context.Context, who *domain.Identity, id domain.ProductID) (bool, error) {
	if who == nil {
		return false, domain.ErrAuthRequired
	}
	current, err := s.List(ctx, who.UID)
	if err != nil {
		return false, err
	}
	favorite := current.Toggle(id)
	return favorite, s.write(ctx, who.UID, id, favorite)
}

func (s *Service) write(ctx context.Context, uid string, id domain.ProductID, favorite bool) error {
	var err error
	if favorite {
		err = s.profiles.AddFavorite(ctx, uid, id)
	} else {
		err = s.profiles.RemoveFavorite(ctx, uid, id)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Str("product_id", id.String()).Bool("favorite", favorite).
			Msg("favorites: remote write failed, keeping local state")
		return &SyncError{Err: err}
	}
	return nil
}
