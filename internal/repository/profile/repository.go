package profile

import (
	"context"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

// Collection holds one profile document per user, keyed by uid.
const Collection = "users"

type Repository interface {
	Get(ctx context.Context, uid string) (*domain.Profile, error)
	// Create writes the initial document; an existing one is merged, not replaced.
	Create(ctx context.Context, p domain.Profile) error
	// SaveDetails writes the editable contact and address fields.
	SaveDetails(ctx context.Context, p domain.Profile) error
	AddFavorite(ctx context.Context, uid string, id domain.ProductID) error
	RemoveFavorite(ctx context.Context, uid string, id domain.ProductID) error
	// Subscribe reports the profile on every change; nil means the document does not exist.
	Subscribe(ctx context.Context, uid string, onChange func(*domain.Profile), onError docstore.ErrorFunc) (docstore.Unsubscribe, error)
}
