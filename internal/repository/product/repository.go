package product

import (
	"context"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

// Collection holds the externally managed products.
const Collection = "products"

type Repository interface {
	List(ctx context.Context) ([]domain.ExternalProduct, error)
	Get(ctx context.Context, id string) (*domain.ExternalProduct, error)
	Upsert(ctx context.Context, p domain.ExternalProduct) (*domain.ExternalProduct, error)
	Subscribe(ctx context.Context, onChange func([]domain.ExternalProduct), onError docstore.ErrorFunc) (docstore.Unsubscribe, error)
}
