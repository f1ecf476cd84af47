package review

import (
	"context"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

// Collection holds every product review.
const Collection = "reviews"

type Repository interface {
	Add(ctx context.Context, r domain.Review) (*domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
	// Subscribe streams the whole review collection.
	Subscribe(ctx context.Context, onChange func([]domain.Review), onError docstore.ErrorFunc) (docstore.Unsubscribe, error)
}
