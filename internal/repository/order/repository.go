package order

import (
	"context"

	"valentine-storefront/internal/domain"
)

// Collection holds placed orders.
const Collection = "orders"

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, uid string) ([]domain.Order, error)
}
