package account

import (
	"context"

	"valentine-storefront/internal/domain"
)

// Repository persists identity-provider accounts.
type Repository interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUID(ctx context.Context, uid string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
}
