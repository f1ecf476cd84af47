package cartstore

import (
	"context"

	"valentine-storefront/internal/domain"
)

// Repository stores one serialized cart per scope key. Load returns
// domain.ErrNotFound when nothing has been saved under the key.
type Repository interface {
	Load(ctx context.Context, scope domain.CartScope) ([]byte, error)
	Save(ctx context.Context, scope domain.CartScope, payload []byte) error
}
