package cartstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
)

type redisRepo struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedis keeps carts under "<prefix><scope>" with no expiry.
func NewRedis(client *redis.Client, prefix string, logger zerolog.Logger) Repository {
	return &redisRepo{client: client, prefix: prefix, logger: logger}
}

func (r *redisRepo) Load(ctx context.Context, scope domain.CartScope) ([]byte, error) {
	key := r.prefix + string(scope)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("key", key).Msg("cart load failed")
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return raw, nil
}

func (r *redisRepo) Save(ctx context.Context, scope domain.CartScope, payload []byte) error {
	key := r.prefix + string(scope)
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("cart save failed")
		return fmt.Errorf("save %s: %w", key, err)
	}
	r.logger.Debug().Str("key", key).Int("bytes", len(payload)).Msg("cart saved")
	return nil
}
