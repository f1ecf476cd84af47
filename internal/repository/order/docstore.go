package order

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

type docstoreRepo struct {
	store  docstore.Store
	logger zerolog.Logger
}

func NewDocstore(store docstore.Store, logger zerolog.Logger) Repository {
	return &docstoreRepo{store: store, logger: logger}
}

func (r *docstoreRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	fields, err := docstore.Encode(o)
	if err != nil {
		return nil, err
	}
	delete(fields, "id")
	fields["createdAt"] = docstore.ServerTimestamp

	id, err := r.store.Add(ctx, Collection, fields)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, err
	}
	created, err := decode(doc)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("order_id", id).Str("user_id", o.UserID).Str("total", o.Total.StringFixed(2)).Msg("order stored")
	return &created, nil
}

func (r *docstoreRepo) ListByUser(ctx context.Context, uid string) ([]domain.Order, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Where("userId", uid))
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", uid, err)
	}
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		o, err := decode(d)
		if err != nil {
			r.logger.Warn().Err(err).Str("id", d.ID).Msg("order repo: skipping malformed order")
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func decode(doc docstore.Document) (domain.Order, error) {
	var o domain.Order
	if err := docstore.Decode(doc.Fields, &o); err != nil {
		return domain.Order{}, err
	}
	o.ID = doc.ID
	return o, nil
}
