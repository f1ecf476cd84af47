package product

import (
	"context"
	"fmt"

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

func (r *docstoreRepo) List(ctx context.Context) ([]domain.ExternalProduct, error) {
	docs, err := r.store.Query(ctx, Collection, nil)
	if err != nil {
		r.logger.Error().Err(err).Msg("product repo: list")
		return nil, err
	}
	out := r.decodeAll(docs)
	r.logger.Debug().Int("count", len(out)).Msg("product repo: list")
	return out, nil
}

func (r *docstoreRepo) Get(ctx context.Context, id string) (*domain.ExternalProduct, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, err
	}
	p, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert replaces the stored record. An empty ID stores a new product.
func (r *docstoreRepo) Upsert(ctx context.Context, p domain.ExternalProduct) (*domain.ExternalProduct, error) {
	fields, err := docstore.Encode(p)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		id, err := r.store.Add(ctx, Collection, fields)
		if err != nil {
			return nil, fmt.Errorf("product repo: add %q: %w", p.Name, err)
		}
		p.ID = id
	} else if err := r.store.Set(ctx, Collection, p.ID, fields, false); err != nil {
		return nil, fmt.Errorf("product repo: set %s: %w", p.ID, err)
	}
	r.logger.Debug().Str("id", p.ID).Str("name", p.Name).Msg("product repo: upserted")
	return &p, nil
}

func (r *docstoreRepo) Subscribe(ctx context.Context, onChange func([]domain.ExternalProduct), onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, Collection, nil, func(docs []docstore.Document) {
		onChange(r.decodeAll(docs))
	}, onError)
}

// decodeAll skips records that cannot be decoded instead of failing the snapshot.
func (r *docstoreRepo) decodeAll(docs []docstore.Document) []domain.ExternalProduct {
	out := make([]domain.ExternalProduct, 0, len(docs))
	for _, d := range docs {
		p, err := decode(d)
		if err != nil {
			r.logger.Warn().Err(err).Str("id", d.ID).Msg("product repo: skipping malformed product")
			continue
		}
		out = append(out, p)
	}
	return out
}

func decode(doc docstore.Document) (domain.ExternalProduct, error) {
	var p domain.ExternalProduct
	if err := docstore.Decode(doc.Fields, &p); err != nil {
		return domain.ExternalProduct{}, err
	}
	p.ID = doc.ID
	return p, nil
}
