package message

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

func (r *docstoreRepo) Add(ctx context.Context, m domain.Message) (*domain.Message, error) {
	fields, err := docstore.Encode(m)
	if err != nil {
		return nil, err
	}
	delete(fields, "id")
	delete(fields, "answeredAt")
	fields["createdAt"] = docstore.ServerTimestamp

	id, err := r.store.Add(ctx, Collection, fields)
	if err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *docstoreRepo) Get(ctx context.Context, id string) (*domain.Message, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, err
	}
	m, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *docstoreRepo) Answer(ctx context.Context, id, answer string) error {
	return r.store.Update(ctx, Collection, id, map[string]any{
		"answer":      answer,
		"userHasRead": false,
		"answeredAt":  docstore.ServerTimestamp,
	})
}

func (r *docstoreRepo) MarkRead(ctx context.Context, id string) error {
	return r.store.Update(ctx, Collection, id, map[string]any{"userHasRead": true})
}

func (r *docstoreRepo) ListByUser(ctx context.Context, uid string) ([]domain.Message, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Where("userId", uid))
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", uid, err)
	}
	return r.decodeAll(docs), nil
}

func (r *docstoreRepo) SubscribeByUser(ctx context.Context, uid string, onChange func([]domain.Message), onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, Collection, docstore.Where("userId", uid), func(docs []docstore.Document) {
		onChange(r.decodeAll(docs))
	}, onError)
}

func (r *docstoreRepo) decodeAll(docs []docstore.Document) []domain.Message {
	out := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		m, err := decode(d)
		if err != nil {
			r.logger.Warn().Err(err).Str("id", d.ID).Msg("message repo: skipping malformed message")
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func decode(doc docstore.Document) (domain.Message, error) {
	var m domain.Message
	if err := docstore.Decode(doc.Fields, &m); err != nil {
		return domain.Message{}, err
	}
	m.ID = doc.ID
	return m, nil
}
