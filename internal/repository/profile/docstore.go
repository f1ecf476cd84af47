package profile

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

func (r *docstoreRepo) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	doc, err := r.store.Get(ctx, Collection, uid)
	if err != nil {
		return nil, err
	}
	return decode(doc)
}

func (r *docstoreRepo) Create(ctx context.Context, p domain.Profile) error {
	fields := map[string]any{
		"uid":         p.UID,
		"email":       p.Email,
		"displayName": p.DisplayName,
		"photoURL":    p.PhotoURL,
		"createdAt":   docstore.ServerTimestamp,
	}
	if err := r.store.Set(ctx, Collection, p.UID, fields, true); err != nil {
		return fmt.Errorf("create profile %s: %w", p.UID, err)
	}
	return nil
}

func (r *docstoreRepo) SaveDetails(ctx context.Context, p domain.Profile) error {
	fields := map[string]any{
		"displayName":  p.DisplayName,
		"phone":        p.Phone,
		"addressLine1": p.AddressLine1,
		"addressLine2": p.AddressLine2,
		"city":         p.City,
		"postalCode":   p.PostalCode,
		"country":      p.Country,
	}
	if err := r.store.Set(ctx, Collection, p.UID, fields, true); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UID, err)
	}
	return nil
}

func (r *docstoreRepo) AddFavorite(ctx context.Context, uid string, id domain.ProductID) error {
	return r.store.Set(ctx, Collection, uid, map[string]any{"favorites": docstore.ArrayUnion(id.String())}, true)
}

func (r *docstoreRepo) RemoveFavorite(ctx context.Context, uid string, id domain.ProductID) error {
	return r.store.Set(ctx, Collection, uid, map[string]any{"favorites": docstore.ArrayRemove(id.String())}, true)
}

func (r *docstoreRepo) Subscribe(ctx context.Context, uid string, onChange func(*domain.Profile), onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, Collection, docstore.ByID(uid), func(docs []docstore.Document) {
		if len(docs) == 0 {
			onChange(nil)
			return
		}
		p, err := decode(docs[0])
		if err != nil {
			r.logger.Warn().Err(err).Str("uid", uid).Msg("profile repo: malformed profile")
			return
		}
		onChange(p)
	}, onError)
}

func decode(doc docstore.Document) (*domain.Profile, error) {
	var p domain.Profile
	if err := docstore.Decode(doc.Fields, &p); err != nil {
		return nil, err
	}
	p.UID = doc.ID
	return &p, nil
}
