package review

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

type docstoreRepo struct {
	store  docstore.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewDocstore(store docstore.Store, logger zerolog.Logger) Repository {
	return &docstoreRepo{store: store, logger: logger, now: time.Now}
}

// record is the stored shape. Older writers used several timestamp encodings.
type record struct {
	ProductID       string  `json:"productId"`
	OrderID         string  `json:"orderId"`
	UserID          string  `json:"userId"`
	UserName        string  `json:"userName"`
	Rating          int     `json:"rating"`
	Message         string  `json:"message"`
	CreatedAt       any     `json:"createdAt"`
	CreatedAtMillis float64 `json:"createdAtMillis"`
}

func (r *docstoreRepo) Add(ctx context.Context, rv domain.Review) (*domain.Review, error) {
	fields := map[string]any{
		"productId":       rv.ProductID,
		"orderId":         rv.OrderID,
		"userId":          rv.UserID,
		"userName":        rv.UserName,
		"rating":          rv.Rating,
		"message":         rv.Message,
		"createdAt":       docstore.ServerTimestamp,
		"createdAtMillis": r.now().UnixMilli(),
	}
	id, err := r.store.Add(ctx, Collection, fields)
	if err != nil {
		return nil, fmt.Errorf("add review for %s: %w", rv.ProductID, err)
	}
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, err
	}
	out, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *docstoreRepo) List(ctx context.Context) ([]domain.Review, error) {
	docs, err := r.store.Query(ctx, Collection, nil)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return r.decodeAll(docs), nil
}

func (r *docstoreRepo) Subscribe(ctx context.Context, onChange func([]domain.Review), onError docstore.ErrorFunc) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, Collection, nil, func(docs []docstore.Document) {
		onChange(r.decodeAll(docs))
	}, onError)
}

func (r *docstoreRepo) decodeAll(docs []docstore.Document) []domain.Review {
	out := make([]domain.Review, 0, len(docs))
	for _, d := range docs {
		rv, err := decode(d)
		if err != nil {
			r.logger.Warn().Err(err).Str("id", d.ID).Msg("review repo: skipping malformed review")
			continue
		}
		out = append(out, rv)
	}
	return out
}

func decode(doc docstore.Document) (domain.Review, error) {
	var rec record
	if err := docstore.Decode(doc.Fields, &rec); err != nil {
		return domain.Review{}, err
	}
	return domain.Review{
		ID:        doc.ID,
		ProductID: rec.ProductID,
		OrderID:   rec.OrderID,
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Rating:    rec.Rating,
		Message:   rec.Message,
		CreatedAt: ResolveTimestamp(rec.CreatedAt, rec.CreatedAtMillis),
	}, nil
}

// ResolveTimestamp reads the first usable representation: a native time, an
// RFC 3339 string, epoch milliseconds, a {seconds, nanoseconds} map, and
// finally fallbackMillis. Zero means unknown.
func ResolveTimestamp(v any, fallbackMillis float64) time.Time {
	switch t := v.(type) {
	case time.Time:
		if !t.IsZero() {
			return t.UTC()
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
	case float64:
		if t > 0 {
			return time.UnixMilli(int64(t)).UTC()
		}
	case int64:
		if t > 0 {
			return time.UnixMilli(t).UTC()
		}
	case map[string]any:
		secs, okS := number(t["seconds"])
		if !okS {
			secs, okS = number(t["_seconds"])
		}
		if okS {
			nanos, okN := number(t["nanoseconds"])
			if !okN {
				nanos, _ = number(t["_nanoseconds"])
			}
			return time.Unix(int64(secs), int64(nanos)).UTC()
		}
	}
	if fallbackMillis > 0 {
		return time.UnixMilli(int64(fallbackMillis)).UTC()
	}
	return time.Time{}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
