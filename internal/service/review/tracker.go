package review

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	reviewrepo "valentine-storefront/internal/repository/review"
)

// Tracker keeps per-product summaries of the global review stream.
type Tracker struct {
	repo   reviewrepo.Repository
	logger zerolog.Logger

	mu        sync.RWMutex
	summaries map[string]domain.ReviewSummary
	stop      docstore.Unsubscribe
}

func NewTracker(repo reviewrepo.Repository, logger zerolog.Logger) *Tracker {
	return &Tracker{repo: repo, logger: logger, summaries: map[string]domain.ReviewSummary{}}
}

// Start subscribes to every review. Summaries are rebuilt from each snapshot.
func (t *Tracker) Start(ctx context.Context) error {
	stop, err := t.repo.Subscribe(ctx, func(reviews []domain.Review) {
		next := Summarize(reviews)
		t.mu.Lock()
		t.summaries = next
		t.mu.Unlock()
	}, func(err error) {
		t.logger.Error().Err(err).Msg("reviews: subscription ended, serving last summaries")
	})
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.stop = stop
	t.mu.Unlock()
	return nil
}

// Summary returns the product's summary; a product without reviews has count 0.
func (t *Tracker) Summary(productID string) domain.ReviewSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.summaries[productID]; ok {
		return s
	}
	return domain.ReviewSummary{ProductID: productID, Latest: []domain.ReviewSnippet{}}
}

func (t *Tracker) Close() {
	t.mu.Lock()
	stop := t.stop
	t.stop = nil
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}
