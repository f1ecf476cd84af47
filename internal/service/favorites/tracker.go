package favorites

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	profilerepo "valentine-storefront/internal/repository/profile"
)

// Tracker follows one identity's favorites through a live subscription.
// Snapshots replace the local set; Toggle updates it immediately and never
// rolls back.
type Tracker struct {
	svc    *Service
	logger zerolog.Logger

	mu       sync.Mutex
	identity *domain.Identity
	set      domain.FavoriteSet
	stop     docstore.Unsubscribe
	onChange func(domain.FavoriteSet)
}

func NewTracker(profiles profilerepo.Repository, logger zerolog.Logger) *Tracker {
	return &Tracker{svc: New(profiles, logger), logger: logger, set: domain.FavoriteSet{}}
}

// Start releases any previous subscription and follows who. A nil identity
// tracks nothing. onChange, if set, receives a copy after every change.
func (t *Tracker) Start(ctx context.Context, who *domain.Identity, onChange func(domain.FavoriteSet)) error {
	t.Close()

	t.mu.Lock()
	t.identity = who
	t.set = domain.FavoriteSet{}
	t.onChange = onChange
	t.mu.Unlock()
	if who == nil {
		t.notify()
		return nil
	}

	uid := who.UID
	stop, err := t.svc.profiles.Subscribe(ctx, uid, func(p *domain.Profile) {
		next := domain.FavoriteSet{}
		if p != nil {
			next = domain.NewFavoriteSet(p.Favorites)
		}
		t.mu.Lock()
		if t.identity == nil || t.identity.UID != uid {
			t.mu.Unlock()
			return
		}
		t.set = next
		t.mu.Unlock()
		t.notify()
	}, func(err error) {
		t.logger.Error().Err(err).Str("uid", uid).Msg("favorites: subscription ended")
	})
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.stop = stop
	t.mu.Unlock()
	return nil
}

func (t *Tracker) Favorites() domain.FavoriteSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set.Clone()
}

// Toggle flips id locally, then writes it. A write error is returned but the
// local change stays.
func (t *Tracker) Toggle(ctx context.Context, id domain.ProductID) (bool, error) {
	t.mu.Lock()
	if t.identity == nil {
		t.mu.Unlock()
		return false, domain.ErrAuthRequired
	}
	uid := t.identity.UID
	favorite := t.set.Toggle(id)
	t.mu.Unlock()
	t.notify()

	return favorite, t.svc.write(ctx, uid, id, favorite)
}

// Close releases the subscription. It is safe to call repeatedly.
func (t *Tracker) Close() {
	t.mu.Lock()
	stop := t.stop
	t.stop = nil
	t.identity = nil
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (t *Tracker) notify() {
	t.mu.Lock()
	cb := t.onChange
	snapshot := t.set.Clone()
	t.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}
