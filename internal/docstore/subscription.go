package docstore

import (
	"context"
	"sync"
)

// subscription delivers snapshots on its own goroutine. Writers never block:
// a newer snapshot replaces one that has not been delivered yet.
type subscription struct {
	collection string
	filter     *Filter
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	mu      sync.Mutex
	pending []Document
	errored error
	has     bool

	// refreshMu serializes read-then-push so an older read never lands last.
	refreshMu sync.Mutex

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscription(collection string, filter *Filter, onSnapshot SnapshotFunc, onError ErrorFunc) *subscription {
	return &subscription{
		collection: collection,
		filter:     filter,
		onSnapshot: onSnapshot,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (s *subscription) push(docs []Document) {
	s.mu.Lock()
	s.pending = docs
	s.has = true
	s.mu.Unlock()
	s.signal()
}

func (s *subscription) fail(err error) {
	s.mu.Lock()
	s.errored = err
	s.mu.Unlock()
	s.signal()
}

func (s *subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscription) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) run(ctx context.Context, release func()) {
	defer release()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.wake:
		}
		s.mu.Lock()
		docs, has, err := s.pending, s.has, s.errored
		s.pending, s.has = nil, false
		s.mu.Unlock()

		if s.stopped() {
			return
		}
		if err != nil {
			if s.onError != nil {
				s.onError(err)
			}
			return
		}
		if has && s.onSnapshot != nil {
			s.onSnapshot(docs)
		}
	}
}
