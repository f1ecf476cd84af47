package inbox

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/metrics"
	messagerepo "valentine-storefront/internal/repository/message"
)

// State is what the watcher reports after each snapshot.
type State struct {
	Unread   int              `json:"unread"`
	Messages []domain.Message `json:"messages"`
}

// Watcher follows one identity's messages. The unread count is recomputed
// from every snapshot; each newly seen unread message gets one best-effort
// read acknowledgement.
type Watcher struct {
	repo       messagerepo.Repository
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	ackTimeout time.Duration

	mu       sync.Mutex
	gen      int
	acked    map[string]bool
	state    State
	stop     docstore.Unsubscribe
	onChange func(State)
	acks     sync.WaitGroup
}

func NewWatcher(repo messagerepo.Repository, m *metrics.Metrics, logger zerolog.Logger) *Watcher {
	return &Watcher{
		repo:       repo,
		logger:     logger,
		metrics:    m,
		ackTimeout: 5 * time.Second,
		acked:      map[string]bool{},
	}
}

// Start subscribes to who's messages, releasing any earlier subscription.
// A nil identity watches nothing.
func (w *Watcher) Start(ctx context.Context, who *domain.Identity, onChange func(State)) error {
	w.Close()

	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.acked = map[string]bool{}
	w.state = State{Messages: []domain.Message{}}
	w.onChange = onChange
	w.mu.Unlock()
	if who == nil {
		return nil
	}

	uid := who.UID
	stop, err := w.repo.SubscribeByUser(ctx, uid, func(messages []domain.Message) {
		w.observe(gen, messages)
	}, func(err error) {
		w.logger.Error().Err(err).Str("uid", uid).Msg("inbox: subscription ended")
	})
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()
	return nil
}

// observe ignores snapshots from a subscription that was since replaced or closed.
func (w *Watcher) observe(gen int, messages []domain.Message) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.state = State{Unread: UnreadCount(messages), Messages: messages}
	var toAck []string
	for _, m := range messages {
		if m.Unread() && !w.acked[m.ID] {
			w.acked[m.ID] = true
			toAck = append(toAck, m.ID)
		}
	}
	w.acks.Add(len(toAck))
	cb, state := w.onChange, w.state
	w.mu.Unlock()

	for _, id := range toAck {
		w.acknowledge(id)
	}
	if cb != nil {
		cb(state)
	}
}

// acknowledge must follow a matching acks.Add. It runs detached from the subscription so a slow write never
// delays snapshot delivery. Failures are logged and not retried.
func (w *Watcher) acknowledge(id string) {
	go func() {
		defer w.acks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), w.ackTimeout)
		defer cancel()
		if err := w.repo.MarkRead(ctx, id); err != nil {
			w.metrics.AckFailed()
			w.logger.Warn().Err(err).Str("message_id", id).Msg("inbox: read acknowledgement failed")
		}
	}()
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{Unread: w.state.Unread, Messages: append([]domain.Message{}, w.state.Messages...)}
}

func (w *Watcher) Unread() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Unread
}

// Close releases the subscription and waits for in-flight acknowledgements.
func (w *Watcher) Close() {
	w.mu.Lock()
	w.gen++
	stop := w.stop
	w.stop = nil
	w.mu.Unlock()
	if stop != nil {
		stop()
	}
	w.acks.Wait()
}
