package inbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/metrics"
	"valentine-storefront/internal/notify"
	messagerepo "valentine-storefront/internal/repository/message"
)

var (
	ann   = &domain.Identity{UID: "ann", Email: "ann@example.com", DisplayName: "Ann"}
	roses = domain.Product{ID: domain.StaticProductID(1), Name: "Red Roses", Price: decimal.NewFromInt(20)}
)

// countingRepo records MarkRead calls and can fail them.
type countingRepo struct {
	messagerepo.Repository
	mu      sync.Mutex
	marks   map[string]int
	failAck bool
}

func newCountingRepo() *countingRepo {
	return &countingRepo{
		Repository: messagerepo.NewDocstore(docstore.NewMemory(), zerolog.Nop()),
		marks:      map[string]int{},
	}
}

func (r *countingRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	r.marks[id]++
	fail := r.failAck
	r.mu.Unlock()
	if fail {
		return errors.New("permission denied")
	}
	return r.Repository.MarkRead(ctx, id)
}

func (r *countingRepo) markCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marks[id]
}

func TestAskAnswerList(t *testing.T) {
	ctx := context.Background()
	events := &notify.Recorder{}
	svc := New(newCountingRepo(), events, zerolog.Nop())

	_, err := svc.Ask(ctx, nil, roses, "Do they smell nice?")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = svc.Ask(ctx, ann, roses, "   ")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))

	m, err := svc.Ask(ctx, ann, roses, "Do they smell nice?")
	require.NoError(t, err)
	assert.Equal(t, "static:1", m.ProductID)
	assert.Equal(t, "Red Roses", m.ProductName)
	assert.False(t, m.IsContactMessage)

	answered, err := svc.Answer(ctx, m.ID, "Very!")
	require.NoError(t, err)
	assert.True(t, answered.Unread())

	list, err := svc.List(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, UnreadCount(list))

	_, err = svc.Answer(ctx, "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, events.Events(), 1)
	assert.Equal(t, notify.TypeQuestionAsked, events.Events()[0].Type)
}

func TestContact(t *testing.T) {
	ctx := context.Background()
	events := &notify.Recorder{}
	svc := New(newCountingRepo(), events, zerolog.Nop())

	_, err := svc.Contact(ctx, nil, ContactInput{Name: "A", Email: "bad", Message: ""})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)

	guest, err := svc.Contact(ctx, nil, ContactInput{Name: "Guest", Email: "g@example.com", Message: "Do you ship abroad?"})
	require.NoError(t, err)
	assert.True(t, guest.IsContactMessage)
	assert.Empty(t, guest.UserID)

	signedIn, err := svc.Contact(ctx, ann, ContactInput{Name: "Ann", Email: "ann@example.com", Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "ann", signedIn.UserID)

	assert.Len(t, events.Events(), 2)
}

func TestUnreadCountRule(t *testing.T) {
	msgs := []domain.Message{
		{ID: "1", Answer: "yes", UserHasRead: false},
		{ID: "2", Answer: "yes", UserHasRead: true},
		{ID: "3", Answer: "   "},
		{ID: "4"},
	}
	assert.Equal(t, 2, UnreadCount(msgs))
	msgs[0].UserHasRead = true
	msgs[2].UserHasRead = true
	assert.Equal(t, 0, UnreadCount(msgs))
}

func TestWatcherAcknowledgesOnce(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	svc := New(repo, nil, zerolog.Nop())

	m, err := svc.Ask(ctx, ann, roses, "Vase included?")
	require.NoError(t, err)

	var mu sync.Mutex
	var states []State
	w := NewWatcher(repo, nil, zerolog.Nop())
	require.NoError(t, w.Start(ctx, ann, func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}))
	defer w.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) > 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, w.Unread())

	_, err = svc.Answer(ctx, m.ID, "Yes")
	require.NoError(t, err)

	// The answer is seen as unread once, acknowledged, and the next snapshot drops the count.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range states {
			if s.Unread == 1 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return w.Unread() == 0 }, time.Second, 5*time.Millisecond)

	w.Close()
	assert.Equal(t, 1, repo.markCount(m.ID))

	got, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.UserHasRead)
}

func TestWatcherSwallowsAckFailures(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	repo.failAck = true
	svc := New(repo, nil, zerolog.Nop())
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	msg, err := svc.Ask(ctx, ann, roses, "Gift wrap?")
	require.NoError(t, err)
	_, err = svc.Answer(ctx, msg.ID, "Sure")
	require.NoError(t, err)

	w := NewWatcher(repo, m, zerolog.Nop())
	require.NoError(t, w.Start(ctx, ann, nil))
	require.Eventually(t, func() bool { return w.Unread() == 1 }, time.Second, 5*time.Millisecond)

	// Another snapshot for the same unread message does not retry.
	_, err = svc.Ask(ctx, ann, roses, "Second question")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(w.State().Messages) == 2 }, time.Second, 5*time.Millisecond)

	w.Close()
	assert.Equal(t, 1, repo.markCount(msg.ID))
	assert.Equal(t, 1, w.Unread())
}

func TestWatcherGuest(t *testing.T) {
	w := NewWatcher(newCountingRepo(), nil, zerolog.Nop())
	require.NoError(t, w.Start(context.Background(), nil, nil))
	assert.Equal(t, 0, w.Unread())
	w.Close()
}
