package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"valentine-storefront/internal/domain"
)

// Memory is an in-process Store used by tests and local runs.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[int]*subscription
	nextSub     int
	now         func() time.Time
	closed      bool
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[int]*subscription),
		now:         time.Now,
	}
}

// SetClock overrides the clock used for ServerTimestamp.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.collections[collection][id]
	if !ok {
		return Document{}, domain.ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, fields map[string]any, merge bool) error {
	m.mu.Lock()
	var base map[string]any
	if merge {
		base = m.collections[collection][id]
	}
	next, err := applyPatch(base, fields, m.now())
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.put(collection, id, next)
	m.mu.Unlock()
	m.publish(collection)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	base, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	next, err := applyPatch(base, fields, m.now())
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.put(collection, id, next)
	m.mu.Unlock()
	m.publish(collection)
	return nil
}

func (m *Memory) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	next, err := applyPatch(nil, fields, m.now())
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.put(collection, id, next)
	m.mu.Unlock()
	m.publish(collection)
	return id, nil
}

// Delete removes a document. It is not part of Store; tests use it to
// simulate external deletes.
func (m *Memory) Delete(_ context.Context, collection, id string) {
	m.mu.Lock()
	delete(m.collections[collection], id)
	m.mu.Unlock()
	m.publish(collection)
}

func (m *Memory) Query(_ context.Context, collection string, filter *Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query(collection, filter), nil
}

func (m *Memory) Subscribe(ctx context.Context, collection string, filter *Filter, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	sub := newSubscription(collection, filter, onSnapshot, onError)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, context.Canceled
	}
	key := m.nextSub
	m.nextSub++
	m.subs[key] = sub
	sub.push(m.query(collection, filter))
	m.mu.Unlock()

	go sub.run(ctx, func() {
		m.mu.Lock()
		delete(m.subs, key)
		m.mu.Unlock()
	})
	return sub.stop, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	subs := make([]*subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()
	for _, s := range subs {
		s.stop()
	}
	return nil
}

func (m *Memory) put(collection, id string, fields map[string]any) {
	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		m.collections[collection] = coll
	}
	coll[id] = fields
}

// publish must be called without m.mu held.
func (m *Memory) publish(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		if sub.collection != collection || sub.stopped() {
			continue
		}
		sub.push(m.query(collection, sub.filter))
	}
}

func (m *Memory) query(collection string, filter *Filter) []Document {
	coll := m.collections[collection]
	out := make([]Document, 0, len(coll))
	for id, fields := range coll {
		doc := Document{ID: id, Fields: fields}
		if !matches(doc, filter) {
			continue
		}
		out = append(out, Document{ID: id, Fields: cloneFields(fields)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneFields(fields map[string]any) map[string]any {
	out, err := normalize(fields)
	if err != nil {
		// Stored fields are already normalized, so this cannot fail.
		return map[string]any{}
	}
	return out
}
