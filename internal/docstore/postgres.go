package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
)

const notifyChannel = "documents_changed"

// Postgres keeps documents in a jsonb table. A trigger publishes the
// collection name on every write; one LISTEN connection fans changes out to
// subscribers, which re-read their query.
type Postgres struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	subs    map[int]*pgSubscription
	nextSub int
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type pgSubscription struct {
	*subscription
	ctx context.Context
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) *Postgres {
	return &Postgres{
		pool:   pool,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]*pgSubscription),
	}
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT fields FROM documents WHERE collection = $1 AND id = $2`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, domain.ErrNotFound
		}
		return Document{}, err
	}
	fields, err := unmarshalFields(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	return p.write(ctx, collection, id, fields, merge, true)
}

func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return p.write(ctx, collection, id, fields, true, false)
}

func (p *Postgres) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	next, err := applyPatch(nil, fields, p.now())
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return "", err
	}
	if _, err := p.pool.Exec(ctx, `
INSERT INTO documents (collection, id, fields)
VALUES ($1, $2, $3::jsonb)
`, collection, id, raw); err != nil {
		return "", err
	}
	return id, nil
}

// write is a read-modify-write under a row lock so array ops and merges see
// the latest stored value.
func (p *Postgres) write(ctx context.Context, collection, id string, fields map[string]any, merge, upsert bool) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var base map[string]any
	var raw []byte
	err = tx.QueryRow(ctx, `
SELECT fields FROM documents
WHERE collection = $1 AND id = $2
FOR UPDATE
`, collection, id).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if !upsert {
			return domain.ErrNotFound
		}
	case err != nil:
		return err
	default:
		if merge {
			if base, err = unmarshalFields(raw); err != nil {
				return err
			}
		}
	}

	next, err := applyPatch(base, fields, p.now())
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO documents (collection, id, fields, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (collection, id) DO UPDATE SET
    fields = EXCLUDED.fields,
    updated_at = EXCLUDED.updated_at
`, collection, id, encoded); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case filter == nil:
		rows, err = p.pool.Query(ctx, `
SELECT id, fields FROM documents WHERE collection = $1 ORDER BY id
`, collection)
	case filter.Field == IDField:
		rows, err = p.pool.Query(ctx, `
SELECT id, fields FROM documents WHERE collection = $1 AND id = $2
`, collection, fmt.Sprint(filter.Value))
	default:
		contains, mErr := json.Marshal(map[string]any{filter.Field: filter.Value})
		if mErr != nil {
			return nil, mErr
		}
		rows, err = p.pool.Query(ctx, `
SELECT id, fields FROM documents
WHERE collection = $1 AND fields @> $2::jsonb
ORDER BY id
`, collection, contains)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := unmarshalFields(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	return out, rows.Err()
}

func (p *Postgres) Subscribe(ctx context.Context, collection string, filter *Filter, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	docs, err := p.Query(ctx, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot %s: %w", collection, err)
	}

	sub := &pgSubscription{subscription: newSubscription(collection, filter, onSnapshot, onError), ctx: ctx}
	sub.push(docs)

	p.mu.Lock()
	key := p.nextSub
	p.nextSub++
	p.subs[key] = sub
	if p.cancel == nil {
		p.startListener()
	}
	p.mu.Unlock()

	go sub.run(ctx, func() {
		p.mu.Lock()
		delete(p.subs, key)
		p.mu.Unlock()
	})
	return sub.stop, nil
}

// startListener must be called with p.mu held.
func (p *Postgres) startListener() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		backoff := 500 * time.Millisecond
		for {
			err := p.listen(ctx)
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("document listener dropped")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 10*time.Second {
				backoff *= 2
			}
		}
	}()
}

func (p *Postgres) listen(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	// Anything written while we were not listening is picked up here.
	p.refreshAll("")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		p.refreshAll(n.Payload)
	}
}

// refreshAll re-reads every subscription on collection; "" means all.
func (p *Postgres) refreshAll(collection string) {
	p.mu.Lock()
	targets := make([]*pgSubscription, 0, len(p.subs))
	for _, s := range p.subs {
		if collection == "" || s.collection == collection {
			targets = append(targets, s)
		}
	}
	p.mu.Unlock()

	for _, s := range targets {
		go p.refresh(s)
	}
}

func (p *Postgres) refresh(s *pgSubscription) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.stopped() || s.ctx.Err() != nil {
		return
	}
	docs, err := p.Query(s.ctx, s.collection, s.filter)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		p.logger.Error().Err(err).Str("collection", s.collection).Msg("subscription refresh failed")
		s.fail(err)
		return
	}
	s.push(docs)
}

func (p *Postgres) Close() error {
	p.mu.Lock()
	cancel := p.cancel
	subs := make([]*pgSubscription, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	return nil
}

func unmarshalFields(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
