package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"valentine-storefront/internal/domain"
)

// Firestore adapts a Cloud Firestore client to Store.
type Firestore struct {
	client *firestore.Client
	logger zerolog.Logger
}

// NewFirestore connects to projectID. An empty credentialsFile falls back to
// application default credentials.
func NewFirestore(ctx context.Context, projectID, credentialsFile string, logger zerolog.Logger) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Firestore{client: client, logger: logger}, nil
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, domain.ErrNotFound
		}
		return Document{}, err
	}
	return fromSnapshot(snap)
}

func (f *Firestore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	data := toFirestore(fields)
	ref := f.client.Collection(collection).Doc(id)
	var err error
	if merge {
		_, err = ref.Set(ctx, data, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, data)
	}
	return err
}

func (f *Firestore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	updates := make([]firestore.Update, 0, len(fields))
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: toFirestoreValue(fields[k])})
	}
	_, err := f.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	return err
}

func (f *Firestore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, toFirestore(fields))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (f *Firestore) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	if filter != nil && filter.Field == IDField {
		doc, err := f.Get(ctx, collection, fmt.Sprint(filter.Value))
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}
	snaps, err := f.query(collection, filter).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return fromSnapshots(snaps)
}

func (f *Firestore) Subscribe(ctx context.Context, collection string, filter *Filter, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(collection, filter, onSnapshot, onError)
	stop := func() {
		sub.stop()
		cancel()
	}

	if filter != nil && filter.Field == IDField {
		it := f.client.Collection(collection).Doc(fmt.Sprint(filter.Value)).Snapshots(ctx)
		go func() {
			defer it.Stop()
			for {
				snap, err := it.Next()
				if err != nil {
					f.forward(ctx, sub, err)
					return
				}
				if !snap.Exists() {
					sub.push(nil)
					continue
				}
				doc, err := fromSnapshot(snap)
				if err != nil {
					f.forward(ctx, sub, err)
					return
				}
				sub.push([]Document{doc})
			}
		}()
	} else {
		it := f.query(collection, filter).Snapshots(ctx)
		go func() {
			defer it.Stop()
			for {
				qs, err := it.Next()
				if err != nil {
					f.forward(ctx, sub, err)
					return
				}
				snaps, err := qs.Documents.GetAll()
				if err != nil {
					f.forward(ctx, sub, err)
					return
				}
				docs, err := fromSnapshots(snaps)
				if err != nil {
					f.forward(ctx, sub, err)
					return
				}
				sub.push(docs)
			}
		}()
	}

	go sub.run(ctx, cancel)
	return stop, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) query(collection string, filter *Filter) firestore.Query {
	q := f.client.Collection(collection).Query
	if filter != nil {
		q = q.Where(filter.Field, "==", filter.Value)
	}
	return q.OrderBy(firestore.DocumentID, firestore.Asc)
}

// forward reports iterator errors unless they come from our own cancellation.
func (f *Firestore) forward(ctx context.Context, sub *subscription, err error) {
	if ctx.Err() != nil || status.Code(err) == codes.Canceled {
		return
	}
	f.logger.Error().Err(err).Str("collection", sub.collection).Msg("firestore listener failed")
	sub.fail(err)
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (Document, error) {
	fields, err := normalize(snap.Data())
	if err != nil {
		return Document{}, err
	}
	return Document{ID: snap.Ref.ID, Fields: fields}, nil
}

func fromSnapshots(snaps []*firestore.DocumentSnapshot) ([]Document, error) {
	out := make([]Document, 0, len(snaps))
	for _, s := range snaps {
		doc, err := fromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func toFirestore(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = toFirestoreValue(v)
	}
	return out
}

func toFirestoreValue(v any) any {
	switch op := v.(type) {
	case serverTimestamp:
		return firestore.ServerTimestamp
	case ArrayOp:
		if op.Union {
			return firestore.ArrayUnion(op.Values...)
		}
		return firestore.ArrayRemove(op.Values...)
	default:
		return v
	}
}
