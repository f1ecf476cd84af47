package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Open returns the named backend. pool is only used by the postgres backend.
func Open(ctx context.Context, backend string, pool *pgxpool.Pool, firebaseProject, credentialsFile string, logger zerolog.Logger) (Store, error) {
	switch backend {
	case BackendPostgres:
		if pool == nil {
			return nil, errors.New("docstore: postgres backend needs a database pool")
		}
		return NewPostgres(pool, logger), nil
	case BackendFirestore:
		if firebaseProject == "" {
			return nil, errors.New("docstore: firestore backend needs a project id")
		}
		return NewFirestore(ctx, firebaseProject, credentialsFile, logger)
	case BackendMemory:
		logger.Warn().Msg("docstore: using in-memory backend, nothing is persisted")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("docstore: unknown backend %q", backend)
	}
}
