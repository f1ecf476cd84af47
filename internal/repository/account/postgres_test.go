package account

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/migrate"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, zerolog.Nop())
	created, err := repo.Create(ctx, domain.Account{Email: "Valentine@Example.com", PasswordHash: "hash", DisplayName: "Val"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.UID == "" || created.Email != "valentine@example.com" || created.Provider != domain.ProviderPassword {
		t.Fatalf("unexpected account %+v", created)
	}

	byEmail, err := repo.GetByEmail(ctx, "VALENTINE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.UID != created.UID {
		t.Fatalf("email lookup mismatch %+v", byEmail)
	}

	if _, err := repo.Create(ctx, domain.Account{Email: "valentine@example.com"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if err := repo.UpdatePassword(ctx, created.UID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	byUID, err := repo.GetByUID(ctx, created.UID)
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if byUID.PasswordHash != "new-hash" {
		t.Fatalf("password not updated: %+v", byUID)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE tokens, accounts CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
