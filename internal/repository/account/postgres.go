package account

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

const accountColumns = `uid::text, email, password_hash, display_name, photo_url, provider, created_at`

func (r *postgresRepo) Create(ctx context.Context, a domain.Account) (*domain.Account, error) {
	provider := a.Provider
	if provider == "" {
		provider = domain.ProviderPassword
	}
	q := `
INSERT INTO accounts (email, password_hash, display_name, photo_url, provider)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + accountColumns
	return r.scanAccount(r.pool.QueryRow(ctx, q,
		strings.ToLower(a.Email),
		a.PasswordHash,
		a.DisplayName,
		a.PhotoURL,
		provider,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1) LIMIT 1`
	return r.scanAccount(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByUID(ctx context.Context, uid string) (*domain.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE uid::text = $1 LIMIT 1`
	return r.scanAccount(r.pool.QueryRow(ctx, q, uid))
}

func (r *postgresRepo) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE accounts SET password_hash = $1 WHERE uid::text = $2`, passwordHash, uid)
	if err != nil {
		r.logger.Error().Err(err).Str("uid", uid).Msg("account repo: update password")
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.UID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.PhotoURL, &a.Provider, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error().Err(err).Msg("account repo: scan")
		return nil, err
	}
	return &a, nil
}
