package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/jmoiron/sqlx"
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.VerificationToken) error
	FindByToken(ctx context.Context, token string) (*model.VerificationToken, error)
	MarkConsumed(ctx context.Context, email, token string) error
}

type postgresTokenRepository struct {
	db *sqlx.DB
}

func NewPostgresTokenRepository(db *sqlx.DB) TokenRepository {
	return &postgresTokenRepository{db: db}
}

func (r *postgresTokenRepository) Create(ctx context.Context, token *model.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (id, email, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		token.ID, token.Email, token.Token, token.ExpiresAt,
	).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}

	return nil
}

func (r *postgresTokenRepository) FindByToken(ctx context.Context, token string) (*model.VerificationToken, error) {
	var t model.VerificationToken
	query := `
		SELECT id, email, token, expires_at, link_verified, created_at
		FROM verification_tokens WHERE token = $1
	`
	if err := r.db.GetContext(ctx, &t, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select verification token: %w", err)
	}

	return &t, nil
}

// MarkConsumed flips the user's verified flag and the token's link_verified
// flag in one transaction. The user update runs first: it is the externally
// visible effect, so if the two writes were ever split by a crash the
// repaired state errs on the side of a verified user.
func (r *postgresTokenRepository) MarkConsumed(ctx context.Context, email, token string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin consume tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET is_verified = true, account_updated = now() WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE verification_tokens SET link_verified = true WHERE token = $1`, token); err != nil {
		return fmt.Errorf("mark token consumed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consume tx: %w", err)
	}

	return nil
}
