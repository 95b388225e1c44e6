package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, email string, patch model.UserPatch) error
	Ping(ctx context.Context) error
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, password, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING account_created, account_updated
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Password, user.FirstName, user.LastName,
	).Scan(&user.AccountCreated, &user.AccountUpdated)
	if err != nil {
		// The unique index on email is the real arbiter for concurrent
		// duplicate registrations; exactly one insert wins.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, email, password, first_name, last_name, is_verified,
		       account_created, account_updated
		FROM users WHERE email = $1
	`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, email string, patch model.UserPatch) error {
	var setClauses []string
	var args []interface{}
	argId := 1

	if patch.FirstName != nil {
		setClauses = append(setClauses, fmt.Sprintf("first_name = $%d", argId))
		args = append(args, *patch.FirstName)
		argId++
	}
	if patch.LastName != nil {
		setClauses = append(setClauses, fmt.Sprintf("last_name = $%d", argId))
		args = append(args, *patch.LastName)
		argId++
	}
	if patch.Password != nil {
		setClauses = append(setClauses, fmt.Sprintf("password = $%d", argId))
		args = append(args, *patch.Password)
		argId++
	}

	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "account_updated = now()")

	query := fmt.Sprintf("UPDATE users SET %s WHERE email = $%d",
		strings.Join(setClauses, ", "), argId)
	args = append(args, email)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *postgresUserRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return apperr.ErrUnavailable
	}
	return nil
}
