package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SnehashisOrg/webapp/internal/apperr"
	"github.com/SnehashisOrg/webapp/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type ImageRepository interface {
	Create(ctx context.Context, image *model.ProfileImage) (*model.ProfileImage, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ProfileImage, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	ListKeys(ctx context.Context) ([]string, error)
}

type postgresImageRepository struct {
	db *sqlx.DB
}

func NewPostgresImageRepository(db *sqlx.DB) ImageRepository {
	return &postgresImageRepository{db: db}
}

func (r *postgresImageRepository) Create(ctx context.Context, image *model.ProfileImage) (*model.ProfileImage, error) {
	query := `
		INSERT INTO profile_images (id, user_id, file_name, storage_key, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING upload_date
	`
	err := r.db.QueryRowxContext(ctx, query,
		image.ID, image.UserID, image.FileName, image.StorageKey, image.URL,
	).Scan(&image.UploadDate)
	if err != nil {
		// unique index on user_id backstops the one-image-per-user rule
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("insert profile image: %w", err)
	}

	return image, nil
}

func (r *postgresImageRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ProfileImage, error) {
	var image model.ProfileImage
	query := `
		SELECT id, user_id, file_name, storage_key, url, upload_date
		FROM profile_images WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &image, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select profile image: %w", err)
	}

	return &image, nil
}

func (r *postgresImageRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profile_images WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete profile image: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *postgresImageRepository) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, `SELECT storage_key FROM profile_images`); err != nil {
		return nil, fmt.Errorf("list image keys: %w", err)
	}

	return keys, nil
}
