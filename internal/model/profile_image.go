package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileImage is a pointer to an object-storage blob; the blob itself is
// owned by the image service, the row only records where it lives.
type ProfileImage struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	StorageKey string    `db:"storage_key" json:"-"`
	URL        string    `db:"url" json:"url"`
	UploadDate time.Time `db:"upload_date" json:"upload_date"`
}
