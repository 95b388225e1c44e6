package model

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken is keyed by email rather than user id so the row can be
// minted as soon as registration commits. Consumed tokens are retained for
// audit, never deleted.
type VerificationToken struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Token        string    `db:"token"`
	ExpiresAt    time.Time `db:"expires_at"`
	LinkVerified bool      `db:"link_verified"`
	CreatedAt    time.Time `db:"created_at"`
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
