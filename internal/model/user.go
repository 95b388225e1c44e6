package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Password       string    `db:"password" json:"-"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	IsVerified     bool      `db:"is_verified" json:"-"`
	AccountCreated time.Time `db:"account_created" json:"account_created"`
	AccountUpdated time.Time `db:"account_updated" json:"account_updated"`
}

// UserPatch is an update where every field is present-or-absent, so that
// "leave unchanged" and "set to empty" stay distinguishable. Password, when
// present, is the already-hashed value.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Password  *string
}

func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Password == nil
}
