package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AuthToken is a login session. Only a digest of the token is stored; the
// plain token is returned to the client once, at login.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:at"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int       `json:"user_id"`
	TokenKey  string    `json:"token_key"`
	Digest    string    `json:"-"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

func (t *AuthToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
