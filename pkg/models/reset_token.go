package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ResetToken struct {
	bun.BaseModel `bun:"table:reset_tokens,alias:rt"`

	Token     string    `bun:",pk" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int       `json:"user_id"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

func (t *ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
