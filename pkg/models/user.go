package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int        `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Username     string     `bun:",nullzero" json:"username"`
	Email        string     `bun:",nullzero" json:"email"`
	Nickname     *string    `json:"nickname,omitempty"`
	PasswordHash string     `json:"-"` // Never expose password hash
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsOwnerOrStaff reports whether u may act on a resource owned by ownerID.
func (u *User) IsOwnerOrStaff(ownerID int) bool {
	if u == nil {
		return false
	}
	return u.IsStaff || u.IsSuperuser || u.ID == ownerID
}

// CanModerate reports whether u has staff rights. Superusers always do.
func (u *User) CanModerate() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}
