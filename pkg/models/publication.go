package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Publication struct {
	bun.BaseModel `bun:"table:publications,alias:pub"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	BookCount int       `bun:",scanonly" json:"book_count,omitempty"`
}
