package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MinStars = 1
	MaxStars = 5
)

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	AuthorID  int       `bun:",nullzero" json:"author_id"`
	Stars     int       `json:"stars"`
	Review    string    `json:"review"`

	Author *User `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}
