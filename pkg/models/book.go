package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	LanguageEnglish  = "en"
	LanguageChinese  = "zh"
	LanguageGerman   = "de"
	LanguageSpanish  = "es"
	LanguageJapanese = "ja"
	LanguageRussian  = "ru"
	LanguageArabic   = "ar"
)

// Languages lists every language a book may be catalogued in.
var Languages = []string{
	LanguageEnglish,
	LanguageChinese,
	LanguageGerman,
	LanguageSpanish,
	LanguageJapanese,
	LanguageRussian,
	LanguageArabic,
}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ISBN          string    `bun:"isbn,nullzero" json:"isbn"`
	Title         string    `bun:",nullzero" json:"title"`
	Summary       string    `json:"summary"`
	Pages         *int      `json:"pages"`
	Edition       *int      `json:"edition"`
	PublishDate   *string   `json:"publish_date"` // YYYY-MM-DD
	Language      string    `bun:",nullzero" json:"language"`
	PublicationID int       `bun:",nullzero" json:"publication_id"`

	// Derived on read, never stored.
	ReviewsStarAverage float64 `bun:",scanonly" json:"reviews_star_average"`
	AvailableInstances int     `bun:",scanonly" json:"available_instances"`
	TotalInstances     int     `bun:",scanonly" json:"total_instances"`

	Publication *Publication `bun:"rel:belongs-to,join:publication_id=id" json:"publication,omitempty"`
	Authors     []*Author    `bun:"m2m:book_authors,join:Book=Author" json:"authors,omitempty"`
	Categories  []*Category  `bun:"m2m:book_categories,join:Book=Category" json:"categories,omitempty"`
}

type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	BookID   int     `bun:",pk"`
	Book     *Book   `bun:"rel:belongs-to,join:book_id=id"`
	AuthorID int     `bun:",pk"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id"`
}

type BookCategory struct {
	bun.BaseModel `bun:"table:book_categories,alias:bc"`

	BookID     int       `bun:",pk"`
	Book       *Book     `bun:"rel:belongs-to,join:book_id=id"`
	CategoryID int       `bun:",pk"`
	Category   *Category `bun:"rel:belongs-to,join:category_id=id"`
}
