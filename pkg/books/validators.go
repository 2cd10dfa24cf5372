package books

type CreatePayload struct {
	ISBN          string  `json:"isbn" mod:"isbn" validate:"required,book_isbn"`
	Title         string  `json:"title" mod:"trim" validate:"required,max=100"`
	Summary       string  `json:"summary" mod:"strip_html,trim" validate:"required"`
	Pages         *int    `json:"pages" validate:"omitempty,min=1"`
	Edition       *int    `json:"edition" validate:"omitempty,min=1"`
	PublishDate   *string `json:"publish_date" validate:"omitempty,date"`
	Language      string  `json:"language" default:"en" validate:"language"`
	PublicationID int     `json:"publication" validate:"required,min=1"`
	AuthorIDs     []int   `json:"authors" validate:"required,min=1,dive,min=1"`
	CategoryIDs   []int   `json:"categories" validate:"required,min=1,dive,min=1"`
}

type UpdatePayload struct {
	ISBN          *string `json:"isbn,omitempty" mod:"isbn" validate:"omitempty,book_isbn"`
	Title         *string `json:"title,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	Summary       *string `json:"summary,omitempty" mod:"strip_html,trim" validate:"omitempty,min=1"`
	Pages         *int    `json:"pages,omitempty" validate:"omitempty,min=1"`
	Edition       *int    `json:"edition,omitempty" validate:"omitempty,min=1"`
	PublishDate   *string `json:"publish_date,omitempty" validate:"omitempty,date"`
	Language      *string `json:"language,omitempty" validate:"omitempty,language"`
	PublicationID *int    `json:"publication,omitempty" validate:"omitempty,min=1"`
	AuthorIDs     []int   `json:"authors,omitempty" validate:"omitempty,min=1,dive,min=1"`
	CategoryIDs   []int   `json:"categories,omitempty" validate:"omitempty,min=1,dive,min=1"`
}

type ListQuery struct {
	Limit          int     `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset         int     `query:"offset" validate:"min=0"`
	Language       *string `query:"language" validate:"omitempty,language"`
	AuthorID       *int    `query:"author" validate:"omitempty,min=1"`
	CategoryID     *int    `query:"category" validate:"omitempty,min=1"`
	PublicationID  *int    `query:"publication" validate:"omitempty,min=1"`
	PublishDateGTE *string `query:"publish_date_gte" validate:"omitempty,date"`
	PublishDateLTE *string `query:"publish_date_lte" validate:"omitempty,date"`
	Search         *string `query:"search" validate:"omitempty,max=100"`
}
