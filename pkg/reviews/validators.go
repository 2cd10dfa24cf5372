package reviews

type CreatePayload struct {
	BookID int    `json:"book" validate:"required,min=1"`
	Stars  int    `json:"stars" validate:"required,min=1,max=5"`
	Review string `json:"review" mod:"strip_html,trim" validate:"required"`
}

type UpdatePayload struct {
	Stars  *int    `json:"stars,omitempty" validate:"omitempty,min=1,max=5"`
	Review *string `json:"review,omitempty" mod:"strip_html,trim" validate:"omitempty,min=1"`
}

type ListQuery struct {
	Limit    int  `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset   int  `query:"offset" validate:"min=0"`
	BookID   *int `query:"book" validate:"omitempty,min=1"`
	AuthorID *int `query:"author" validate:"omitempty,min=1"`
}
