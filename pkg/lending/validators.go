package lending

type CreateInstancePayload struct {
	BookID int `json:"book_id" validate:"required,min=1"`
}

type ListInstancesQuery struct {
	Limit      int     `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset     int     `query:"offset" validate:"min=0"`
	BookID     *int    `query:"book" validate:"omitempty,min=1"`
	Status     *string `query:"status" validate:"omitempty,oneof=available borrowed"`
	BorrowerID *int    `query:"borrower" validate:"omitempty,min=1"`
	Overdue    *bool   `query:"overdue"`
}
