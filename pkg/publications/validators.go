package publications

type CreatePayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=40"`
}

type UpdatePayload struct {
	Name *string `json:"name,omitempty" mod:"trim" validate:"omitempty,min=1,max=40"`
}

type ListQuery struct {
	Limit  int     `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset int     `query:"offset" validate:"min=0"`
	Search *string `query:"search" validate:"omitempty,max=100"`
}
