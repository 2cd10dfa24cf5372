package authors

type CreatePayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=40,person_name"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=40,person_name"`
}

type UpdatePayload struct {
	FirstName *string `json:"first_name,omitempty" mod:"trim" validate:"omitempty,max=40,person_name"`
	LastName  *string `json:"last_name,omitempty" mod:"trim" validate:"omitempty,max=40,person_name"`
}

type ListQuery struct {
	Limit  int     `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset int     `query:"offset" validate:"min=0"`
	Search *string `query:"search" validate:"omitempty,max=100"`
}
