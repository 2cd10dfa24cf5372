package users

// RegisterPayload represents the request body for signing up.
type RegisterPayload struct {
	Username        string  `json:"username" mod:"trim" validate:"required,max=150,ascii_username"`
	Email           string  `json:"email" mod:"trim" validate:"required,email,max=254"`
	Nickname        *string `json:"nickname" mod:"trim" validate:"omitempty,max=50,nickname"`
	Password        string  `json:"password" validate:"required,max=128"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,max=128"`
}

type EmailChangePayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type PasswordChangePayload struct {
	Password        string `json:"password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,max=128"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Limit  int     `query:"limit" default:"20" validate:"min=1,max=100"`
	Offset int     `query:"offset" validate:"min=0"`
	Search *string `query:"search"`
}
