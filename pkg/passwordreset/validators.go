package passwordreset

type RequestPayload struct {
	Email string `json:"email" mod:"trim" validate:"required,email"`
}

type ConfirmPayload struct {
	NewPassword     string `json:"new_password" validate:"required,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,max=128"`
}
