package auth

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// RegisterRequest is the payload checked before creating an account.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=64"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}
