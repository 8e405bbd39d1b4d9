package domain

import (
	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/dailyhabit/internal/datekey"
)

// NewValidator returns a validator that also understands the "datekey" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		return datekey.Valid(fl.Field().String())
	})
	return v
}
