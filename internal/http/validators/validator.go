package validators

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/zephyros1603/urbanup/internal/errors"
)

// RequestValidator plugs go-playground/validator into echo so handlers can
// call c.Validate on bound DTOs.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}
