package service

import (
	"github.com/go-playground/validator/v10"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
)

// validate reads the same `binding` tags gin uses, so request structs bound
// by controllers are checked again when services are called directly.
var validate = newValidator()

const subCentMessage = "must not have more than two decimal places"

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	apperrors.RegisterJSONTagNames(v)
	return v
}

func validateStruct(s interface{}, message string) error {
	if err := validate.Struct(s); err != nil {
		appErr := apperrors.FromBinding(err)
		appErr.Message = message
		return appErr
	}
	return nil
}
