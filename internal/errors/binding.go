package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FromBinding converts a gin binding failure into a validation AppError with
// one entry per offending field. Field names are the JSON/form names when the
// validator was set up with RegisterJSONTagNames.
func FromBinding(err error) *AppError {
	var ve validator.ValidationErrors
	if stderrors.As(err, &ve) {
		fields := make([]FieldError, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, Field(fieldName(fe), fieldMessage(fe)))
		}
		return Validation(ValidationInvalidInput, "Invalid input", fields...).Wrap(err)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return Validation(ValidationInvalidInput, "Invalid input",
			Field(typeErr.Field, "must be a "+typeErr.Type.String())).Wrap(err)
	}

	var numErr *strconv.NumError
	if stderrors.As(err, &numErr) {
		return Validation(ValidationInvalidInput, "Invalid input",
			Field("body", fmt.Sprintf("%q is not a valid number", numErr.Num))).Wrap(err)
	}

	return Validation(ValidationInvalidInput, "Malformed request body").Wrap(err)
}

// RegisterJSONTagNames makes v report fields by their json (or form) tag.
func RegisterJSONTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// UseJSONFieldNamesInBinding applies RegisterJSONTagNames to gin's validator.
func UseJSONFieldNamesInBinding() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterJSONTagNames(v)
	}
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() != "" {
		return fe.Field()
	}
	return strings.ToLower(fe.StructField())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
