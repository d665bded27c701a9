package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError and decides its HTTP status.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// FieldError is one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the error type every layer above the repositories speaks.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	// Status overrides the kind's default HTTP status when non-zero.
	Status int
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches sentinels by code so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

// HTTPStatus returns the status code the error is reported with.
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Wrap returns a copy of e that carries cause.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithStatus returns a copy of e reported with status.
func (e *AppError) WithStatus(status int) *AppError {
	cp := *e
	cp.Status = status
	return &cp
}

// WithCode returns a copy of e carrying code.
func (e *AppError) WithCode(code string) *AppError {
	cp := *e
	cp.Code = code
	return &cp
}

func Validation(code, message string, fields ...FieldError) *AppError {
	if code == "" {
		code = ValidationInvalidInput
	}
	return &AppError{Kind: KindValidation, Code: code, Message: message, Fields: fields}
}

func Auth(code, message string) *AppError {
	return &AppError{Kind: KindAuth, Code: code, Message: message}
}

func Forbidden(code, message string) *AppError {
	if code == "" {
		code = AuthzForbidden
	}
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

func NotFound(code, message string) *AppError {
	if code == "" {
		code = ResourceNotFound
	}
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(code, message string) *AppError {
	if code == "" {
		code = ResourceConflict
	}
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// Storage wraps a backing-store failure. The cause is logged, never returned to clients.
func Storage(message string, cause error) *AppError {
	return &AppError{Kind: KindStorage, Code: InternalDatabaseError, Message: message, Err: cause}
}

// Internal wraps a server-side failure that did not come from the backing
// store, such as hashing or token signing.
func Internal(message string, cause error) *AppError {
	return &AppError{Kind: KindStorage, Code: InternalServerError, Message: message, Err: cause}
}

// Field builds a FieldError.
func Field(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindStorage for anything unclassified.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindStorage
}
