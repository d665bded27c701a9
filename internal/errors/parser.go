package errors

import (
	stderrors "errors"
	"strings"

	"gorm.io/gorm"
)

// ParseDBError classifies a gorm/driver error. Constraint violations become
// client errors; everything else is a storage failure. subject names the
// entity for the not-found message ("product", "category", ...).
func ParseDBError(err error, subject string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(ResourceNotFound, capitalize(subject)+" not found").Wrap(err)
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err) {
		return Conflict(ResourceAlreadyExists, capitalize(subject)+" already exists").Wrap(err)
	}
	if stderrors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKey(err) {
		return Conflict(ResourceConflict, capitalize(subject)+" is referenced by other data").Wrap(err)
	}
	return Storage("database operation failed", err)
}

// IsDuplicateKey reports a unique-constraint violation from any supported driver.
func IsDuplicateKey(err error) bool {
	return stderrors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err)
}

func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

func isForeignKey(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

func capitalize(s string) string {
	if s == "" {
		return "Resource"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
