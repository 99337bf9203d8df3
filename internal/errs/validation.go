package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromValidator maps a completed validator run to a VALIDATION_ERROR.
// Field failures are keyed by their dotted path without the top-level
// struct name; anything that is not a field failure lands under RootField.
func FromValidator(err error) *Error {
	if err == nil {
		return nil
	}
	details := map[string][]string{}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		details[RootField] = []string{err.Error()}
		return Validation("", details)
	}
	for _, fe := range ves {
		path := fieldPath(fe.Namespace())
		details[path] = append(details[path], fieldMessage(fe))
	}
	return Validation("", details)
}

// RootValidation reports a non-field failure, e.g. an undecodable body.
func RootValidation(message string) *Error {
	return Validation("", map[string][]string{RootField: {message}})
}

func fieldPath(ns string) string {
	i := strings.IndexByte(ns, '.')
	if i < 0 || i == len(ns)-1 {
		return RootField
	}
	return ns[i+1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "numeric", "number":
		return "must be a number"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
