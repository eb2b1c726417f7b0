package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromBinding converts an error returned by gin's ShouldBind* into an AppError.
// Validator failures become one FieldError per rejected field so callers see
// every problem at once.
func FromBinding(err error) *AppError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fieldName(fe), Message: describe(fe)})
		}
		appErr := Validation(details...)
		appErr.Internal = err
		return appErr
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		appErr := Field(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type.String()))
		appErr.Internal = err
		return appErr
	}

	return Wrap(ErrInvalidInput, err)
}

// fieldName strips the top-level struct name from the namespace, so nested
// fields read as "allocations[1].percentage".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid id"
	case "transaction_kind", "category_kind":
		return "must be one of: income, expense"
	case "dive":
		return "contains an invalid entry"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
