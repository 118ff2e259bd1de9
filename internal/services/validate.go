package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

// validate is shared by every service; validator caches struct metadata per instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validationErr turns validator output into a 400 naming the first bad field.
func validationErr(err error) error {
	return fieldErr("", err)
}

// checkVar validates a single value against tag and reports it under name.
func checkVar(name string, v any, tag string) error {
	return fieldErr(name, validate.Var(v, tag))
}

func fieldErr(name string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierr.Validation("", "%v", err)
	}
	fe := verrs[0]
	field := name
	if field == "" {
		field = fe.Field()
		if len(field) > 0 {
			field = strings.ToLower(field[:1]) + field[1:]
		}
	}
	switch fe.Tag() {
	case "required":
		return apierr.Validation("", "%s is required", field)
	case "email":
		return apierr.Validation("", "a valid %s is required", field)
	case "min":
		return apierr.Validation("", "%s must be at least %s", field, fe.Param())
	case "max":
		return apierr.Validation("", "%s must be at most %s", field, fe.Param())
	case "oneof":
		return apierr.Validation("", "%s must be one of %s", field, fe.Param())
	}
	return apierr.Validation("", "%s is invalid", field)
}
