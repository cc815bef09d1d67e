package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// dateLayouts are the date forms accepted for experience dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseProfileDate parses an experience date in any accepted layout.
func ParseProfileDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date", s)
}

// NewValidator returns a validator that knows the profile date tags and
// reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("profiledate", func(fl validator.FieldLevel) bool {
		_, err := ParseProfileDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("enddate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == EndDatePresent {
			return true
		}
		_, err := ParseProfileDate(s)
		return err == nil
	})
	return v
}

var profileValidator = NewValidator()

// ValidateUpdate checks a decoded update payload against the profile model rules.
// Only the first failure is reported.
func ValidateUpdate(p *ExternalProfile) error {
	if p == nil {
		return &ErrValidation{Message: "update payload is empty"}
	}
	err := profileValidator.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ErrValidation{
		Field:   fieldPath(fe.Namespace()),
		Message: describeTag(fe),
	}
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "profiledate":
		return fmt.Sprintf("%v is not a valid date", fe.Value())
	case "enddate":
		return fmt.Sprintf("%v must be either a valid date or 'present'", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fe.Tag()
	}
}
