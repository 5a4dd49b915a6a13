package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

// Input is the user payload accepted by Create and Update.
type Input struct {
	FirstName   string              `json:"first_name" validate:"required,max=255"`
	LastName    string              `json:"last_name" validate:"required,max=255"`
	PhoneNumber *string             `json:"phone_number" validate:"omitempty,max=15"`
	Emails      []entity.EmailEntry `json:"emails" validate:"required,min=1,dive,required"`
}

// Fields returns the scalar part of the input.
func (in Input) Fields() entity.UserFields {
	return entity.UserFields{FirstName: in.FirstName, LastName: in.LastName, PhoneNumber: in.PhoneNumber}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks shape and bounds of in. Every failing field is reported.
func (in Input) Validate() *ValidationError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr := &ValidationError{}
		verr.Add("payload", err.Error())
		return verr
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		key := fieldKey(fe.Namespace())
		verr.Add(key, fieldMessage(key, fe))
	}
	return verr
}

// fieldKey turns "Input.emails[0].email" into "emails.0.email".
func fieldKey(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func fieldMessage(key string, fe validator.FieldError) string {
	attr := key
	if !strings.Contains(key, ".") {
		attr = strings.ReplaceAll(key, "_", " ")
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must have at least %s items.", attr, fe.Param())
	case "gt":
		return fmt.Sprintf("The selected %s is invalid.", attr)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}
