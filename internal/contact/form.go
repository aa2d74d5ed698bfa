package contact

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalid      = errors.New("contact: form is incomplete")
	ErrUnknownField = errors.New("contact: unknown field")
)

// Field names as they appear in the HTML form.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// Form holds the three contact fields.
type Form struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Message string `form:"message" json:"message" binding:"required"`
}

// Set updates one field by its form name.
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldMessage:
		f.Message = value
	default:
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return nil
}

// Empty reports whether all fields are blank.
func (f Form) Empty() bool { return f == Form{} }

// ValidationError lists the fields that failed, keyed by form name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("%v: %s", ErrInvalid, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate applies the same rules the browser enforces on the form: every
// field is required and the email must look like an address.
func (f Form) Validate() error {
	err := binding.Validator.ValidateStruct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out.Fields[name] = "Please fill out this field."
		case "email":
			out.Fields[name] = "Please enter an email address."
		default:
			out.Fields[name] = "Invalid value."
		}
	}
	return out
}
