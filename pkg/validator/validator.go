package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator checks structs tagged with `validate` and reports failures per
// JSON field name.
type Validator interface {
	Validate(obj any) map[string][]string
	ValidateFields(obj any, fields ...string) map[string][]string
}

type playground struct {
	v *validator.Validate
}

var (
	defaultOnce sync.Once
	defaultV    Validator
)

// Default returns the shared validator.
func Default() Validator {
	defaultOnce.Do(func() { defaultV = New() })
	return defaultV
}

func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	Configure(v)
	return &playground{v: v}
}

// Configure makes v report JSON field names. It is shared with the gin
// binding engine so both sides of the REST boundary agree on field names.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(JSONName)
}

func JSONName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func (p *playground) Validate(obj any) map[string][]string {
	return Fields(p.v.Struct(obj), nil)
}

// ValidateFields validates obj and keeps only failures on the named fields.
func (p *playground) ValidateFields(obj any, fields ...string) map[string][]string {
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f] = true
	}
	return Fields(p.v.Struct(obj), keep)
}

// Fields converts a validation error into field → messages. keep, when
// non-nil, restricts the result to the listed fields. A non-validation
// error is reported under the "_" key.
func Fields(err error, keep map[string]bool) map[string][]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"_": {err.Error()}}
	}

	out := make(map[string][]string)
	for _, fe := range verrs {
		name := fe.Field()
		if keep != nil && !keep[name] {
			continue
		}
		out[name] = append(out[name], Message(fe))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Message renders a single failure the way the backend phrases it.
func Message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "numeric", "number":
		return fmt.Sprintf("The %s must be a number.", field)
	case "datetime":
		return fmt.Sprintf("The %s is not a valid date.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

// FirstField returns the alphabetically first failing field, or "".
func FirstField(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names[0]
}
