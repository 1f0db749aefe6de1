package mutation

import (
	"sort"
	"strings"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

// FieldErrors is a validation failure mapped onto form fields, one message
// per field.
type FieldErrors struct {
	Message string
	Fields  map[string]string
	cause   *apperrors.AppError
}

func NewFieldErrors(appErr *apperrors.AppError, tr Translator) *FieldErrors {
	fe := &FieldErrors{
		Message: appErr.Message,
		Fields:  make(map[string]string, len(appErr.Fields)),
		cause:   appErr,
	}
	for field, msgs := range appErr.Fields {
		if len(msgs) == 0 {
			continue
		}
		fe.Fields[field] = tr.Translate(msgs[0])
	}
	return fe
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.Names() {
		parts = append(parts, name+": "+e.Fields[name])
	}
	if len(parts) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *FieldErrors) Unwrap() error {
	return e.cause
}

// Get returns the message for field, or "".
func (e *FieldErrors) Get(field string) string {
	return e.Fields[field]
}

// Names returns the offending fields in a stable order.
func (e *FieldErrors) Names() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
