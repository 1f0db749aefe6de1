package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type brandInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Email       string `json:"contact_email" validate:"omitempty,email"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := New().Validate(brandInput{Email: "nope"})

	assert.Equal(t, []string{"The name field is required."}, errs["name"])
	assert.Equal(t, []string{"The contact email must be a valid email address."}, errs["contact_email"])
	assert.NotContains(t, errs, "description")
}

func TestValidateFieldsRestricts(t *testing.T) {
	errs := New().ValidateFields(brandInput{Email: "nope"}, "contact_email")

	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "contact_email")
}

func TestValidateValidInput(t *testing.T) {
	assert.Nil(t, Default().Validate(brandInput{Name: "Ray-Ban"}))
}

func TestFieldsNonValidationError(t *testing.T) {
	errs := Fields(errors.New("boom"), nil)
	assert.Equal(t, []string{"boom"}, errs["_"])
}

func TestFirstField(t *testing.T) {
	assert.Equal(t, "", FirstField(nil))
	assert.Equal(t, "a", FirstField(map[string][]string{"b": {"x"}, "a": {"y"}}))
}
