package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

func TestMapErrorUniqueViolation(t *testing.T) {
	err := mapError(&pq.Error{Code: codeUniqueViolation, Constraint: "patients_email_key", Table: "patients"}, "patients", "patient")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, 422, appErr.StatusCode())
	assert.Equal(t, "The email has already been taken.", appErr.FirstMessage("email"))
}

func TestMapErrorForeignKey(t *testing.T) {
	err := mapError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "products_brand_id_fkey", Table: "products"}, "products", "product")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "The selected brand id is invalid.", appErr.FirstMessage("brand_id"))

	err = mapError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "products_brand_id_fkey", Table: "products"}, "brands", "brand")
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "The brand is still referenced by products.")
}

func TestMapErrorPassThrough(t *testing.T) {
	assert.NoError(t, mapError(nil, "brands", "brand"))
	assert.True(t, apperrors.IsNotFound(mapError(fmt.Errorf("get: %w", sql.ErrNoRows), "brands", "brand")))

	conflict := apperrors.Conflict("already decided")
	assert.Same(t, conflict, mapError(conflict, "discount_requests", "discount request"))

	err := mapError(errors.New("connection reset"), "brands", "brand")
	assert.Equal(t, apperrors.KindServer, apperrors.KindOf(err))
}
