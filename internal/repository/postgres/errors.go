package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var errNoRows = sql.ErrNoRows

// uniqueFields maps unique constraints to the request field they guard.
var uniqueFields = map[string]string{
	"brands_name_key":             "name",
	"categories_name_key":         "name",
	"suppliers_name_key":          "name",
	"products_sku_key":            "sku",
	"patients_email_key":          "email",
	"patients_identification_key": "identification",
	"users_email_key":             "email",
}

// mapError turns driver errors into AppErrors. table is the table the
// statement wrote to and entity the name used in messages.
func mapError(err error, table, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(entity, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			field, ok := uniqueFields[pqErr.Constraint]
			if !ok {
				field = "id"
			}
			appErr := apperrors.FieldError(field, fmt.Sprintf("The %s has already been taken.", strings.ReplaceAll(field, "_", " ")))
			appErr.Err = err
			return appErr
		case codeForeignKeyViolation:
			if pqErr.Table != "" && pqErr.Table != table {
				appErr := apperrors.Conflict(fmt.Sprintf("The %s is still referenced by %s.", entity, strings.ReplaceAll(pqErr.Table, "_", " ")))
				appErr.Err = err
				return appErr
			}
			field := foreignKeyField(pqErr.Constraint, table)
			appErr := apperrors.FieldError(field, fmt.Sprintf("The selected %s is invalid.", strings.ReplaceAll(field, "_", " ")))
			appErr.Err = err
			return appErr
		}
	}
	return apperrors.Internal(err)
}

// foreignKeyField extracts brand_id from products_brand_id_fkey.
func foreignKeyField(constraint, table string) string {
	field := strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), "_fkey")
	if field == "" {
		return "id"
	}
	return field
}
