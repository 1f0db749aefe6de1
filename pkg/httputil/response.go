package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	pkgvalidator "github.com/jwalitptl/optica-admin/pkg/validator"
)

// Envelope wraps single-record responses
type Envelope struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorBody is the body of every error response. Errors is only set for 422.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// RespondWithData sends {data} with status.
func RespondWithData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

// RespondWithMessage sends {message}.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Message: message})
}

// RespondWithPage sends the paginated list envelope.
func RespondWithPage[T any](c *gin.Context, page collection.Page[T]) {
	c.JSON(http.StatusOK, page)
}

// RespondWithError maps err onto its status and error body. Errors that are
// not AppErrors are reported as 500 without leaking their text.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		c.Error(err)
	}

	body := ErrorBody{Message: appErr.Message}
	if appErr.Code == apperrors.ErrValidation {
		body.Errors = appErr.Fields
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), body)
}

// RuleChecker is implemented by request bodies with rules the struct tags
// cannot express.
type RuleChecker interface {
	RuleErrors() map[string][]string
}

// BindJSON decodes the request body into obj and validates it. Validation
// failures come back as a 422 AppError keyed by JSON field name. When obj is
// a RuleChecker its rule errors are reported in the same 422.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := pkgvalidator.Fields(err, nil)
			if rc, ok := obj.(RuleChecker); ok {
				fields = MergeFields(fields, rc.RuleErrors())
			}
			return apperrors.Validation("", fields)
		}
		return apperrors.BadRequest("The request body is not valid JSON.", err)
	}
	return nil
}

// MergeFields adds extra field errors onto a validation result.
func MergeFields(dst, extra map[string][]string) map[string][]string {
	if len(extra) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(extra))
	}
	for k, v := range extra {
		dst[k] = append(dst[k], v...)
	}
	return dst
}
