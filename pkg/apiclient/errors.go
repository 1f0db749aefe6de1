package apiclient

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

// errorBody is the shape the backend uses for every non-2xx response.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// Classify turns a non-2xx response into one of the error kinds callers
// handle: validation, not found, unauthorized, conflict or server.
func Classify(status int, body []byte) *apperrors.AppError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}

	switch {
	case status == http.StatusUnprocessableEntity:
		return apperrors.Validation(msg, eb.Errors)
	case status == http.StatusBadRequest && len(eb.Errors) > 0:
		return apperrors.Validation(msg, eb.Errors)
	case status == http.StatusBadRequest:
		return apperrors.BadRequest(orDefault(msg, "bad request"), nil)
	case status == http.StatusNotFound:
		appErr := apperrors.NotFound("resource", nil)
		if msg != "" {
			appErr.Message = msg
		}
		return appErr
	case status == http.StatusUnauthorized:
		appErr := apperrors.Unauthorized(nil)
		if msg != "" {
			appErr.Message = msg
		}
		return appErr
	case status == http.StatusForbidden:
		return apperrors.Forbidden(orDefault(msg, "forbidden"))
	case status == http.StatusConflict:
		return apperrors.Conflict(orDefault(msg, "conflict"))
	default:
		return apperrors.Server(status, msg)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
