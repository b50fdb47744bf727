package api

import (
	"errors"
	"net/http"

	"github.com/warp/overtime-board/overtime"
)

// Machine-readable error codes carried in ErrorResponse.Code.
const (
	CodeValidation     = "validation_error"
	CodeUnknownLogin   = "unknown_login"
	CodeDuplicateEntry = "duplicate_entry"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal_error"
)

// HTTPStatus maps a domain error to its response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, overtime.ErrValidation), errors.Is(err, overtime.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, overtime.ErrUnknownEmployee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, overtime.ErrDuplicateEntry):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnprocessableEntity:
		return CodeUnknownLogin
	case http.StatusConflict:
		return CodeDuplicateEntry
	case http.StatusNotFound:
		return CodeNotFound
	default:
		return CodeInternal
	}
}
