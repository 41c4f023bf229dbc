package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/domain/srs"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/store"
)

// errInvalidID is returned for a malformed path ID.
var errInvalidID = errors.New("invalid ID")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Checked before not-found: a dangling reference in a request body is the
	// client's mistake, not a missing resource.
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, errInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMaterialNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable

	case errors.Is(err, service.ErrNoCardsDue):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrInvalidEntity) && errors.Is(err, store.ErrMaterialNotFound):
		return "Referenced material does not exist"
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"
	case errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, srs.ErrInvalidDays):
		return "Invalid answer"
	case errors.Is(err, service.ErrEmptyMessage):
		return "Message cannot be empty"
	case errors.Is(err, errInvalidID):
		return "Invalid ID format"

	case errors.Is(err, service.ErrCardNotFound):
		return "Flashcard not found"
	case errors.Is(err, service.ErrSessionNotFound):
		return "Tutor session not found"
	case errors.Is(err, service.ErrMaterialNotFound), errors.Is(err, store.ErrMaterialNotFound):
		return "Material not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"
	case errors.Is(err, service.ErrBusy):
		return "Server is busy, try again later"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short or too small"
	case "max":
		return "too long or too large"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	case "uuid":
		return "invalid ID"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. defaultMsg, when
// set, replaces the generic message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
