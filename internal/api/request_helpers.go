package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/platform/logger"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", errInvalidID, paramName, raw)
	}
	return id, nil
}

// pathID extracts the {id} parameter, writing a 400 response when it is
// malformed.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}

// decodeRequest decodes and validates the body into v, writing a 400
// response on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	if err := shared.DecodeJSON(r, v); err != nil {
		log.Debug("invalid request format", slog.String("error", err.Error()))
		msg := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			msg = "Request body is required"
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err)
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		msg := SanitizeValidationError(err)
		if msg == "Validation error" {
			msg = err.Error()
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err)
		return false
	}
	return true
}

// respondFound writes v, or a 404 with message when found is false.
func respondFound(w http.ResponseWriter, r *http.Request, v any, found bool, message string) {
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, message)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, v)
}
