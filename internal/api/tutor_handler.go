package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/store"
)

// TutorHandler handles tutoring session requests.
type TutorHandler struct {
	library *store.Library
	tutor   *service.TutorService
	logger  *slog.Logger
}

// NewTutorHandler creates a TutorHandler.
func NewTutorHandler(library *store.Library, tutor *service.TutorService, log *slog.Logger) *TutorHandler {
	return &TutorHandler{
		library: library,
		tutor:   tutor,
		logger:  log.With(slog.String("component", "tutor_handler")),
	}
}

// List handles GET /sessions.
func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.library.Snapshot().TutorSessions)
}

// Create handles POST /sessions.
func (h *TutorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, err := h.tutor.StartSession(r.Context(), domain.TutorMode(req.Mode), nullUUID(req.MaterialID))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// Get handles GET /sessions/{id}.
func (h *TutorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, err := h.tutor.Session(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Delete handles DELETE /sessions/{id}.
func (h *TutorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.tutor.DeleteSession(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /sessions/{id}/messages. The reply is produced in
// the background, so the response is 202 with the learner's message stored.
func (h *TutorHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, err := h.tutor.SendMessage(r.Context(), id, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send message")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, session)
}

// Clear handles POST /sessions/{id}/clear.
func (h *TutorHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, err := h.tutor.ClearHistory(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Relink handles PUT /sessions/{id}/material.
func (h *TutorHandler) Relink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RelinkRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, err := h.tutor.Relink(r.Context(), id, nullUUID(req.MaterialID))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to relink session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// SetMode handles PUT /sessions/{id}/mode.
func (h *TutorHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ModeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, err := h.tutor.SetMode(r.Context(), id, domain.TutorMode(req.Mode))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change mode")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}
