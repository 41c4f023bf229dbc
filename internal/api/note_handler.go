package api

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/store"
)

// NoteHandler handles study note requests.
type NoteHandler struct {
	library *store.Library
	logger  *slog.Logger
	now     func() time.Time
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(library *store.Library, log *slog.Logger) *NoteHandler {
	return &NoteHandler{
		library: library,
		logger:  log.With(slog.String("component", "note_handler")),
		now:     time.Now,
	}
}

func applyNoteLists(n *domain.Note, req NoteRequest) {
	n.KeyConcepts = nonNil(req.KeyConcepts)
	n.Examples = nonNil(req.Examples)
	n.Misconceptions = nonNil(req.Misconceptions)
	n.Tags = nonNil(req.Tags)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// List handles GET /notes, optionally restricted to one material.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := materialFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	notes := h.library.Snapshot().Notes
	if filter.Valid {
		notes = slices.DeleteFunc(notes, func(n domain.Note) bool {
			return n.MaterialID != filter.UUID
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, notes)
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	n, err := domain.NewNote(req.MaterialID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	n.Summary = req.Summary
	applyNoteLists(n, req)

	if err := h.library.AddNote(r.Context(), *n); err != nil {
		HandleAPIError(w, r, err, "Failed to create note")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, n)
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, found := h.library.Note(id)
	respondFound(w, r, n, found, "Note not found")
}

// Update handles PUT /notes/{id}. The embedded quiz is kept.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req NoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	current, found := h.library.Note(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Note not found")
		return
	}
	n := current.Revise(req.Title, req.Content, req.Summary, h.now())
	applyNoteLists(&n, req)

	updated, err := h.library.UpdateNote(r.Context(), n)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update note")
		return
	}
	respondFound(w, r, n, updated, "Note not found")
}

// Delete handles DELETE /notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.library.DeleteNote(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete note")
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Note not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
