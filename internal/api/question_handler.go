package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/store"
)

// QuestionHandler handles quiz question requests.
type QuestionHandler struct {
	library *store.Library
	logger  *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(library *store.Library, log *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		library: library,
		logger:  log.With(slog.String("component", "question_handler")),
	}
}

// materialFilter parses the optional materialId query parameter.
func materialFilter(r *http.Request) (uuid.NullUUID, error) {
	raw := r.URL.Query().Get("materialId")
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("%w: materialId %q", errInvalidID, raw)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// List handles GET /questions, optionally restricted to one material.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := materialFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	questions := h.library.Snapshot().Questions
	if filter.Valid {
		questions = slices.DeleteFunc(questions, func(q domain.Question) bool {
			return q.MaterialID != filter.UUID
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, questions)
}

// Create handles POST /questions.
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	q, err := domain.NewQuestion(
		req.MaterialID,
		req.Question,
		domain.QuestionType(req.Type),
		req.Options,
		req.CorrectAnswer,
		req.Explanation,
		domain.Difficulty(req.Difficulty),
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.library.AddQuestion(r.Context(), *q); err != nil {
		HandleAPIError(w, r, err, "Failed to create question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, q)
}

// Get handles GET /questions/{id}.
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, found := h.library.Question(id)
	respondFound(w, r, q, found, "Question not found")
}

// Update handles PUT /questions/{id}.
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req QuestionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	q, found := h.library.Question(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Question not found")
		return
	}
	q.Question = req.Question
	q.Type = domain.QuestionType(req.Type)
	q.Options = nil
	if q.Type == domain.QuestionTypeMultipleChoice {
		q.Options = slices.Clone(req.Options)
	}
	q.CorrectAnswer = req.CorrectAnswer
	q.Explanation = req.Explanation
	q.Difficulty = domain.Difficulty(req.Difficulty)

	updated, err := h.library.UpdateQuestion(r.Context(), q)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update question")
		return
	}
	respondFound(w, r, q, updated, "Question not found")
}

// Delete handles DELETE /questions/{id}.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.library.DeleteQuestion(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete question")
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Question not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
