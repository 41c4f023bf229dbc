package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/domain/srs"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/store"
)

// CardHandler handles flashcard requests, including reviews.
type CardHandler struct {
	library *store.Library
	queries *query.Engine
	review  *service.ReviewService
	logger  *slog.Logger
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(
	library *store.Library,
	queries *query.Engine,
	review *service.ReviewService,
	log *slog.Logger,
) *CardHandler {
	return &CardHandler{
		library: library,
		queries: queries,
		review:  review,
		logger:  log.With(slog.String("component", "card_handler")),
	}
}

// List handles GET /flashcards. The optional q parameter filters by text
// and tags.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.queries.Search(r.URL.Query().Get("q")))
}

// Due handles GET /flashcards/due.
func (h *CardHandler) Due(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.queries.Due())
}

// Decks handles GET /flashcards/decks. The optional q parameter filters the
// cards before grouping.
func (h *CardHandler) Decks(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.queries.Decks(r.URL.Query().Get("q")))
}

// Starred handles GET /flashcards/starred.
func (h *CardHandler) Starred(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.queries.Starred())
}

// Next handles GET /flashcards/next. It answers 204 when nothing is due.
func (h *CardHandler) Next(w http.ResponseWriter, r *http.Request) {
	card, err := h.review.NextDue(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next review card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Create handles POST /flashcards.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FlashcardRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	card, err := domain.NewFlashcard(req.MaterialID, req.Front, req.Back, req.Tags)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.library.AddFlashcard(r.Context(), *card); err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// Get handles GET /flashcards/{id}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	card, found := h.library.Flashcard(id)
	respondFound(w, r, card, found, "Flashcard not found")
}

// Update handles PUT /flashcards/{id}. Only content and tags change; the
// review schedule is kept.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req FlashcardRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	card, found, err := h.library.ModifyFlashcard(r.Context(), id, func(c domain.Flashcard) (domain.Flashcard, error) {
		return c.WithContent(req.Front, req.Back, req.Tags), nil
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard")
		return
	}
	respondFound(w, r, card, found, "Flashcard not found")
}

// Delete handles DELETE /flashcards/{id}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.library.DeleteFlashcard(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard")
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "Flashcard not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Review handles POST /flashcards/{id}/review.
func (h *CardHandler) Review(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var (
		card domain.Flashcard
		err  error
	)
	if req.Quality != nil {
		card, err = h.review.Review(r.Context(), id, *req.Quality)
	} else {
		card, err = h.review.ReviewOutcome(r.Context(), id, srs.Outcome(req.Outcome))
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("flashcard reviewed",
		slog.String("card_id", id.String()),
		slog.Time("next_review", card.NextReviewDate))
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Postpone handles POST /flashcards/{id}/postpone.
func (h *CardHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req PostponeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	card, err := h.review.Postpone(r.Context(), id, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Star handles PUT /flashcards/{id}/star.
func (h *CardHandler) Star(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req StarRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	card, err := h.review.SetStarred(r.Context(), id, req.Starred)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to star flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}
