package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/store"
)

// UserHandler serves the profile of the single local user and the library
// statistics.
type UserHandler struct {
	library *store.Library
	queries *query.Engine
	logger  *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(library *store.Library, queries *query.Engine, log *slog.Logger) *UserHandler {
	return &UserHandler{
		library: library,
		queries: queries,
		logger:  log.With(slog.String("component", "user_handler")),
	}
}

// Get handles GET /user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.library.CurrentUser())
}

// Update handles PUT /user. The user ID is never changed.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u := h.library.CurrentUser()
	u.Name = req.Name
	u.Email = req.Email
	u.Preferences = req.Preferences

	if err := h.library.UpdateUser(r.Context(), u); err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user updated")
	shared.RespondWithJSON(w, r, http.StatusOK, u)
}

// Stats handles GET /stats.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.queries.Stats())
}
