package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/store"
)

// MaterialHandler handles material requests.
type MaterialHandler struct {
	library    *store.Library
	queries    *query.Engine
	generation *service.GenerationService
	logger     *slog.Logger
}

// NewMaterialHandler creates a MaterialHandler.
func NewMaterialHandler(
	library *store.Library,
	queries *query.Engine,
	generation *service.GenerationService,
	log *slog.Logger,
) *MaterialHandler {
	return &MaterialHandler{
		library:    library,
		queries:    queries,
		generation: generation,
		logger:     log.With(slog.String("component", "material_handler")),
	}
}

// List handles GET /materials.
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.library.Snapshot().Materials)
}

// Create handles POST /materials. With generate set, generation is queued
// after the material is stored; a full queue does not fail the request.
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req MaterialRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	m, err := domain.NewMaterial(req.Title, req.Content, domain.MaterialType(req.Type), req.Tags)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	m.SourceURL = req.SourceURL

	if err := h.library.AddMaterial(r.Context(), *m); err != nil {
		HandleAPIError(w, r, err, "Failed to create material")
		return
	}

	resp := CreateMaterialResponse{Material: *m}
	if req.Generate {
		if _, err := h.generation.Enqueue(r.Context(), m.ID); err != nil {
			log.Warn("material created but generation not queued",
				slog.String("material_id", m.ID.String()),
				slog.String("error", err.Error()))
		} else {
			resp.GenerationQueued = true
		}
	}

	log.Debug("material created", slog.String("material_id", m.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Get handles GET /materials/{id}, returning the material with its artifacts.
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	detail, found := h.queries.MaterialDetail(id)
	respondFound(w, r, detail, found, "Material not found")
}

// Update handles PUT /materials/{id}.
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req MaterialRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	m, found := h.library.Material(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Material not found")
		return
	}
	m.Title = req.Title
	m.Content = req.Content
	m.Type = domain.MaterialType(req.Type)
	m.SourceURL = req.SourceURL
	m.Tags = append([]string{}, req.Tags...)

	updated, err := h.library.UpdateMaterial(r.Context(), m)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update material")
		return
	}
	respondFound(w, r, m, updated, "Material not found")
}

// Delete handles DELETE /materials/{id}. Everything derived from the
// material is removed with it and the per-collection counts are returned.
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.library.DeleteMaterial(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete material")
		return
	}
	respondFound(w, r, result, result.Material, "Material not found")
}

// Generate handles POST /materials/{id}/generate.
func (h *MaterialHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	taskID, err := h.generation.Enqueue(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue generation")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerationResponse{TaskID: taskID})
}
