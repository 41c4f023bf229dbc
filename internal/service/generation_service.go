package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/studyhall/internal/events"
	"github.com/phrazzld/studyhall/internal/generation"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"github.com/phrazzld/studyhall/internal/store"
	"github.com/phrazzld/studyhall/internal/task"
)

// GenerationService queues study material generation.
type GenerationService struct {
	store     task.MaterialStore
	generator generation.Generator
	tasks     Submitter
	timeout   time.Duration
	logger    *slog.Logger
}

var _ events.EventHandler = (*GenerationService)(nil)

// NewGenerationService creates a GenerationService. timeout bounds each run.
func NewGenerationService(
	st task.MaterialStore,
	gen generation.Generator,
	tasks Submitter,
	timeout time.Duration,
	log *slog.Logger,
) *GenerationService {
	if st == nil || gen == nil || tasks == nil {
		panic("generation service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenerationService{
		store:     st,
		generator: gen,
		tasks:     tasks,
		timeout:   timeout,
		logger:    log.With(slog.String("component", "generation_service")),
	}
}

// Enqueue queues generation for the material and returns the task ID.
func (s *GenerationService) Enqueue(ctx context.Context, materialID uuid.UUID) (uuid.UUID, error) {
	if _, ok := s.store.Material(materialID); !ok {
		return uuid.Nil, ErrMaterialNotFound
	}

	t, err := task.NewMaterialGenerationTask(materialID, s.store, s.generator, s.timeout, s.logger)
	if err != nil {
		return uuid.Nil, NewServiceError("enqueue_generation", "failed to create generation task", err)
	}
	if err := s.tasks.Submit(t); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrBusy, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("material generation queued",
		slog.String("material_id", materialID.String()),
		slog.String("task_id", t.ID().String()))
	return t.ID(), nil
}

// HandleEvent queues generation for every newly created material.
func (s *GenerationService) HandleEvent(ctx context.Context, event *events.ChangeEvent) error {
	if event.Collection != store.KeyMaterials || event.Op != events.OpCreated {
		return nil
	}

	var errs []error
	for _, id := range event.IDs {
		if _, err := s.Enqueue(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("material %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
