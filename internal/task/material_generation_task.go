package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
	"github.com/phrazzld/studyhall/internal/store"
)

// DefaultTimeout bounds a task's generator calls when none is configured.
const DefaultTimeout = 30 * time.Second

// Common errors
var (
	ErrNilStore     = errors.New("store cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrEmptyID      = errors.New("id cannot be empty")
)

// MaterialStore is the part of the library a generation task needs.
type MaterialStore interface {
	Material(id uuid.UUID) (domain.Material, bool)
	AttachGenerated(ctx context.Context, materialID uuid.UUID, gen store.Generated) (bool, error)
}

type materialGenerationPayload struct {
	MaterialID uuid.UUID `json:"material_id"`
}

// MaterialGenerationTask generates flashcards, questions and a note for a
// material and attaches them in a single write.
type MaterialGenerationTask struct {
	id         uuid.UUID
	materialID uuid.UUID
	store      MaterialStore
	generator  generation.Generator
	timeout    time.Duration
	logger     *slog.Logger
	status     *status
}

// NewMaterialGenerationTask creates a generation task. A non-positive timeout
// means DefaultTimeout.
func NewMaterialGenerationTask(
	materialID uuid.UUID,
	st MaterialStore,
	gen generation.Generator,
	timeout time.Duration,
	logger *slog.Logger,
) (*MaterialGenerationTask, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if materialID == uuid.Nil {
		return nil, fmt.Errorf("material %w", ErrEmptyID)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MaterialGenerationTask{
		id:         uuid.New(),
		materialID: materialID,
		store:      st,
		generator:  gen,
		timeout:    timeout,
		logger:     logger.With("task_type", TaskTypeMaterialGeneration, "material_id", materialID),
		status:     newStatus(),
	}, nil
}

// ID returns the task's unique identifier
func (t *MaterialGenerationTask) ID() uuid.UUID { return t.id }

// Type returns the task type identifier
func (t *MaterialGenerationTask) Type() string { return TaskTypeMaterialGeneration }

// MaterialID is the material being processed.
func (t *MaterialGenerationTask) MaterialID() uuid.UUID { return t.materialID }

// Payload returns the task data as a byte slice
func (t *MaterialGenerationTask) Payload() []byte {
	data, err := json.Marshal(materialGenerationPayload{MaterialID: t.materialID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *MaterialGenerationTask) Status() TaskStatus { return t.status.get() }

// Execute runs generation. A material deleted before or during generation
// is not an error: the results are dropped. A failed generation leaves the
// library untouched.
func (t *MaterialGenerationTask) Execute(ctx context.Context) error {
	t.status.set(TaskStatusProcessing)

	material, ok := t.store.Material(t.materialID)
	if !ok {
		t.status.set(TaskStatusCompleted)
		t.logger.Info("material no longer exists, skipping generation")
		return nil
	}

	gen, err := t.generate(ctx, material)
	if err != nil {
		t.status.set(TaskStatusFailed)
		return fmt.Errorf("failed to generate study material: %w", err)
	}

	attached, err := t.store.AttachGenerated(ctx, t.materialID, gen)
	if err != nil {
		t.status.set(TaskStatusFailed)
		return fmt.Errorf("failed to save generated study material: %w", err)
	}

	t.status.set(TaskStatusCompleted)
	if !attached {
		t.logger.Info("material deleted during generation, results dropped")
		return nil
	}
	t.logger.Info("material generation completed",
		"flashcards", len(gen.Flashcards),
		"questions", len(gen.Questions),
		"notes", len(gen.Notes))
	return nil
}

func (t *MaterialGenerationTask) generate(ctx context.Context, material domain.Material) (store.Generated, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var gen store.Generated
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cards, err := t.generator.Flashcards(gctx, material)
		gen.Flashcards = cards
		return err
	})
	g.Go(func() error {
		qs, err := t.generator.Questions(gctx, material)
		gen.Questions = qs
		return err
	})
	g.Go(func() error {
		note, err := t.generator.Note(gctx, material)
		if err == nil {
			gen.Notes = []domain.Note{note}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return store.Generated{}, err
	}
	return gen, nil
}
