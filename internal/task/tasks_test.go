package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
	"github.com/phrazzld/studyhall/internal/platform/memkv"
	"github.com/phrazzld/studyhall/internal/store"
)

// fakeGenerator returns canned artifacts. before, when set, runs at the start
// of every call.
type fakeGenerator struct {
	err    error
	before func(ctx context.Context) error
	calls  atomic.Int32
}

func (g *fakeGenerator) start(ctx context.Context) error {
	g.calls.Add(1)
	if g.before != nil {
		if err := g.before(ctx); err != nil {
			return err
		}
	}
	return g.err
}

func (g *fakeGenerator) Flashcards(ctx context.Context, m domain.Material) ([]domain.Flashcard, error) {
	if err := g.start(ctx); err != nil {
		return nil, err
	}
	c, err := domain.NewFlashcard(m.ID, "front", "back", nil)
	if err != nil {
		return nil, err
	}
	return []domain.Flashcard{*c}, nil
}

func (g *fakeGenerator) Questions(ctx context.Context, m domain.Material) ([]domain.Question, error) {
	if err := g.start(ctx); err != nil {
		return nil, err
	}
	q, err := domain.NewQuestion(m.ID, "True?", domain.QuestionTypeTrueFalse, nil, "true", "", domain.DifficultyEasy)
	if err != nil {
		return nil, err
	}
	return []domain.Question{*q}, nil
}

func (g *fakeGenerator) Note(ctx context.Context, m domain.Material) (domain.Note, error) {
	if err := g.start(ctx); err != nil {
		return domain.Note{}, err
	}
	n, err := domain.NewNote(m.ID, "note", "body")
	if err != nil {
		return domain.Note{}, err
	}
	return *n, nil
}

func (g *fakeGenerator) Reply(ctx context.Context, req generation.ReplyRequest) (string, error) {
	if err := g.start(ctx); err != nil {
		return "", err
	}
	if req.Material != nil {
		return "about " + req.Material.Title + ": " + req.Prompt, nil
	}
	return "echo: " + req.Prompt, nil
}

func waitForDeadline(ctx context.Context) error {
	<-ctx.Done()
	return generation.ContextError(ctx)
}

func newLibrary(t *testing.T) *store.Library {
	t.Helper()
	return store.NewLibrary(memkv.New(), setupTestLogger())
}

func addMaterial(t *testing.T, lib *store.Library) domain.Material {
	t.Helper()
	m, err := domain.NewMaterial("Cells", "Cells are the unit of life.", domain.MaterialTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, lib.AddMaterial(context.Background(), *m))
	return *m
}

func TestNewMaterialGenerationTask_Validation(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	gen := &fakeGenerator{}

	_, err := NewMaterialGenerationTask(uuid.New(), nil, gen, 0, nil)
	assert.ErrorIs(t, err, ErrNilStore)
	_, err = NewMaterialGenerationTask(uuid.New(), lib, nil, 0, nil)
	assert.ErrorIs(t, err, ErrNilGenerator)
	_, err = NewMaterialGenerationTask(uuid.Nil, lib, gen, 0, nil)
	assert.ErrorIs(t, err, ErrEmptyID)

	task, err := NewMaterialGenerationTask(uuid.New(), lib, gen, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, task.timeout)
	assert.Equal(t, TaskTypeMaterialGeneration, task.Type())
	assert.Equal(t, TaskStatusPending, task.Status())
	assert.JSONEq(t, `{"material_id":"`+task.MaterialID().String()+`"}`, string(task.Payload()))
}

func TestMaterialGenerationTask_Success(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	gen := &fakeGenerator{}

	task, err := NewMaterialGenerationTask(m.ID, lib, gen, time.Second, setupTestLogger())
	require.NoError(t, err)
	require.NoError(t, task.Execute(context.Background()))

	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Equal(t, int32(3), gen.calls.Load())

	snap := lib.Snapshot()
	assert.Len(t, snap.Flashcards, 1)
	assert.Len(t, snap.Questions, 1)
	assert.Len(t, snap.Notes, 1)
	got, ok := lib.Material(m.ID)
	require.True(t, ok)
	assert.True(t, got.IsProcessed)
}

func TestMaterialGenerationTask_FailureLeavesLibraryUntouched(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	gen := &fakeGenerator{err: generation.ErrGenerationFailed}

	task, err := NewMaterialGenerationTask(m.ID, lib, gen, time.Second, nil)
	require.NoError(t, err)

	err = task.Execute(context.Background())
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.Equal(t, TaskStatusFailed, task.Status())

	snap := lib.Snapshot()
	assert.Empty(t, snap.Flashcards)
	assert.Empty(t, snap.Questions)
	assert.Empty(t, snap.Notes)
	got, _ := lib.Material(m.ID)
	assert.False(t, got.IsProcessed)
}

func TestMaterialGenerationTask_Timeout(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	gen := &fakeGenerator{before: waitForDeadline}

	task, err := NewMaterialGenerationTask(m.ID, lib, gen, 20*time.Millisecond, nil)
	require.NoError(t, err)

	err = task.Execute(context.Background())
	assert.ErrorIs(t, err, generation.ErrTimeout)
	assert.Empty(t, lib.Snapshot().Flashcards)
}

func TestMaterialGenerationTask_MaterialDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()
		lib := newLibrary(t)
		gen := &fakeGenerator{}
		task, err := NewMaterialGenerationTask(uuid.New(), lib, gen, time.Second, nil)
		require.NoError(t, err)

		require.NoError(t, task.Execute(ctx))
		assert.Zero(t, gen.calls.Load())
	})

	t.Run("during generation", func(t *testing.T) {
		t.Parallel()
		lib := newLibrary(t)
		m := addMaterial(t, lib)

		var once atomic.Bool
		gen := &fakeGenerator{before: func(context.Context) error {
			if once.CompareAndSwap(false, true) {
				_, err := lib.DeleteMaterial(ctx, m.ID)
				return err
			}
			return nil
		}}
		task, err := NewMaterialGenerationTask(m.ID, lib, gen, time.Second, nil)
		require.NoError(t, err)

		require.NoError(t, task.Execute(ctx))
		assert.Equal(t, TaskStatusCompleted, task.Status())
		snap := lib.Snapshot()
		assert.Empty(t, snap.Materials)
		assert.Empty(t, snap.Flashcards)
		assert.Empty(t, snap.Notes)
	})
}

func addSession(t *testing.T, lib *store.Library, materialID uuid.NullUUID) domain.TutorSession {
	t.Helper()
	s, err := domain.NewTutorSession(domain.TutorModeExplanation, materialID)
	require.NoError(t, err)
	require.NoError(t, lib.AddTutorSession(context.Background(), *s))
	return *s
}

func TestTutorReplyTask_AppendsReply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	s := addSession(t, lib, uuid.NullUUID{UUID: m.ID, Valid: true})

	task, err := NewTutorReplyTask(s.ID, "what is a cell?", lib, &fakeGenerator{}, time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, TaskTypeTutorReply, task.Type())

	// A learner message arriving while the reply is generated must survive.
	_, _, err = lib.AppendTutorMessage(ctx, s.ID, domain.NewTutorMessage("also, what is DNA?", true, time.Now()))
	require.NoError(t, err)

	require.NoError(t, task.Execute(ctx))
	assert.Equal(t, TaskStatusCompleted, task.Status())

	got, ok := lib.TutorSession(s.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 2)
	assert.True(t, got.Messages[0].IsUser)
	assert.False(t, got.Messages[1].IsUser)
	assert.Equal(t, "about Cells: what is a cell?", got.Messages[1].Content)
	assert.Equal(t, ReplySource, got.Messages[1].Source)
}

func TestTutorReplyTask_SessionDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	s := addSession(t, lib, uuid.NullUUID{})

	gen := &fakeGenerator{before: func(context.Context) error {
		_, err := lib.DeleteTutorSession(ctx, s.ID)
		return err
	}}
	task, err := NewTutorReplyTask(s.ID, "hello", lib, gen, time.Second, nil)
	require.NoError(t, err)

	require.NoError(t, task.Execute(ctx))
	_, ok := lib.TutorSession(s.ID)
	assert.False(t, ok)
	assert.Empty(t, lib.Snapshot().TutorSessions)
}

func TestTutorReplyTask_Failure(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	s := addSession(t, lib, uuid.NullUUID{})
	boom := errors.New("model offline")

	task, err := NewTutorReplyTask(s.ID, "hello", lib, &fakeGenerator{err: boom}, time.Second, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, task.Execute(context.Background()), boom)
	assert.Equal(t, TaskStatusFailed, task.Status())
	got, _ := lib.TutorSession(s.ID)
	assert.Empty(t, got.Messages)
}

func TestTasksThroughRunner(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	s := addSession(t, lib, uuid.NullUUID{})
	gen := &fakeGenerator{}

	runner := NewTaskRunner(DefaultTaskRunnerConfig(), setupTestLogger())
	runner.Start()

	genTask, err := NewMaterialGenerationTask(m.ID, lib, gen, time.Second, nil)
	require.NoError(t, err)
	replyTask, err := NewTutorReplyTask(s.ID, "hi", lib, gen, time.Second, nil)
	require.NoError(t, err)
	require.NoError(t, runner.Submit(genTask))
	require.NoError(t, runner.Submit(replyTask))

	require.NoError(t, runner.Stop(context.Background()))
	assert.Len(t, lib.Snapshot().Flashcards, 1)
	got, _ := lib.TutorSession(s.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "echo: hi", got.Messages[0].Content)
}
