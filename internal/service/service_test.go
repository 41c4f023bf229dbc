package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/domain/srs"
	"github.com/phrazzld/studyhall/internal/events"
	"github.com/phrazzld/studyhall/internal/generation/local"
	"github.com/phrazzld/studyhall/internal/platform/memkv"
	"github.com/phrazzld/studyhall/internal/store"
	"github.com/phrazzld/studyhall/internal/task"
)

const cellText = "A cell is the smallest unit of life. Mitochondria produce energy for the cell."

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLibrary(t *testing.T, opts ...store.Option) *store.Library {
	t.Helper()
	return store.NewLibrary(memkv.New(), testLogger(), opts...)
}

func newGenerator(t *testing.T) *local.Generator {
	t.Helper()
	g, err := local.New(local.Config{}, testLogger())
	require.NoError(t, err)
	return g
}

func addMaterial(t *testing.T, lib *store.Library) domain.Material {
	t.Helper()
	m, err := domain.NewMaterial("Cells", cellText, domain.MaterialTypeText, nil)
	require.NoError(t, err)
	require.NoError(t, lib.AddMaterial(context.Background(), *m))
	return *m
}

func addCard(t *testing.T, lib *store.Library, materialID uuid.UUID, due time.Time) domain.Flashcard {
	t.Helper()
	c, err := domain.NewFlashcard(materialID, "front", "back", nil)
	require.NoError(t, err)
	c.NextReviewDate = due
	require.NoError(t, lib.AddFlashcard(context.Background(), *c))
	return *c
}

// fullQueue rejects every task.
type fullQueue struct{}

func (fullQueue) Submit(task.Task) error { return task.ErrQueueFull }

func startRunner(t *testing.T) *task.TaskRunner {
	t.Helper()
	runner := task.NewTaskRunner(task.TaskRunnerConfig{WorkerCount: 2, QueueSize: 16}, testLogger())
	runner.Start()
	return runner
}

func TestReviewService_Review(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	card := addCard(t, lib, m.ID, now)

	svc := NewReviewService(lib, nil, testLogger())
	svc.now = func() time.Time { return now }

	got, err := svc.Review(ctx, card.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
	assert.Equal(t, 24*time.Hour, got.Interval)
	assert.Equal(t, now.Add(24*time.Hour), got.NextReviewDate)
	require.NotNil(t, got.LastReviewDate)
	assert.Equal(t, now, *got.LastReviewDate)

	stored, ok := lib.Flashcard(card.ID)
	require.True(t, ok)
	assert.Equal(t, got.NextReviewDate, stored.NextReviewDate)

	got, err = svc.ReviewOutcome(ctx, card.ID, srs.OutcomeGood)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Repetitions)
	assert.Equal(t, 6*24*time.Hour, got.Interval)

	got, err = svc.ReviewOutcome(ctx, card.ID, srs.OutcomeAgain)
	require.NoError(t, err)
	assert.Zero(t, got.Repetitions)
}

func TestReviewService_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	card := addCard(t, lib, m.ID, time.Now().Add(time.Hour))
	svc := NewReviewService(lib, nil, nil)

	_, err := svc.Review(ctx, uuid.New(), 4)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = svc.ReviewOutcome(ctx, card.ID, srs.Outcome("perfect"))
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.ErrorIs(t, err, srs.ErrInvalidOutcome)

	_, err = svc.Postpone(ctx, card.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.ErrorIs(t, err, srs.ErrInvalidDays)

	_, err = svc.Postpone(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestReviewService_Postpone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	overdue := addCard(t, lib, m.ID, now.Add(-48*time.Hour))

	svc := NewReviewService(lib, nil, nil)
	svc.now = func() time.Time { return now }

	got, err := svc.Postpone(ctx, overdue.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 2), got.NextReviewDate)
}

func TestReviewService_StarAndNextDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc := NewReviewService(lib, nil, nil)
	svc.now = func() time.Time { return now }

	_, err := svc.NextDue(ctx)
	assert.ErrorIs(t, err, ErrNoCardsDue)

	addCard(t, lib, m.ID, now.Add(-time.Hour))
	older := addCard(t, lib, m.ID, now.Add(-2*time.Hour))
	addCard(t, lib, m.ID, now.Add(time.Hour))

	next, err := svc.NextDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, next.ID)

	starred, err := svc.SetStarred(ctx, older.ID, true)
	require.NoError(t, err)
	assert.True(t, starred.IsStarred)
	stored, _ := lib.Flashcard(older.ID)
	assert.True(t, stored.IsStarred)
}

func TestReviewService_ConcurrentReviewsKeepEveryUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	card := addCard(t, lib, m.ID, time.Now())
	svc := NewReviewService(lib, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Review(ctx, card.ID, 4)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, _ := lib.Flashcard(card.ID)
	assert.Equal(t, 5, stored.Repetitions)
}

func TestTutorService_Conversation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	runner := startRunner(t)
	svc := NewTutorService(lib, newGenerator(t), runner, time.Second, testLogger())

	session, err := svc.StartSession(ctx, domain.TutorModeExplanation, uuid.NullUUID{UUID: m.ID, Valid: true})
	require.NoError(t, err)
	assert.Empty(t, session.Messages)

	session, err = svc.SendMessage(ctx, session.ID, "  What do mitochondria do?  ")
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "What do mitochondria do?", session.Messages[0].Content)
	assert.True(t, session.Messages[0].IsUser)

	require.NoError(t, runner.Stop(ctx))

	got, err := svc.Session(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.False(t, got.Messages[1].IsUser)
	assert.Contains(t, got.Messages[1].Content, "Mitochondria produce energy for the cell.")

	got, err = svc.SetMode(ctx, session.ID, domain.TutorModeExamCoach)
	require.NoError(t, err)
	assert.Equal(t, domain.TutorModeExamCoach, got.Mode)
	assert.Len(t, got.Messages, 2)

	got, err = svc.Relink(ctx, session.ID, uuid.NullUUID{})
	require.NoError(t, err)
	assert.False(t, got.MaterialID.Valid)

	got, err = svc.ClearHistory(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))
	_, err = svc.Session(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTutorService_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	svc := NewTutorService(lib, newGenerator(t), fullQueue{}, time.Second, nil)
	missing := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	_, err := svc.StartSession(ctx, domain.TutorModeSocratic, missing)
	assert.ErrorIs(t, err, ErrMaterialNotFound)

	_, err = svc.StartSession(ctx, domain.TutorMode("lecture"), uuid.NullUUID{})
	assert.ErrorIs(t, err, domain.ErrInvalidTutorMode)

	_, err = svc.SendMessage(ctx, uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session, err := svc.StartSession(ctx, domain.TutorModeSocratic, uuid.NullUUID{})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, session.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// The learner's message is kept even when the reply cannot be queued.
	got, err := svc.SendMessage(ctx, session.ID, "hello")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, task.ErrQueueFull)
	assert.Len(t, got.Messages, 1)

	_, err = svc.Relink(ctx, session.ID, missing)
	assert.ErrorIs(t, err, ErrMaterialNotFound)

	_, err = svc.SetMode(ctx, session.ID, domain.TutorMode("lecture"))
	assert.ErrorIs(t, err, domain.ErrInvalidTutorMode)

	_, err = svc.ClearHistory(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.DeleteSession(ctx, uuid.New()), ErrSessionNotFound)
}

func TestGenerationService_Enqueue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	runner := startRunner(t)
	svc := NewGenerationService(lib, newGenerator(t), runner, time.Second, testLogger())

	_, err := svc.Enqueue(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrMaterialNotFound)

	id, err := svc.Enqueue(ctx, m.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NoError(t, runner.Stop(ctx))

	snap := lib.Snapshot()
	assert.NotEmpty(t, snap.Flashcards)
	assert.NotEmpty(t, snap.Questions)
	assert.Len(t, snap.Notes, 1)
	got, _ := lib.Material(m.ID)
	assert.True(t, got.IsProcessed)
}

func TestGenerationService_QueueFull(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	m := addMaterial(t, lib)
	svc := NewGenerationService(lib, newGenerator(t), fullQueue{}, time.Second, nil)

	_, err := svc.Enqueue(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestGenerationService_AutoGenerateOnCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emitter := events.NewInMemoryEventEmitter(testLogger())
	lib := newLibrary(t, store.WithEmitter(emitter))
	runner := startRunner(t)
	svc := NewGenerationService(lib, newGenerator(t), runner, time.Second, nil)
	lib.Subscribe(svc)

	m := addMaterial(t, lib)
	require.NoError(t, runner.Stop(ctx))

	got, _ := lib.Material(m.ID)
	assert.True(t, got.IsProcessed)
	assert.NotEmpty(t, lib.Snapshot().Flashcards)

	// Other events are ignored.
	assert.NoError(t, svc.HandleEvent(ctx, events.NewChangeEvent(store.KeyFlashcards, events.OpCreated, uuid.New())))
}
