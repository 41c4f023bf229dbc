package local

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
)

const photosynthesis = "Photosynthesis is the process plants use to convert light into chemical energy. " +
	"Chlorophyll absorbs sunlight within the chloroplasts of leaves. " +
	"Plants do not photosynthesize at night. " +
	"For example, cacti open their stomata at night to save water."

func testMaterial(t *testing.T, content string) domain.Material {
	t.Helper()
	m, err := domain.NewMaterial("Photosynthesis", content, domain.MaterialTypeText, []string{"biology"})
	require.NoError(t, err)
	return *m
}

func newGenerator(t *testing.T, cfg Config) *Generator {
	t.Helper()
	g, err := New(cfg, nil)
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Latency: -time.Second}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = New(Config{MaxItems: -1}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	g := newGenerator(t, Config{})
	assert.Equal(t, DefaultMaxItems, g.maxItems)
}

func TestFlashcards(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})
	m := testMaterial(t, photosynthesis)

	cards, err := g.Flashcards(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, cards, 4)

	assert.Equal(t, "What is Photosynthesis?", cards[0].Front)
	assert.Equal(t, "the process plants use to convert light into chemical energy", cards[0].Back)
	assert.Equal(t, "Chlorophyll absorbs sunlight within the _____ of leaves.", cards[1].Front)
	assert.Equal(t, "chloroplasts", cards[1].Back)

	for _, c := range cards {
		assert.Equal(t, m.ID, c.MaterialID)
		assert.Equal(t, Source, c.Source)
		assert.Equal(t, []string{"biology"}, c.Tags)
		assert.NoError(t, c.Validate())
	}
}

func TestFlashcardsRespectsMaxItems(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{MaxItems: 2})

	cards, err := g.Flashcards(context.Background(), testMaterial(t, photosynthesis))
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestFlashcardsFallback(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})

	cards, err := g.Flashcards(context.Background(), testMaterial(t, "Too short."))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Summarize: Photosynthesis", cards[0].Front)
	assert.Equal(t, "Too short.", cards[0].Back)
}

func TestEmptyContent(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})
	m := domain.Material{ID: uuid.New(), Title: "Empty", Type: domain.MaterialTypeText, Content: "  "}

	_, err := g.Flashcards(context.Background(), m)
	assert.ErrorIs(t, err, generation.ErrEmptyContent)

	_, err = g.Questions(context.Background(), m)
	assert.ErrorIs(t, err, generation.ErrEmptyContent)

	_, err = g.Note(context.Background(), m)
	assert.ErrorIs(t, err, generation.ErrEmptyContent)
}

func TestQuestions(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})
	m := testMaterial(t, photosynthesis)

	qs, err := g.Questions(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, qs, 4)

	assert.Equal(t, domain.QuestionTypeFillInBlank, qs[0].Type)
	assert.Equal(t, "Photosynthesis", qs[0].CorrectAnswer)
	assert.Equal(t, domain.DifficultyHard, qs[0].Difficulty)

	assert.Equal(t, domain.QuestionTypeTrueFalse, qs[1].Type)
	assert.Equal(t, "true", qs[1].CorrectAnswer)

	assert.Equal(t, domain.QuestionTypeMultipleChoice, qs[2].Type)
	assert.Len(t, qs[2].Options, 4)
	assert.Contains(t, qs[2].Options, "photosynthesize")
	assert.IsNonDecreasing(t, qs[2].Options)

	for _, q := range qs {
		assert.Equal(t, m.ID, q.MaterialID)
		assert.NoError(t, q.Validate())
	}
}

func TestNote(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})
	m := testMaterial(t, photosynthesis)

	note, err := g.Note(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, m.ID, note.MaterialID)
	assert.Equal(t, "Photosynthesis notes", note.Title)
	assert.Equal(t, "Photosynthesis is the process plants use to convert light into chemical energy. "+
		"Chlorophyll absorbs sunlight within the chloroplasts of leaves.", note.Summary)
	assert.Len(t, note.KeyConcepts, 5)
	assert.Contains(t, note.KeyConcepts, "plants")
	assert.Equal(t, []string{"For example, cacti open their stomata at night to save water."}, note.Examples)
	assert.Equal(t, []string{"Plants do not photosynthesize at night."}, note.Misconceptions)
	assert.Len(t, note.Quiz, 3)
	assert.Equal(t, Source, note.Source)
	assert.NoError(t, note.Validate())
}

func TestReplyModes(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})
	m := testMaterial(t, photosynthesis)

	reply := func(mode domain.TutorMode, prompt string, material *domain.Material) string {
		s, err := domain.NewTutorSession(mode, uuid.NullUUID{})
		require.NoError(t, err)
		out, err := g.Reply(context.Background(), generation.ReplyRequest{
			Session: *s, Material: material, Prompt: prompt,
		})
		require.NoError(t, err)
		return out
	}

	assert.Contains(t, reply(domain.TutorModeExplanation, "How do chloroplasts work?", &m),
		"Chlorophyll absorbs sunlight within the chloroplasts of leaves.")
	assert.Contains(t, reply(domain.TutorModeExplanation, "Tell me about gravity", nil), "gravity")
	assert.Contains(t, reply(domain.TutorModeSocratic, "Explain photosynthesis please", &m),
		"What do you already know about photosynthesis?")
	assert.Contains(t, reply(domain.TutorModeMathHelp, "what is 12 * 3?", nil), "12 * 3 = 36")
	assert.Contains(t, reply(domain.TutorModeMathHelp, "7.5 + 2.5", nil), "= 10")
	assert.Contains(t, reply(domain.TutorModeMathHelp, "5 / 0", nil), "undefined")
	assert.Contains(t, reply(domain.TutorModeMathHelp, "solve for x", nil), "expression")
	assert.Contains(t, reply(domain.TutorModeExamCoach, "quiz me", &m), "Practice question")
	assert.Contains(t, reply(domain.TutorModeExamCoach, "quiz me", nil), "Exam tip")
}

func TestReplyEmptyPrompt(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{})

	_, err := g.Reply(context.Background(), generation.ReplyRequest{Prompt: "   "})
	assert.ErrorIs(t, err, generation.ErrEmptyContent)
}

func TestLatencyHonorsContext(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{Latency: time.Hour})
	m := testMaterial(t, photosynthesis)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Flashcards(ctx, m)
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Note(ctx, m)
	assert.ErrorIs(t, err, generation.ErrTimeout)
}

func TestLatencyDelaysResult(t *testing.T) {
	t.Parallel()
	g := newGenerator(t, Config{Latency: 20 * time.Millisecond})

	start := time.Now()
	_, err := g.Questions(context.Background(), testMaterial(t, photosynthesis))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
