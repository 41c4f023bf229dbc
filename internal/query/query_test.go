package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func card(front, back string, due time.Time, tags ...string) domain.Flashcard {
	return domain.Flashcard{
		ID:             uuid.New(),
		MaterialID:     uuid.New(),
		Front:          front,
		Back:           back,
		Tags:           tags,
		Interval:       domain.DefaultInterval,
		EaseFactor:     domain.DefaultEaseFactor,
		Difficulty:     domain.UnratedDifficulty,
		NextReviewDate: due,
		CreatedAt:      due.Add(-domain.DefaultInterval),
	}
}

func fronts(cards []domain.Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Front
	}
	return out
}

func TestDue(t *testing.T) {
	t.Parallel()

	cards := []domain.Flashcard{
		card("past", "b", now.Add(-time.Hour)),
		card("boundary", "b", now),
		card("future", "b", now.Add(time.Second)),
	}

	assert.Equal(t, []string{"past", "boundary"}, fronts(Due(cards, now)))
	assert.Equal(t, 2, DueCount(cards, now))
	assert.Empty(t, Due(nil, now))
	assert.NotNil(t, Due(nil, now))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	cards := []domain.Flashcard{
		card("What is a Goroutine?", "A lightweight thread", now, "go"),
		card("Mitochondria", "Powerhouse of the cell", now, "Biology"),
		card("Untagged", "nothing to see", now),
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty returns all", "", []string{"What is a Goroutine?", "Mitochondria", "Untagged"}},
		{"whitespace returns all", "   ", []string{"What is a Goroutine?", "Mitochondria", "Untagged"}},
		{"front case-insensitive", "GOROUTINE", []string{"What is a Goroutine?"}},
		{"back", "powerhouse", []string{"Mitochondria"}},
		{"tag", "bio", []string{"Mitochondria"}},
		{"no match", "quantum", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fronts(Filter(cards, tt.text)))
		})
	}
}

func TestDecks(t *testing.T) {
	t.Parallel()

	cards := []domain.Flashcard{
		card("z1", "b", now.Add(-time.Hour), "Zoology"),
		card("g1", "b", now.Add(time.Hour)),
		card("a1", "b", now, "Algebra", "Math"),
		card("z2", "b", now.Add(time.Hour), "Zoology"),
		card("g2", "b", now.Add(-time.Minute)),
		card("a2", "b", now.Add(time.Hour), "Algebra"),
	}

	decks := Decks(cards, "", now)
	require.Len(t, decks, 3)

	assert.Equal(t, "Algebra", decks[0].Name)
	assert.Equal(t, []string{"a1", "a2"}, fronts(decks[0].Cards))
	assert.Equal(t, 1, decks[0].DueCount)

	assert.Equal(t, DefaultDeck, decks[1].Name)
	assert.Equal(t, []string{"g1", "g2"}, fronts(decks[1].Cards))
	assert.Equal(t, 1, decks[1].DueCount)

	assert.Equal(t, "Zoology", decks[2].Name)
	assert.Equal(t, []string{"z1", "z2"}, fronts(decks[2].Cards))
	assert.Equal(t, 1, decks[2].DueCount)

	filtered := Decks(cards, "z", now)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Zoology", filtered[0].Name)

	assert.Empty(t, Decks(nil, "", now))
}

func TestStarredAndNextDue(t *testing.T) {
	t.Parallel()

	old := card("old", "b", now.Add(-48*time.Hour))
	older := card("older", "b", now.Add(-72*time.Hour))
	future := card("future", "b", now.Add(time.Hour))
	future.IsStarred = true
	cards := []domain.Flashcard{old, future, older}

	assert.Equal(t, []string{"future"}, fronts(Starred(cards)))

	next, ok := NextDue(cards, now)
	require.True(t, ok)
	assert.Equal(t, "older", next.Front)

	_, ok = NextDue([]domain.Flashcard{future}, now)
	assert.False(t, ok)
}

func testSnapshot(t *testing.T) (store.Snapshot, uuid.UUID) {
	t.Helper()
	target, err := domain.NewMaterial("Target", "content", domain.MaterialTypeText, nil)
	require.NoError(t, err)
	other, err := domain.NewMaterial("Other", "content", domain.MaterialTypeLink, nil)
	require.NoError(t, err)

	mastered := card("mastered", "b", now.Add(time.Hour))
	mastered.MaterialID = target.ID
	mastered.Repetitions = 3
	mastered.IsStarred = true
	due := card("due", "b", now.Add(-time.Hour), "x")
	due.MaterialID = target.ID
	elsewhere := card("elsewhere", "b", now.Add(-time.Hour))
	elsewhere.MaterialID = other.ID

	q, err := domain.NewQuestion(target.ID, "2+2?", domain.QuestionTypeShortAnswer, nil, "4", "", domain.DifficultyEasy)
	require.NoError(t, err)
	n, err := domain.NewNote(other.ID, "Other note", "body")
	require.NoError(t, err)
	linkedSession, err := domain.NewTutorSession(domain.TutorModeSocratic, uuid.NullUUID{UUID: target.ID, Valid: true})
	require.NoError(t, err)
	freeSession, err := domain.NewTutorSession(domain.TutorModeExplanation, uuid.NullUUID{})
	require.NoError(t, err)

	processed := target.MarkProcessed(now)
	return store.Snapshot{
		Materials:     []domain.Material{processed, *other},
		Questions:     []domain.Question{*q},
		Flashcards:    []domain.Flashcard{mastered, due, elsewhere},
		Notes:         []domain.Note{*n},
		TutorSessions: []domain.TutorSession{*linkedSession, *freeSession},
		User:          domain.DefaultUser(),
	}, target.ID
}

func TestForMaterial(t *testing.T) {
	t.Parallel()
	snap, id := testSnapshot(t)

	detail, ok := ForMaterial(snap, id)
	require.True(t, ok)
	assert.Equal(t, id, detail.Material.ID)
	assert.Len(t, detail.Questions, 1)
	assert.Equal(t, []string{"mastered", "due"}, fronts(detail.Flashcards))
	assert.Empty(t, detail.Notes)
	assert.NotNil(t, detail.Notes)
	assert.Len(t, detail.TutorSessions, 1)

	_, ok = ForMaterial(snap, uuid.New())
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	snap, _ := testSnapshot(t)

	assert.Equal(t, Stats{
		Materials:          2,
		ProcessedMaterials: 1,
		Questions:          1,
		Flashcards:         3,
		Notes:              1,
		TutorSessions:      2,
		DueFlashcards:      2,
		StarredFlashcards:  1,
		MasteredFlashcards: 1,
		Decks:              2,
	}, Summarize(snap, now))
}

type staticSource struct{ snap store.Snapshot }

func (s staticSource) Snapshot() store.Snapshot { return s.snap }

func TestEngine(t *testing.T) {
	t.Parallel()
	snap, id := testSnapshot(t)
	engine := NewEngine(staticSource{snap: snap}, func() time.Time { return now })

	assert.Equal(t, []string{"due", "elsewhere"}, fronts(engine.Due()))
	assert.Len(t, engine.Decks(""), 2)
	assert.Equal(t, []string{"mastered"}, fronts(engine.Starred()))
	assert.Equal(t, []string{"elsewhere"}, fronts(engine.Search("ELSE")))

	next, ok := engine.NextDue()
	require.True(t, ok)
	assert.Equal(t, "due", next.Front)

	detail, ok := engine.MaterialDetail(id)
	require.True(t, ok)
	assert.Equal(t, "Target", detail.Material.Title)
	assert.Equal(t, 2, engine.Stats().DueFlashcards)
}
