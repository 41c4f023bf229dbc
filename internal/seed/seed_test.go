package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/platform/memkv"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/store"
)

var seedTime = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func TestDefault(t *testing.T) {
	t.Parallel()

	s, err := Default(seedTime)
	require.NoError(t, err)

	require.Len(t, s.Materials, 2)
	assert.Len(t, s.Flashcards, 5)
	assert.Len(t, s.Questions, 3)
	assert.Len(t, s.Notes, 1)
	require.Len(t, s.TutorSessions, 1)

	photosynthesis := s.Materials[0]
	assert.Equal(t, "Photosynthesis", photosynthesis.Title)
	assert.True(t, photosynthesis.IsProcessed)
	assert.False(t, s.Materials[1].IsProcessed)

	for _, c := range s.Flashcards {
		assert.Equal(t, Source, c.Source)
		assert.Equal(t, c.CreatedAt.Add(domain.DefaultInterval), c.NextReviewDate)
	}
	assert.Len(t, query.Due(s.Flashcards, seedTime), 3)
	assert.Len(t, query.Starred(s.Flashcards), 1)

	session := s.TutorSessions[0]
	assert.Equal(t, domain.TutorModeMathHelp, session.Mode)
	assert.True(t, session.LinkedTo(s.Materials[1].ID))
	require.Len(t, session.Messages, 2)
	assert.True(t, session.Messages[0].IsUser)
	assert.False(t, session.Messages[1].IsUser)
}

func TestDefault_LoadsIntoLibrary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lib := store.NewLibrary(memkv.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	s, err := Default(time.Now())
	require.NoError(t, err)

	seeded, err := lib.LoadSampleData(ctx, s)
	require.NoError(t, err)
	assert.True(t, seeded)

	again, err := Default(time.Now())
	require.NoError(t, err)
	seeded, err = lib.LoadSampleData(ctx, again)
	require.NoError(t, err)
	assert.False(t, seeded, "a library with materials is never reseeded")
	assert.Len(t, lib.Snapshot().Materials, 2)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		is   error
	}{
		{"malformed", "materials: [", nil},
		{"bad material type", "materials:\n  - title: x\n    type: poem\n", domain.ErrValidation},
		{"empty card", "materials:\n  - title: x\n    type: text\n    flashcards:\n      - front: q\n", domain.ErrValidation},
		{"bad mode", "materials: []\nsessions:\n  - mode: lecture\n", domain.ErrValidation},
		{"dangling session", "materials: []\nsessions:\n  - mode: socratic\n    material: Missing\n", ErrUnknownMaterial},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml), seedTime)
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := "materials:\n  - title: Atoms\n    type: text\n    flashcards:\n      - front: Smallest unit?\n        back: Atom\n        due_in_days: -2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	s, err := FromFile(path, seedTime)
	require.NoError(t, err)
	require.Len(t, s.Flashcards, 1)
	assert.Equal(t, seedTime.AddDate(0, 0, -2), s.Flashcards[0].NextReviewDate)
	assert.Equal(t, []string{}, s.Flashcards[0].Tags)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"), seedTime)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
