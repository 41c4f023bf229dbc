package query

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/store"
)

// MaterialDetail is a material together with everything derived from it.
type MaterialDetail struct {
	Material      domain.Material       `json:"material"`
	Questions     []domain.Question     `json:"questions"`
	Flashcards    []domain.Flashcard    `json:"flashcards"`
	Notes         []domain.Note         `json:"notes"`
	TutorSessions []domain.TutorSession `json:"tutorSessions"`
}

// ForMaterial collects the material with the given id and its artifacts.
// It reports false when the material is not in the snapshot.
func ForMaterial(snap store.Snapshot, id uuid.UUID) (MaterialDetail, bool) {
	var detail MaterialDetail
	found := false
	for _, m := range snap.Materials {
		if m.ID == id {
			detail.Material = m
			found = true
			break
		}
	}
	if !found {
		return MaterialDetail{}, false
	}

	detail.Questions = collect(snap.Questions, func(q domain.Question) bool { return q.MaterialID == id })
	detail.Flashcards = collect(snap.Flashcards, func(c domain.Flashcard) bool { return c.MaterialID == id })
	detail.Notes = collect(snap.Notes, func(n domain.Note) bool { return n.MaterialID == id })
	detail.TutorSessions = collect(snap.TutorSessions, func(s domain.TutorSession) bool { return s.LinkedTo(id) })
	return detail, true
}

func collect[T any](items []T, keep func(T) bool) []T {
	out := []T{}
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Stats summarizes the library.
type Stats struct {
	Materials          int `json:"materials"`
	ProcessedMaterials int `json:"processedMaterials"`
	Questions          int `json:"questions"`
	Flashcards         int `json:"flashcards"`
	Notes              int `json:"notes"`
	TutorSessions      int `json:"tutorSessions"`
	DueFlashcards      int `json:"dueFlashcards"`
	StarredFlashcards  int `json:"starredFlashcards"`
	MasteredFlashcards int `json:"masteredFlashcards"`
	Decks              int `json:"decks"`
}

// Summarize computes Stats for snap at now.
func Summarize(snap store.Snapshot, now time.Time) Stats {
	stats := Stats{
		Materials:     len(snap.Materials),
		Questions:     len(snap.Questions),
		Flashcards:    len(snap.Flashcards),
		Notes:         len(snap.Notes),
		TutorSessions: len(snap.TutorSessions),
		DueFlashcards: DueCount(snap.Flashcards, now),
		Decks:         len(Decks(snap.Flashcards, "", now)),
	}
	for _, m := range snap.Materials {
		if m.IsProcessed {
			stats.ProcessedMaterials++
		}
	}
	for _, c := range snap.Flashcards {
		if c.IsStarred {
			stats.StarredFlashcards++
		}
		if c.Repetitions >= MasteredRepetitions {
			stats.MasteredFlashcards++
		}
	}
	return stats
}
