package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/events"
)

// Seed is a self-contained set of entities used to populate an empty library.
type Seed struct {
	Generated
	Materials     []domain.Material
	TutorSessions []domain.TutorSession
}

// LoadSampleData populates the library with seed when it holds no materials.
// It reports whether anything was written; calling it on a non-empty library
// is a no-op.
func (l *Library) LoadSampleData(ctx context.Context, seed Seed) (bool, error) {
	var seeded bool
	err := l.mutate(ctx, "load_sample_data", func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		if len(cur.Materials) > 0 || len(seed.Materials) == 0 {
			return nil, nil, nil
		}

		// Validate against a scratch state so references between seed
		// entities resolve.
		scratch := *cur
		cs := newChangeSet()
		var evs []*events.ChangeEvent

		mats, ids, err := appendAll(&scratch, materials, seed.Materials)
		if err != nil {
			return nil, nil, err
		}
		scratch.Materials = mats
		cs.setMaterials(mats)
		evs = append(evs, events.NewChangeEvent(KeyMaterials, events.OpCreated, ids...))

		if len(seed.Questions) > 0 {
			qs, ids, err := appendAll(&scratch, questions, seed.Questions)
			if err != nil {
				return nil, nil, err
			}
			cs.setQuestions(qs)
			evs = append(evs, events.NewChangeEvent(KeyQuestions, events.OpCreated, ids...))
		}
		if len(seed.Flashcards) > 0 {
			cards, ids, err := appendAll(&scratch, flashcards, seed.Flashcards)
			if err != nil {
				return nil, nil, err
			}
			cs.setFlashcards(cards)
			evs = append(evs, events.NewChangeEvent(KeyFlashcards, events.OpCreated, ids...))
		}
		if len(seed.Notes) > 0 {
			ns, ids, err := appendAll(&scratch, notes, seed.Notes)
			if err != nil {
				return nil, nil, err
			}
			cs.setNotes(ns)
			evs = append(evs, events.NewChangeEvent(KeyNotes, events.OpCreated, ids...))
		}
		if len(seed.TutorSessions) > 0 {
			sessions, ids, err := appendAll(&scratch, tutorSessions, seed.TutorSessions)
			if err != nil {
				return nil, nil, err
			}
			cs.setTutorSessions(sessions)
			evs = append(evs, events.NewChangeEvent(KeyTutorSessions, events.OpCreated, ids...))
		}

		seeded = true
		return cs, evs, nil
	})
	return seeded && err == nil, err
}

// appendAll validates batch against cur and returns the collection with it appended.
func appendAll[T any](cur *Snapshot, c collection[T], batch []T) ([]T, []uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(batch))
	seen := make(map[uuid.UUID]bool, len(batch))
	out := make([]T, 0, len(batch))

	for _, v := range batch {
		v = c.clone(v)
		id := c.idOf(v)
		if err := c.check(cur, nil, v); err != nil {
			return nil, nil, invalidEntity(err)
		}
		if seen[id] || c.index(cur, id) >= 0 {
			return nil, nil, duplicate(c.entity, id)
		}
		seen[id] = true
		ids = append(ids, id)
		out = append(out, v)
	}

	return appended(c.items(cur), out...), ids, nil
}
