package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/events"
)

// CascadeResult counts what a material deletion removed.
type CascadeResult struct {
	Material      bool `json:"material"`
	Questions     int  `json:"questions"`
	Flashcards    int  `json:"flashcards"`
	Notes         int  `json:"notes"`
	TutorSessions int  `json:"tutorSessions"`
}

// Material returns a copy of the material with the given id.
func (l *Library) Material(id uuid.UUID) (domain.Material, bool) {
	return get(l, materials, id)
}

// AddMaterial validates m and appends it to the materials collection.
func (l *Library) AddMaterial(ctx context.Context, m domain.Material) error {
	return add(ctx, l, materials, m)
}

// UpdateMaterial replaces the material with m's ID. It reports false, and
// changes nothing, when no such material exists.
func (l *Library) UpdateMaterial(ctx context.Context, m domain.Material) (bool, error) {
	return update(ctx, l, materials, m)
}

// MarkMaterialProcessed flags the material as processed at the library's
// current time. It reports false when the material does not exist.
func (l *Library) MarkMaterialProcessed(ctx context.Context, id uuid.UUID) (bool, error) {
	_, found, err := modify(ctx, l, materials, id, func(m domain.Material) (domain.Material, error) {
		return m.MarkProcessed(l.now()), nil
	})
	return found, err
}

// DeleteMaterial removes the material and, in the same write, every
// question, flashcard, note and tutor session that references it.
// Deleting a material that does not exist returns a zero result.
func (l *Library) DeleteMaterial(ctx context.Context, id uuid.UUID) (CascadeResult, error) {
	var res CascadeResult
	err := l.mutate(ctx, "delete_material", func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		i := materials.index(cur, id)
		if i < 0 {
			return nil, nil, nil
		}

		qs, qIDs := removeWhere(cur.Questions,
			func(q domain.Question) bool { return q.MaterialID == id }, questions.idOf)
		cards, cIDs := removeWhere(cur.Flashcards,
			func(c domain.Flashcard) bool { return c.MaterialID == id }, flashcards.idOf)
		ns, nIDs := removeWhere(cur.Notes,
			func(n domain.Note) bool { return n.MaterialID == id }, notes.idOf)
		sessions, sIDs := removeWhere(cur.TutorSessions,
			func(s domain.TutorSession) bool { return s.LinkedTo(id) }, tutorSessions.idOf)

		cs := newChangeSet()
		cs.setMaterials(removeAt(cur.Materials, i))
		evs := []*events.ChangeEvent{events.NewChangeEvent(KeyMaterials, events.OpDeleted, id)}

		if len(qIDs) > 0 {
			cs.setQuestions(qs)
			evs = append(evs, events.NewChangeEvent(KeyQuestions, events.OpDeleted, qIDs...))
		}
		if len(cIDs) > 0 {
			cs.setFlashcards(cards)
			evs = append(evs, events.NewChangeEvent(KeyFlashcards, events.OpDeleted, cIDs...))
		}
		if len(nIDs) > 0 {
			cs.setNotes(ns)
			evs = append(evs, events.NewChangeEvent(KeyNotes, events.OpDeleted, nIDs...))
		}
		if len(sIDs) > 0 {
			cs.setTutorSessions(sessions)
			evs = append(evs, events.NewChangeEvent(KeyTutorSessions, events.OpDeleted, sIDs...))
		}

		res = CascadeResult{
			Material:      true,
			Questions:     len(qIDs),
			Flashcards:    len(cIDs),
			Notes:         len(nIDs),
			TutorSessions: len(sIDs),
		}
		return cs, evs, nil
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return res, nil
}

// Generated is the output of one material generation run.
type Generated struct {
	Flashcards []domain.Flashcard
	Questions  []domain.Question
	Notes      []domain.Note
}

// AttachGenerated adds generated artifacts for a material and marks the
// material processed, all in one write. Every artifact must reference
// materialID. When the material no longer exists nothing is written and
// false is returned.
func (l *Library) AttachGenerated(ctx context.Context, materialID uuid.UUID, gen Generated) (bool, error) {
	var found bool
	err := l.mutate(ctx, "attach_generated", func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		i := materials.index(cur, materialID)
		if i < 0 {
			return nil, nil, nil
		}
		found = true

		cs := newChangeSet()
		cs.setMaterials(replaceAt(cur.Materials, i, cur.Materials[i].MarkProcessed(l.now())))
		evs := []*events.ChangeEvent{events.NewChangeEvent(KeyMaterials, events.OpUpdated, materialID)}

		if len(gen.Flashcards) > 0 {
			next, ids, err := appendChecked(cur, flashcards, gen.Flashcards, materialID,
				func(c domain.Flashcard) uuid.UUID { return c.MaterialID })
			if err != nil {
				return nil, nil, err
			}
			cs.setFlashcards(next)
			evs = append(evs, events.NewChangeEvent(KeyFlashcards, events.OpCreated, ids...))
		}
		if len(gen.Questions) > 0 {
			next, ids, err := appendChecked(cur, questions, gen.Questions, materialID,
				func(q domain.Question) uuid.UUID { return q.MaterialID })
			if err != nil {
				return nil, nil, err
			}
			cs.setQuestions(next)
			evs = append(evs, events.NewChangeEvent(KeyQuestions, events.OpCreated, ids...))
		}
		if len(gen.Notes) > 0 {
			next, ids, err := appendChecked(cur, notes, gen.Notes, materialID,
				func(n domain.Note) uuid.UUID { return n.MaterialID })
			if err != nil {
				return nil, nil, err
			}
			cs.setNotes(next)
			evs = append(evs, events.NewChangeEvent(KeyNotes, events.OpCreated, ids...))
		}

		return cs, evs, nil
	})
	return found && err == nil, err
}

// appendChecked validates a batch of new entities that must all belong to
// materialID and returns the collection with them appended.
func appendChecked[T any](
	cur *Snapshot,
	c collection[T],
	batch []T,
	materialID uuid.UUID,
	ownerOf func(T) uuid.UUID,
) ([]T, []uuid.UUID, error) {
	for _, v := range batch {
		if ownerOf(v) != materialID {
			return nil, nil, fmt.Errorf("%w: %s %s does not belong to material %s",
				ErrInvalidEntity, c.entity, c.idOf(v), materialID)
		}
	}
	return appendAll(cur, c, batch)
}
