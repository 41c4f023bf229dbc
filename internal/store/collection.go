package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/events"
)

// collection describes how one entity collection is found in a Snapshot and
// written into a changeSet.
type collection[T any] struct {
	key      string
	entity   string
	items    func(*Snapshot) []T
	set      func(*changeSet, []T)
	idOf     func(T) uuid.UUID
	clone    func(T) T
	validate func(T) error
	// materialOf returns the material an entity points at. Nil for
	// collections without a material reference.
	materialOf func(T) uuid.NullUUID
	// successor, when set, rejects replacing prev with next.
	successor func(prev, next T) error
}

var (
	materials = collection[domain.Material]{
		key:      KeyMaterials,
		entity:   "material",
		items:    func(s *Snapshot) []domain.Material { return s.Materials },
		set:      (*changeSet).setMaterials,
		idOf:     func(m domain.Material) uuid.UUID { return m.ID },
		clone:    domain.Material.Clone,
		validate: func(m domain.Material) error { return m.Validate() },
	}

	questions = collection[domain.Question]{
		key:        KeyQuestions,
		entity:     "question",
		items:      func(s *Snapshot) []domain.Question { return s.Questions },
		set:        (*changeSet).setQuestions,
		idOf:       func(q domain.Question) uuid.UUID { return q.ID },
		clone:      domain.Question.Clone,
		validate:   func(q domain.Question) error { return q.Validate() },
		materialOf: func(q domain.Question) uuid.NullUUID { return uuid.NullUUID{UUID: q.MaterialID, Valid: true} },
	}

	flashcards = collection[domain.Flashcard]{
		key:        KeyFlashcards,
		entity:     "flashcard",
		items:      func(s *Snapshot) []domain.Flashcard { return s.Flashcards },
		set:        (*changeSet).setFlashcards,
		idOf:       func(c domain.Flashcard) uuid.UUID { return c.ID },
		clone:      domain.Flashcard.Clone,
		validate:   func(c domain.Flashcard) error { return c.Validate() },
		materialOf: func(c domain.Flashcard) uuid.NullUUID { return uuid.NullUUID{UUID: c.MaterialID, Valid: true} },
	}

	notes = collection[domain.Note]{
		key:        KeyNotes,
		entity:     "note",
		items:      func(s *Snapshot) []domain.Note { return s.Notes },
		set:        (*changeSet).setNotes,
		idOf:       func(n domain.Note) uuid.UUID { return n.ID },
		clone:      domain.Note.Clone,
		validate:   func(n domain.Note) error { return n.Validate() },
		materialOf: func(n domain.Note) uuid.NullUUID { return uuid.NullUUID{UUID: n.MaterialID, Valid: true} },
	}

	tutorSessions = collection[domain.TutorSession]{
		key:        KeyTutorSessions,
		entity:     "tutor session",
		items:      func(s *Snapshot) []domain.TutorSession { return s.TutorSessions },
		set:        (*changeSet).setTutorSessions,
		idOf:       func(s domain.TutorSession) uuid.UUID { return s.ID },
		clone:      domain.TutorSession.Clone,
		validate:   func(s domain.TutorSession) error { return s.Validate() },
		materialOf: func(s domain.TutorSession) uuid.NullUUID { return s.MaterialID },
		successor:  domain.TutorSession.ValidateSuccessor,
	}
)

// check validates v against the current state and, for a replacement, against
// the value prev it replaces. The material reference is only resolved when it
// is new or changed, so entities orphaned by a lost materials collection stay
// editable.
func (c collection[T]) check(cur *Snapshot, prev *T, v T) error {
	if err := c.validate(v); err != nil {
		return err
	}
	if prev != nil && c.successor != nil {
		if err := c.successor(*prev, v); err != nil {
			return err
		}
	}
	if c.materialOf == nil {
		return nil
	}
	ref := c.materialOf(v)
	if !ref.Valid || (prev != nil && c.materialOf(*prev) == ref) {
		return nil
	}
	return requireMaterial(cur, ref.UUID)
}

// orphans counts entities whose material is not in s.
func (c collection[T]) orphans(s *Snapshot) int {
	if c.materialOf == nil {
		return 0
	}
	n := 0
	for _, v := range c.items(s) {
		if ref := c.materialOf(v); ref.Valid && requireMaterial(s, ref.UUID) != nil {
			n++
		}
	}
	return n
}

func requireMaterial(cur *Snapshot, id uuid.UUID) error {
	if !slices.ContainsFunc(cur.Materials, func(m domain.Material) bool { return m.ID == id }) {
		return fmt.Errorf("%w %s", ErrMaterialNotFound, id)
	}
	return nil
}

func (c collection[T]) index(cur *Snapshot, id uuid.UUID) int {
	return slices.IndexFunc(c.items(cur), func(v T) bool { return c.idOf(v) == id })
}

// get returns a copy of the entity with the given id.
func get[T any](l *Library, c collection[T], id uuid.UUID) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := c.index(&l.state, id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.clone(c.items(&l.state)[i]), true
}

// add appends v after validating it and its references. IDs are unique
// within a collection.
func add[T any](ctx context.Context, l *Library, c collection[T], v T) error {
	v = c.clone(v)
	id := c.idOf(v)

	return l.mutate(ctx, "add_"+c.key, func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		if err := c.check(cur, nil, v); err != nil {
			return nil, nil, invalidEntity(err)
		}
		if c.index(cur, id) >= 0 {
			return nil, nil, duplicate(c.entity, id)
		}
		cs := newChangeSet()
		c.set(cs, appended(c.items(cur), v))
		return cs, []*events.ChangeEvent{events.NewChangeEvent(c.key, events.OpCreated, id)}, nil
	})
}

// update replaces the entity with v's ID in place. A missing ID is not an
// error: nothing changes and false is returned.
func update[T any](ctx context.Context, l *Library, c collection[T], v T) (bool, error) {
	v = c.clone(v)
	id := c.idOf(v)

	var found bool
	err := l.mutate(ctx, "update_"+c.key, func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		i := c.index(cur, id)
		if i < 0 {
			return nil, nil, nil
		}
		if err := c.check(cur, &c.items(cur)[i], v); err != nil {
			return nil, nil, invalidEntity(err)
		}
		found = true
		cs := newChangeSet()
		c.set(cs, replaceAt(c.items(cur), i, v))
		return cs, []*events.ChangeEvent{events.NewChangeEvent(c.key, events.OpUpdated, id)}, nil
	})
	return found && err == nil, err
}

// modify applies fn to the current value of the entity under the write lock
// and stores the result. It returns the stored value, or false when the
// entity does not exist.
func modify[T any](ctx context.Context, l *Library, c collection[T], id uuid.UUID, fn func(T) (T, error)) (T, bool, error) {
	var (
		zero  T
		out   T
		found bool
	)
	err := l.mutate(ctx, "modify_"+c.key, func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		i := c.index(cur, id)
		if i < 0 {
			return nil, nil, nil
		}
		prev := c.items(cur)[i]
		next, err := fn(c.clone(prev))
		if err != nil {
			return nil, nil, err
		}
		if c.idOf(next) != id {
			return nil, nil, fmt.Errorf("%w: %s ID cannot change", ErrInvalidEntity, c.entity)
		}
		if err := c.check(cur, &prev, next); err != nil {
			return nil, nil, invalidEntity(err)
		}
		found = true
		out = c.clone(next)
		cs := newChangeSet()
		c.set(cs, replaceAt(c.items(cur), i, next))
		return cs, []*events.ChangeEvent{events.NewChangeEvent(c.key, events.OpUpdated, id)}, nil
	})
	if err != nil || !found {
		return zero, false, err
	}
	return out, true, nil
}

// remove deletes the entity with the given id. It reports false when there
// was nothing to delete.
func remove[T any](ctx context.Context, l *Library, c collection[T], id uuid.UUID) (bool, error) {
	var found bool
	err := l.mutate(ctx, "delete_"+c.key, func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		i := c.index(cur, id)
		if i < 0 {
			return nil, nil, nil
		}
		found = true
		cs := newChangeSet()
		c.set(cs, removeAt(c.items(cur), i))
		return cs, []*events.ChangeEvent{events.NewChangeEvent(c.key, events.OpDeleted, id)}, nil
	})
	return found && err == nil, err
}
