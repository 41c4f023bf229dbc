package store

import (
	"encoding/json"

	"github.com/phrazzld/studyhall/internal/domain"
)

// Snapshot is a point-in-time copy of every collection. It shares no memory
// with the library it came from.
type Snapshot struct {
	Materials     []domain.Material
	Questions     []domain.Question
	Flashcards    []domain.Flashcard
	Notes         []domain.Note
	TutorSessions []domain.TutorSession
	User          domain.User
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Materials:     []domain.Material{},
		Questions:     []domain.Question{},
		Flashcards:    []domain.Flashcard{},
		Notes:         []domain.Note{},
		TutorSessions: []domain.TutorSession{},
		User:          domain.DefaultUser(),
	}
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Materials:     cloneAll(s.Materials, domain.Material.Clone),
		Questions:     cloneAll(s.Questions, domain.Question.Clone),
		Flashcards:    cloneAll(s.Flashcards, domain.Flashcard.Clone),
		Notes:         cloneAll(s.Notes, domain.Note.Clone),
		TutorSessions: cloneAll(s.TutorSessions, domain.TutorSession.Clone),
		User:          s.User,
	}
}

// changeSet holds the next value of every collection a mutation touches.
// A nil field means the collection is unchanged.
type changeSet struct {
	materials     []domain.Material
	questions     []domain.Question
	flashcards    []domain.Flashcard
	notes         []domain.Note
	tutorSessions []domain.TutorSession
	user          *domain.User

	touched map[string]bool
}

func newChangeSet() *changeSet {
	return &changeSet{touched: make(map[string]bool)}
}

func (c *changeSet) setMaterials(v []domain.Material) {
	c.materials = v
	c.touched[KeyMaterials] = true
}

func (c *changeSet) setQuestions(v []domain.Question) {
	c.questions = v
	c.touched[KeyQuestions] = true
}

func (c *changeSet) setFlashcards(v []domain.Flashcard) {
	c.flashcards = v
	c.touched[KeyFlashcards] = true
}

func (c *changeSet) setNotes(v []domain.Note) {
	c.notes = v
	c.touched[KeyNotes] = true
}

func (c *changeSet) setTutorSessions(v []domain.TutorSession) {
	c.tutorSessions = v
	c.touched[KeyTutorSessions] = true
}

func (c *changeSet) setUser(u domain.User) {
	c.user = &u
	c.touched[KeyCurrentUser] = true
}

func (c *changeSet) empty() bool {
	return len(c.touched) == 0
}

// encode serializes every touched collection in full.
func (c *changeSet) encode() (map[string][]byte, error) {
	values := map[string]any{}
	if c.touched[KeyMaterials] {
		values[KeyMaterials] = c.materials
	}
	if c.touched[KeyQuestions] {
		values[KeyQuestions] = c.questions
	}
	if c.touched[KeyFlashcards] {
		values[KeyFlashcards] = c.flashcards
	}
	if c.touched[KeyNotes] {
		values[KeyNotes] = c.notes
	}
	if c.touched[KeyTutorSessions] {
		values[KeyTutorSessions] = c.tutorSessions
	}
	if c.touched[KeyCurrentUser] {
		values[KeyCurrentUser] = c.user
	}

	entries := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, NewStoreError(key, "encode", "failed to encode collection", err)
		}
		entries[key] = data
	}
	return entries, nil
}

func (c *changeSet) applyTo(s *Snapshot) {
	if c.touched[KeyMaterials] {
		s.Materials = c.materials
	}
	if c.touched[KeyQuestions] {
		s.Questions = c.questions
	}
	if c.touched[KeyFlashcards] {
		s.Flashcards = c.flashcards
	}
	if c.touched[KeyNotes] {
		s.Notes = c.notes
	}
	if c.touched[KeyTutorSessions] {
		s.TutorSessions = c.tutorSessions
	}
	if c.touched[KeyCurrentUser] {
		s.User = *c.user
	}
}

// encodeAll serializes every collection of s.
func encodeAll(s Snapshot) (map[string][]byte, error) {
	cs := newChangeSet()
	cs.setMaterials(s.Materials)
	cs.setQuestions(s.Questions)
	cs.setFlashcards(s.Flashcards)
	cs.setNotes(s.Notes)
	cs.setTutorSessions(s.TutorSessions)
	cs.setUser(s.User)
	return cs.encode()
}
