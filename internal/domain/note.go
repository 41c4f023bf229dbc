package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Note is a structured study note derived from a material. It embeds its own
// quiz as question values; those questions are not part of the top-level
// question collection.
type Note struct {
	ID             uuid.UUID  `json:"id"`
	MaterialID     uuid.UUID  `json:"materialId"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Summary        string     `json:"summary"`
	KeyConcepts    []string   `json:"keyConcepts"`
	Examples       []string   `json:"examples"`
	Misconceptions []string   `json:"misconceptions"`
	Tags           []string   `json:"tags"`
	Quiz           []Question `json:"quiz"`
	Source         string     `json:"source,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewNote creates a new Note with a fresh ID and timestamps.
func NewNote(materialID uuid.UUID, title, content string) (*Note, error) {
	now := time.Now().UTC()
	n := &Note{
		ID:             uuid.New(),
		MaterialID:     materialID,
		Title:          title,
		Content:        content,
		KeyConcepts:    []string{},
		Examples:       []string{},
		Misconceptions: []string{},
		Tags:           []string{},
		Quiz:           []Question{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Note has valid data, including its embedded quiz.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return invalid(ErrEmptyID)
	}

	if n.MaterialID == uuid.Nil {
		return invalid(ErrEmptyMaterialID)
	}

	if n.Title == "" {
		return invalid(ErrEmptyTitle)
	}

	for i := range n.Quiz {
		if err := n.Quiz[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Revise returns a copy of the note with new title, content and summary and a
// refreshed UpdatedAt.
func (n Note) Revise(title, content, summary string, now time.Time) Note {
	out := n.Clone()
	out.Title = title
	out.Content = content
	out.Summary = summary
	out.UpdatedAt = now.UTC()
	return out
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	out := n
	out.KeyConcepts = slices.Clone(n.KeyConcepts)
	out.Examples = slices.Clone(n.Examples)
	out.Misconceptions = slices.Clone(n.Misconceptions)
	out.Tags = slices.Clone(n.Tags)
	if n.Quiz != nil {
		out.Quiz = make([]Question, len(n.Quiz))
		for i, q := range n.Quiz {
			out.Quiz[i] = q.Clone()
		}
	}
	return out
}
