package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MaterialType tags the kind of source a material was imported from.
type MaterialType string

// Possible material type values
const (
	MaterialTypeDocument MaterialType = "document"
	MaterialTypeText     MaterialType = "text"
	MaterialTypeImage    MaterialType = "image"
	MaterialTypeVideo    MaterialType = "video"
	MaterialTypeAudio    MaterialType = "audio"
	MaterialTypeLink     MaterialType = "link"
)

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialTypeDocument, MaterialTypeText, MaterialTypeImage,
		MaterialTypeVideo, MaterialTypeAudio, MaterialTypeLink:
		return true
	default:
		return false
	}
}

// Material is a piece of source content the user studies from. It is the
// root of the ownership graph: questions, flashcards, notes and tutor
// sessions reference it by ID.
type Material struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Type        MaterialType `json:"type"`
	SourceURL   string       `json:"sourceURL,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	ProcessedAt *time.Time   `json:"processedAt,omitempty"`
	Tags        []string     `json:"tags"`
	IsProcessed bool         `json:"isProcessed"`
}

// NewMaterial creates a new Material with a fresh ID and creation timestamp.
// Returns an error if validation fails.
func NewMaterial(title, content string, typ MaterialType, tags []string) (*Material, error) {
	m := &Material{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
		Tags:      normalizeTags(tags),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the Material has valid data.
func (m *Material) Validate() error {
	if m.ID == uuid.Nil {
		return invalid(ErrEmptyID)
	}

	if m.Title == "" {
		return invalid(ErrEmptyTitle)
	}

	if !m.Type.Valid() {
		return invalid(ErrInvalidMaterialType)
	}

	return nil
}

// MarkProcessed returns a copy of the material flagged as processed at now.
func (m Material) MarkProcessed(now time.Time) Material {
	out := m.Clone()
	at := now.UTC()
	out.IsProcessed = true
	out.ProcessedAt = &at
	return out
}

// Clone returns a deep copy of the material.
func (m Material) Clone() Material {
	out := m
	out.Tags = slices.Clone(m.Tags)
	if m.ProcessedAt != nil {
		at := *m.ProcessedAt
		out.ProcessedAt = &at
	}
	return out
}

// normalizeTags drops empty tags while preserving order. A nil input stays an
// empty, non-nil slice so that collections serialize as [] rather than null.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
