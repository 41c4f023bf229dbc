// Package seed builds sample libraries from YAML. The default sample is
// embedded in the binary and loaded into empty libraries on first start.
package seed

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/store"
)

// Source tags every entity created from a seed file.
const Source = "sample"

//go:embed sample.yaml
var sampleFS embed.FS

// ErrUnknownMaterial is returned when a session refers to a material title
// that is not in the same file.
var ErrUnknownMaterial = errors.New("unknown material")

// File is the YAML layout of a seed file.
type File struct {
	Materials []Material `yaml:"materials"`
	Sessions  []Session  `yaml:"sessions,omitempty"`
}

// Material is a seed material together with its derived artifacts.
type Material struct {
	Title      string     `yaml:"title"`
	Type       string     `yaml:"type"`
	Content    string     `yaml:"content"`
	SourceURL  string     `yaml:"source_url,omitempty"`
	Tags       []string   `yaml:"tags,omitempty"`
	Processed  bool       `yaml:"processed,omitempty"`
	Flashcards []Card     `yaml:"flashcards,omitempty"`
	Questions  []Question `yaml:"questions,omitempty"`
	Notes      []Note     `yaml:"notes,omitempty"`
}

// Card is a seed flashcard. DueInDays places the first review relative to
// the seeding time; negative values make the card overdue.
type Card struct {
	Front     string   `yaml:"front"`
	Back      string   `yaml:"back"`
	Tags      []string `yaml:"tags,omitempty"`
	Starred   bool     `yaml:"starred,omitempty"`
	DueInDays int      `yaml:"due_in_days"`
}

// Question is a seed quiz question.
type Question struct {
	Question    string   `yaml:"question"`
	Type        string   `yaml:"type"`
	Options     []string `yaml:"options,omitempty"`
	Answer      string   `yaml:"answer"`
	Explanation string   `yaml:"explanation,omitempty"`
	Difficulty  string   `yaml:"difficulty"`
}

// Note is a seed study note.
type Note struct {
	Title          string   `yaml:"title"`
	Content        string   `yaml:"content,omitempty"`
	Summary        string   `yaml:"summary,omitempty"`
	KeyConcepts    []string `yaml:"key_concepts,omitempty"`
	Examples       []string `yaml:"examples,omitempty"`
	Misconceptions []string `yaml:"misconceptions,omitempty"`
	Tags           []string `yaml:"tags,omitempty"`
}

// Session is a seed tutoring session. Material names a material title from
// the same file and may be empty.
type Session struct {
	Mode     string    `yaml:"mode"`
	Material string    `yaml:"material,omitempty"`
	Messages []Message `yaml:"messages,omitempty"`
}

// Message is one turn of a seed session.
type Message struct {
	User    bool   `yaml:"user"`
	Content string `yaml:"content"`
}

// Default builds the embedded sample library.
func Default(now time.Time) (store.Seed, error) {
	data, err := sampleFS.ReadFile("sample.yaml")
	if err != nil {
		return store.Seed{}, fmt.Errorf("read embedded sample: %w", err)
	}
	return Parse(data, now)
}

// FromFile builds a seed from the YAML file at path.
func FromFile(path string, now time.Time) (store.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data, now)
}

// Parse builds a seed from YAML. Every entity gets a fresh ID and timestamps
// derived from now.
func Parse(data []byte, now time.Time) (store.Seed, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return store.Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return f.Build(now)
}

// Build converts the file into validated domain entities.
func (f File) Build(now time.Time) (store.Seed, error) {
	now = now.UTC()
	var out store.Seed
	byTitle := make(map[string]uuid.UUID, len(f.Materials))

	for i, sm := range f.Materials {
		m, err := domain.NewMaterial(sm.Title, sm.Content, domain.MaterialType(sm.Type), sm.Tags)
		if err != nil {
			return store.Seed{}, fmt.Errorf("material %d (%q): %w", i, sm.Title, err)
		}
		m.SourceURL = sm.SourceURL
		m.CreatedAt = now
		if sm.Processed {
			*m = m.MarkProcessed(now)
		}
		out.Materials = append(out.Materials, *m)
		byTitle[sm.Title] = m.ID

		for j, sc := range sm.Flashcards {
			c, err := buildCard(m.ID, sc, now)
			if err != nil {
				return store.Seed{}, fmt.Errorf("material %q flashcard %d: %w", sm.Title, j, err)
			}
			out.Flashcards = append(out.Flashcards, c)
		}
		for j, sq := range sm.Questions {
			q, err := buildQuestion(m.ID, sq, now)
			if err != nil {
				return store.Seed{}, fmt.Errorf("material %q question %d: %w", sm.Title, j, err)
			}
			out.Questions = append(out.Questions, q)
		}
		for j, sn := range sm.Notes {
			n, err := buildNote(m.ID, sn, now)
			if err != nil {
				return store.Seed{}, fmt.Errorf("material %q note %d: %w", sm.Title, j, err)
			}
			out.Notes = append(out.Notes, n)
		}
	}

	for i, ss := range f.Sessions {
		var link uuid.NullUUID
		if ss.Material != "" {
			id, ok := byTitle[ss.Material]
			if !ok {
				return store.Seed{}, fmt.Errorf("session %d: %w %q", i, ErrUnknownMaterial, ss.Material)
			}
			link = uuid.NullUUID{UUID: id, Valid: true}
		}

		s, err := domain.NewTutorSession(domain.TutorMode(ss.Mode), link)
		if err != nil {
			return store.Seed{}, fmt.Errorf("session %d: %w", i, err)
		}
		s.CreatedAt = now
		s.UpdatedAt = now
		session := *s
		for _, msg := range ss.Messages {
			tm := domain.NewTutorMessage(msg.Content, msg.User, now)
			tm.Source = Source
			session = session.Append(tm, now)
		}
		out.TutorSessions = append(out.TutorSessions, session)
	}

	return out, nil
}

func buildCard(materialID uuid.UUID, sc Card, now time.Time) (domain.Flashcard, error) {
	c, err := domain.NewFlashcard(materialID, sc.Front, sc.Back, sc.Tags)
	if err != nil {
		return domain.Flashcard{}, err
	}
	c.NextReviewDate = now.AddDate(0, 0, sc.DueInDays)
	c.CreatedAt = c.NextReviewDate.Add(-domain.DefaultInterval)
	c.IsStarred = sc.Starred
	c.Source = Source
	return *c, nil
}

func buildQuestion(materialID uuid.UUID, sq Question, now time.Time) (domain.Question, error) {
	q, err := domain.NewQuestion(
		materialID,
		sq.Question,
		domain.QuestionType(sq.Type),
		sq.Options,
		sq.Answer,
		sq.Explanation,
		domain.Difficulty(sq.Difficulty),
	)
	if err != nil {
		return domain.Question{}, err
	}
	q.CreatedAt = now
	q.Source = Source
	return *q, nil
}

func buildNote(materialID uuid.UUID, sn Note, now time.Time) (domain.Note, error) {
	n, err := domain.NewNote(materialID, sn.Title, sn.Content)
	if err != nil {
		return domain.Note{}, err
	}
	n.Summary = sn.Summary
	n.KeyConcepts = orEmpty(sn.KeyConcepts)
	n.Examples = orEmpty(sn.Examples)
	n.Misconceptions = orEmpty(sn.Misconceptions)
	n.Tags = orEmpty(sn.Tags)
	n.Source = Source
	n.CreatedAt = now
	n.UpdatedAt = now
	return *n, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
