// Package local implements generation.Generator without any remote model.
// Output is derived deterministically from the material text, which makes it
// suitable for offline use and for tests.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
)

// Source tags every artifact this generator produces.
const Source = "local"

// DefaultMaxItems bounds cards and questions per material.
const DefaultMaxItems = 10

// Config tunes the local generator.
type Config struct {
	// Latency is waited before each call returns, to mimic a remote model.
	Latency time.Duration
	// MaxItems caps cards and questions per material; zero means DefaultMaxItems.
	MaxItems int
}

// Generator is the deterministic local generator.
type Generator struct {
	latency  time.Duration
	maxItems int
	logger   *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// New creates a local generator.
func New(cfg Config, logger *slog.Logger) (*Generator, error) {
	if cfg.Latency < 0 || cfg.MaxItems < 0 {
		return nil, fmt.Errorf("%w: latency and max items must not be negative", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxItems := cfg.MaxItems
	if maxItems == 0 {
		maxItems = DefaultMaxItems
	}
	return &Generator{
		latency:  cfg.Latency,
		maxItems: maxItems,
		logger:   logger.With(slog.String("component", "local_generator")),
	}, nil
}

func (g *Generator) wait(ctx context.Context) error {
	if g.latency <= 0 {
		return generation.ContextError(ctx)
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return generation.ContextError(ctx)
	case <-timer.C:
		return nil
	}
}

func (g *Generator) sentencesOf(material domain.Material) ([]string, error) {
	if strings.TrimSpace(material.Content) == "" {
		return nil, fmt.Errorf("%w: material %s", generation.ErrEmptyContent, material.ID)
	}
	return sentences(material.Content, 4), nil
}

// Flashcards turns definitions into question cards and other sentences into
// cloze cards.
func (g *Generator) Flashcards(ctx context.Context, material domain.Material) ([]domain.Flashcard, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	sents, err := g.sentencesOf(material)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Flashcard, 0, min(len(sents), g.maxItems))
	for _, s := range sents {
		if len(cards) == g.maxItems {
			break
		}
		front, back, ok := cardFaces(s)
		if !ok {
			continue
		}
		card, err := domain.NewFlashcard(material.ID, front, back, material.Tags)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, err)
		}
		card.Source = Source
		cards = append(cards, *card)
	}

	if len(cards) == 0 {
		card, err := domain.NewFlashcard(material.ID, "Summarize: "+material.Title,
			truncate(strings.TrimSpace(material.Content), 280), material.Tags)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, err)
		}
		card.Source = Source
		cards = append(cards, *card)
	}

	g.logger.DebugContext(ctx, "generated flashcards",
		slog.String("material_id", material.ID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

func cardFaces(sentence string) (front, back string, ok bool) {
	if subject, rest, ok := definition(sentence); ok {
		verb := "is"
		if strings.Contains(sentence, subject+" are ") {
			verb = "are"
		}
		return fmt.Sprintf("What %s %s?", verb, subject), rest, true
	}
	if term, ok := keyTerm(sentence); ok {
		return blankOut(sentence, term), term, true
	}
	return "", "", false
}

// Questions cycles through fill-in-the-blank, true/false and multiple choice.
func (g *Generator) Questions(ctx context.Context, material domain.Material) ([]domain.Question, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	sents, err := g.sentencesOf(material)
	if err != nil {
		return nil, err
	}

	qs, err := g.buildQuestions(material, sents, g.maxItems)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "generated questions",
		slog.String("material_id", material.ID.String()),
		slog.Int("count", len(qs)))
	return qs, nil
}

func (g *Generator) buildQuestions(material domain.Material, sents []string, limit int) ([]domain.Question, error) {
	terms := topTerms(material.Content, 8)
	qs := make([]domain.Question, 0, min(len(sents), limit))

	for _, s := range sents {
		if len(qs) == limit {
			break
		}
		term, ok := keyTerm(s)
		if !ok {
			continue
		}

		var (
			text    string
			typ     domain.QuestionType
			options []string
			answer  string
		)
		switch len(qs) % 3 {
		case 0:
			typ, text, answer = domain.QuestionTypeFillInBlank, blankOut(s, term), term
		case 1:
			typ, text, answer = domain.QuestionTypeTrueFalse, "True or false: "+s, "true"
		default:
			options = distractors(terms, term, 3)
			if len(options) == 0 {
				typ, text, answer = domain.QuestionTypeFillInBlank, blankOut(s, term), term
				break
			}
			options = append(options, term)
			slices.Sort(options)
			typ, text, answer = domain.QuestionTypeMultipleChoice,
				"Which term completes the sentence? "+blankOut(s, term), term
		}

		q, err := domain.NewQuestion(material.ID, text, typ, options, answer,
			"From the material: "+s, difficultyOf(term))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, err)
		}
		q.Source = Source
		qs = append(qs, *q)
	}
	return qs, nil
}

func distractors(terms []string, answer string, n int) []string {
	var out []string
	for _, t := range terms {
		if len(out) == n {
			break
		}
		if !strings.EqualFold(t, answer) {
			out = append(out, t)
		}
	}
	return out
}

func difficultyOf(term string) domain.Difficulty {
	switch n := len([]rune(term)); {
	case n <= 6:
		return domain.DifficultyEasy
	case n <= 9:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

// Note builds a study note with a short summary, key concepts, examples,
// likely misconceptions and a small quiz.
func (g *Generator) Note(ctx context.Context, material domain.Material) (domain.Note, error) {
	if err := g.wait(ctx); err != nil {
		return domain.Note{}, err
	}
	sents, err := g.sentencesOf(material)
	if err != nil {
		return domain.Note{}, err
	}

	note, err := domain.NewNote(material.ID, material.Title+" notes", material.Content)
	if err != nil {
		return domain.Note{}, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, err)
	}

	summary := sents
	if len(summary) > 2 {
		summary = summary[:2]
	}
	note.Summary = strings.Join(summary, " ")
	if note.Summary == "" {
		note.Summary = truncate(strings.TrimSpace(material.Content), 200)
	}
	note.KeyConcepts = topTerms(material.Content, 5)
	note.Examples = matching(sents, "for example", "e.g.", "such as", "for instance")
	note.Misconceptions = matching(sents, " not ", "never", "mistake", "misconception")
	note.Tags = slices.Clone(material.Tags)
	if note.Tags == nil {
		note.Tags = []string{}
	}
	note.Source = Source

	quiz, err := g.buildQuestions(material, sents, 3)
	if err != nil {
		return domain.Note{}, err
	}
	note.Quiz = quiz

	g.logger.DebugContext(ctx, "generated note",
		slog.String("material_id", material.ID.String()),
		slog.Int("key_concepts", len(note.KeyConcepts)))
	return *note, nil
}

func matching(sents []string, markers ...string) []string {
	out := []string{}
	for _, s := range sents {
		lower := " " + strings.ToLower(s) + " "
		for _, m := range markers {
			if strings.Contains(lower, m) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
