package local

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
)

var arithmetic = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([-+*/x×÷])\s*(-?\d+(?:\.\d+)?)`)

// Reply answers in the style of the session's mode, grounding the answer in
// the linked material when there is one.
func (g *Generator) Reply(ctx context.Context, req generation.ReplyRequest) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", generation.ErrEmptyContent)
	}

	var sents []string
	if req.Material != nil {
		sents = sentences(req.Material.Content, 3)
	}
	turn := len(req.Session.Messages)

	var reply string
	switch req.Session.Mode {
	case domain.TutorModeSocratic:
		reply = socratic(prompt, sents)
	case domain.TutorModeMathHelp:
		reply = mathHelp(prompt)
	case domain.TutorModeExamCoach:
		reply = examCoach(prompt, sents, turn)
	default:
		reply = explain(prompt, sents)
	}

	g.logger.DebugContext(ctx, "generated tutor reply",
		slog.String("session_id", req.Session.ID.String()),
		slog.String("mode", string(req.Session.Mode)))
	return reply, nil
}

func bestSentence(prompt string, sents []string) (string, bool) {
	best, score := "", 0
	for _, s := range sents {
		if n := overlap(prompt, s); n > score {
			best, score = s, n
		}
	}
	return best, score > 0
}

func socratic(prompt string, sents []string) string {
	term, ok := keyTerm(prompt)
	if !ok {
		return "What do you already know about this? Try to put the question in your own words first."
	}
	q := fmt.Sprintf("What do you already know about %s? ", term)
	if hint, ok := bestSentence(prompt, sents); ok {
		other, _ := keyTerm(hint)
		if other != "" && !strings.EqualFold(other, term) {
			return q + fmt.Sprintf("How might %s relate to %s?", term, other)
		}
	}
	return q + "Which part of it feels least clear to you?"
}

func explain(prompt string, sents []string) string {
	if s, ok := bestSentence(prompt, sents); ok {
		return "Here is what the material says: " + s + " Try restating it in your own words."
	}
	if term, ok := keyTerm(prompt); ok {
		return fmt.Sprintf("Let's break %s down. Start with a definition, then look for one concrete example.", term)
	}
	return "Let's break this down step by step. What is the first part you are unsure about?"
}

func mathHelp(prompt string) string {
	m := arithmetic.FindStringSubmatch(prompt)
	if m == nil {
		return "Write the problem as an expression, name the unknown, then solve one step at a time."
	}
	a, errA := strconv.ParseFloat(m[1], 64)
	b, errB := strconv.ParseFloat(m[3], 64)
	if errA != nil || errB != nil {
		return "I could not read those numbers. Could you write them again?"
	}

	var result float64
	switch m[2] {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*", "x", "×":
		result = a * b
	default:
		if b == 0 {
			return "Division by zero is undefined. Check the divisor."
		}
		result = a / b
	}

	return fmt.Sprintf("%s %s %s = %s. Check it by working backwards from the result.",
		m[1], m[2], m[3], strconv.FormatFloat(result, 'f', -1, 64))
}

func examCoach(prompt string, sents []string, turn int) string {
	if len(sents) == 0 {
		return "Exam tip: answer the question that is asked, show your reasoning, and leave time to review."
	}
	s, ok := bestSentence(prompt, sents)
	if !ok {
		s = sents[turn%len(sents)]
	}
	if term, ok := keyTerm(s); ok {
		return "Practice question: fill in the blank. " + blankOut(s, term)
	}
	return "Practice question: explain this in one sentence. " + s
}
