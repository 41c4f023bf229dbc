package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/phrazzld/studyhall/internal/domain"
)

// DefaultDeck is the deck of cards without tags.
const DefaultDeck = "General"

// MasteredRepetitions is the streak of successful reviews after which a card
// counts as mastered.
const MasteredRepetitions = 3

// Deck groups cards sharing their first tag.
type Deck struct {
	Name     string             `json:"name"`
	Cards    []domain.Flashcard `json:"cards"`
	DueCount int                `json:"dueCount"`
}

// Due returns the cards whose next review date is at or before now,
// in their original order.
func Due(cards []domain.Flashcard, now time.Time) []domain.Flashcard {
	out := []domain.Flashcard{}
	for _, c := range cards {
		if c.IsDue(now) {
			out = append(out, c)
		}
	}
	return out
}

// DueCount counts the cards Due would return.
func DueCount(cards []domain.Flashcard, now time.Time) int {
	n := 0
	for _, c := range cards {
		if c.IsDue(now) {
			n++
		}
	}
	return n
}

// Filter keeps the cards whose front, back or any tag contains text,
// ignoring case. Empty text keeps every card.
func Filter(cards []domain.Flashcard, text string) []domain.Flashcard {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return slices.Clone(cards)
	}

	out := []domain.Flashcard{}
	for _, c := range cards {
		if matches(c, needle) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c domain.Flashcard, needle string) bool {
	if strings.Contains(strings.ToLower(c.Front), needle) ||
		strings.Contains(strings.ToLower(c.Back), needle) {
		return true
	}
	return slices.ContainsFunc(c.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), needle)
	})
}

// deckName is the first tag of the card, or DefaultDeck.
func deckName(c domain.Flashcard) string {
	if tag := c.PrimaryTag(); tag != "" {
		return tag
	}
	return DefaultDeck
}

// Decks filters cards by text and groups the rest by first tag. Decks are
// sorted by name; cards keep their relative order within a deck.
func Decks(cards []domain.Flashcard, filter string, now time.Time) []Deck {
	index := map[string]int{}
	decks := []Deck{}

	for _, c := range Filter(cards, filter) {
		name := deckName(c)
		i, ok := index[name]
		if !ok {
			i = len(decks)
			index[name] = i
			decks = append(decks, Deck{Name: name, Cards: []domain.Flashcard{}})
		}
		decks[i].Cards = append(decks[i].Cards, c)
		if c.IsDue(now) {
			decks[i].DueCount++
		}
	}

	slices.SortStableFunc(decks, func(a, b Deck) int { return cmp.Compare(a.Name, b.Name) })
	return decks
}

// Starred returns the starred cards in their original order.
func Starred(cards []domain.Flashcard) []domain.Flashcard {
	out := []domain.Flashcard{}
	for _, c := range cards {
		if c.IsStarred {
			out = append(out, c)
		}
	}
	return out
}

// NextDue returns the due card that has been waiting longest. Ties keep
// collection order.
func NextDue(cards []domain.Flashcard, now time.Time) (domain.Flashcard, bool) {
	var (
		best  domain.Flashcard
		found bool
	)
	for _, c := range cards {
		if !c.IsDue(now) {
			continue
		}
		if !found || c.NextReviewDate.Before(best.NextReviewDate) {
			best, found = c, true
		}
	}
	return best, found
}
