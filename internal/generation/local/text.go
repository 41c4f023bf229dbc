package local

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// stopwords never become key terms.
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "among": true,
	"because": true, "before": true, "being": true, "between": true, "could": true,
	"does": true, "during": true, "each": true, "either": true, "every": true,
	"from": true, "have": true, "into": true, "itself": true, "just": true,
	"many": true, "more": true, "most": true, "much": true, "only": true,
	"other": true, "over": true, "same": true, "should": true, "some": true,
	"such": true, "than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"those": true, "through": true, "under": true, "until": true, "very": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "with": true, "within": true, "without": true, "would": true,
	"your": true, "example": true,
}

// sentences splits text on terminal punctuation and line breaks, keeping
// sentences of at least minWords words.
func sentences(text string, minWords int) []string {
	var out []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if len(strings.Fields(s)) >= minWords {
			out = append(out, s)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case r == '\n':
			flush()
		case r == '.' || r == '!' || r == '?':
			b.WriteRune(r)
			// "3.14" and "e.g." do not end a sentence.
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func cleanWord(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func isKeyTerm(w string) bool {
	return len([]rune(w)) > 4 && !stopwords[strings.ToLower(w)]
}

// keyTerm picks the longest key term of a sentence; earlier words win ties.
func keyTerm(sentence string) (string, bool) {
	best := ""
	for _, w := range strings.Fields(sentence) {
		w = cleanWord(w)
		if isKeyTerm(w) && len([]rune(w)) > len([]rune(best)) {
			best = w
		}
	}
	return best, best != ""
}

// topTerms returns up to n key terms ordered by frequency, then alphabetically.
func topTerms(text string, n int) []string {
	counts := map[string]int{}
	display := map[string]string{}
	for _, w := range strings.Fields(text) {
		w = cleanWord(w)
		if !isKeyTerm(w) {
			continue
		}
		k := strings.ToLower(w)
		counts[k]++
		if _, ok := display[k]; !ok {
			display[k] = w
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = display[k]
	}
	return out
}

// blankOut replaces the first whole-word occurrence of term with a gap.
func blankOut(sentence, term string) string {
	words := strings.Fields(sentence)
	for i, w := range words {
		if cleanWord(w) == term {
			words[i] = strings.Replace(w, term, "_____", 1)
			return strings.Join(words, " ")
		}
	}
	return sentence
}

// definition splits "X is Y" style sentences into subject and definition.
func definition(sentence string) (subject, rest string, ok bool) {
	for _, verb := range []string{" is ", " are ", " means ", " refers to "} {
		i := strings.Index(sentence, verb)
		if i <= 0 {
			continue
		}
		subject = strings.TrimSpace(sentence[:i])
		rest = strings.TrimSpace(sentence[i+len(verb):])
		rest = strings.TrimRight(rest, ".!?")
		if subject == "" || rest == "" || len(strings.Fields(subject)) > 6 {
			continue
		}
		return subject, rest, true
	}
	return "", "", false
}

// overlap counts the key terms two texts share.
func overlap(a, b string) int {
	terms := map[string]bool{}
	for _, w := range strings.Fields(a) {
		if w = cleanWord(w); isKeyTerm(w) {
			terms[strings.ToLower(w)] = true
		}
	}
	n := 0
	seen := map[string]bool{}
	for _, w := range strings.Fields(b) {
		k := strings.ToLower(cleanWord(w))
		if terms[k] && !seen[k] {
			seen[k] = true
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
