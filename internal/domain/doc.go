// Package domain contains the core study entities (materials, questions,
// flashcards, notes, tutor sessions and the user) together with their
// validation rules. It is independent of any storage or delivery mechanism.
package domain
