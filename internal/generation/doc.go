// Package generation defines the boundary between the study library and
// whatever produces study artifacts from a material: flashcards, quiz
// questions, notes and tutor replies.
//
// The Generator interface keeps the application core independent of the
// producer. The local subpackage provides a deterministic, offline
// implementation.
package generation
