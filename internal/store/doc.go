// Package store owns the study library: materials and everything derived
// from them (questions, flashcards, notes, tutor sessions) plus the singleton
// user record.
//
// A Library keeps the six collections in memory and persists each one in
// full under its own key of a Backend. Every mutation encodes the affected
// collections, writes them to the backend in one batch and only then swaps
// the in-memory state, so a failed write never leaves memory ahead of disk.
// Reads return deep copies; nothing outside the package can alias stored
// values.
package store
