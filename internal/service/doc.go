// Package service contains the application use cases that sit between the
// delivery mechanisms (HTTP API, CLI) and the library store.
//
// Key components:
//
// 1. ReviewService:
//   - Reviews and postpones flashcards through the SRS scheduler
//   - Applies each review as one atomic read-modify-write on the store
//
// 2. TutorService:
//   - Starts tutoring sessions and records learner messages
//   - Queues the tutor's reply as a background task
//
// 3. GenerationService:
//   - Queues study material generation for a material
//   - Optionally reacts to newly created materials through store events
//
// Services translate store-level misses into the sentinel errors below so
// that the API layer can map them to status codes.
package service
