package task

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeMaterialGeneration derives cards, questions and a note from a material
	TaskTypeMaterialGeneration = "material_generation"

	// TaskTypeTutorReply produces the tutor's answer to a learner message
	TaskTypeTutorReply = "tutor_reply"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// status is a TaskStatus safe to read while a worker updates it.
type status struct {
	v atomic.Value
}

func newStatus() *status {
	s := &status{}
	s.set(TaskStatusPending)
	return s
}

func (s *status) set(v TaskStatus) { s.v.Store(v) }

func (s *status) get() TaskStatus { return s.v.Load().(TaskStatus) }
