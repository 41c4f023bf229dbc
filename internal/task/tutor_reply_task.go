package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
)

// ReplySource tags tutor messages produced by the reply task.
const ReplySource = "tutor"

// SessionStore is the part of the library a reply task needs.
type SessionStore interface {
	TutorSession(id uuid.UUID) (domain.TutorSession, bool)
	Material(id uuid.UUID) (domain.Material, bool)
	AppendTutorMessage(ctx context.Context, sessionID uuid.UUID, msg domain.TutorMessage) (domain.TutorSession, bool, error)
}

type tutorReplyPayload struct {
	SessionID uuid.UUID `json:"session_id"`
	Prompt    string    `json:"prompt"`
}

// TutorReplyTask answers one learner message and appends the answer to the
// session as it is when the answer arrives.
type TutorReplyTask struct {
	id        uuid.UUID
	sessionID uuid.UUID
	prompt    string
	store     SessionStore
	generator generation.Generator
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
	status    *status
}

// NewTutorReplyTask creates a reply task. A non-positive timeout means
// DefaultTimeout.
func NewTutorReplyTask(
	sessionID uuid.UUID,
	prompt string,
	st SessionStore,
	gen generation.Generator,
	timeout time.Duration,
	logger *slog.Logger,
) (*TutorReplyTask, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("session %w", ErrEmptyID)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TutorReplyTask{
		id:        uuid.New(),
		sessionID: sessionID,
		prompt:    prompt,
		store:     st,
		generator: gen,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger.With("task_type", TaskTypeTutorReply, "session_id", sessionID),
		status:    newStatus(),
	}, nil
}

// ID returns the task's unique identifier
func (t *TutorReplyTask) ID() uuid.UUID { return t.id }

// Type returns the task type identifier
func (t *TutorReplyTask) Type() string { return TaskTypeTutorReply }

// Payload returns the task data as a byte slice
func (t *TutorReplyTask) Payload() []byte {
	data, err := json.Marshal(tutorReplyPayload{SessionID: t.sessionID, Prompt: t.prompt})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *TutorReplyTask) Status() TaskStatus { return t.status.get() }

// Execute generates the reply. A session deleted at any point makes the task
// a no-op.
func (t *TutorReplyTask) Execute(ctx context.Context) error {
	t.status.set(TaskStatusProcessing)

	session, ok := t.store.TutorSession(t.sessionID)
	if !ok {
		t.status.set(TaskStatusCompleted)
		t.logger.Info("session no longer exists, skipping reply")
		return nil
	}

	req := generation.ReplyRequest{Session: session, Prompt: t.prompt}
	if session.MaterialID.Valid {
		if m, ok := t.store.Material(session.MaterialID.UUID); ok {
			req.Material = &m
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, t.timeout)
	reply, err := t.generator.Reply(genCtx, req)
	cancel()
	if err != nil {
		t.status.set(TaskStatusFailed)
		return fmt.Errorf("failed to generate tutor reply: %w", err)
	}

	msg := domain.NewTutorMessage(reply, false, t.now())
	msg.Source = ReplySource
	if _, ok, err := t.store.AppendTutorMessage(ctx, t.sessionID, msg); err != nil {
		t.status.set(TaskStatusFailed)
		return fmt.Errorf("failed to save tutor reply: %w", err)
	} else if !ok {
		t.logger.Info("session deleted during reply, reply dropped")
	}

	t.status.set(TaskStatusCompleted)
	return nil
}
