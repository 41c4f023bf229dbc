package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/generation"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"github.com/phrazzld/studyhall/internal/store"
	"github.com/phrazzld/studyhall/internal/task"
)

// Submitter queues background tasks.
type Submitter interface {
	Submit(t task.Task) error
}

// SessionStore is the part of the library the tutor service needs.
type SessionStore interface {
	task.SessionStore
	AddTutorSession(ctx context.Context, s domain.TutorSession) error
	DeleteTutorSession(ctx context.Context, id uuid.UUID) (bool, error)
	ClearTutorHistory(ctx context.Context, sessionID uuid.UUID) (domain.TutorSession, bool, error)
	RelinkTutorSession(ctx context.Context, sessionID uuid.UUID, materialID uuid.NullUUID) (domain.TutorSession, bool, error)
	SetTutorMode(ctx context.Context, sessionID uuid.UUID, mode domain.TutorMode) (domain.TutorSession, bool, error)
}

// TutorService runs tutoring conversations. Learner messages are stored
// synchronously; the tutor's reply is generated in the background and
// appended to the session when it arrives.
type TutorService struct {
	store     SessionStore
	generator generation.Generator
	tasks     Submitter
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewTutorService creates a TutorService. timeout bounds each reply.
func NewTutorService(
	st SessionStore,
	gen generation.Generator,
	tasks Submitter,
	timeout time.Duration,
	log *slog.Logger,
) *TutorService {
	if st == nil || gen == nil || tasks == nil {
		panic("tutor service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TutorService{
		store:     st,
		generator: gen,
		tasks:     tasks,
		timeout:   timeout,
		now:       time.Now,
		logger:    log.With(slog.String("component", "tutor_service")),
	}
}

// StartSession creates an empty session, optionally linked to a material.
func (s *TutorService) StartSession(
	ctx context.Context,
	mode domain.TutorMode,
	materialID uuid.NullUUID,
) (domain.TutorSession, error) {
	if err := s.requireMaterial(materialID); err != nil {
		return domain.TutorSession{}, err
	}

	session, err := domain.NewTutorSession(mode, materialID)
	if err != nil {
		return domain.TutorSession{}, err
	}
	if err := s.store.AddTutorSession(ctx, *session); err != nil {
		return domain.TutorSession{}, s.storeError(ctx, "start_session", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("tutor session started",
		slog.String("session_id", session.ID.String()),
		slog.String("mode", string(mode)))
	return *session, nil
}

// Session returns the session with the given ID.
func (s *TutorService) Session(_ context.Context, id uuid.UUID) (domain.TutorSession, error) {
	session, ok := s.store.TutorSession(id)
	if !ok {
		return domain.TutorSession{}, ErrSessionNotFound
	}
	return session, nil
}

// SendMessage records the learner's message and queues the tutor's reply. It
// returns the session including the learner's message. When the reply cannot
// be queued the message is kept and ErrBusy is returned.
func (s *TutorService) SendMessage(ctx context.Context, sessionID uuid.UUID, content string) (domain.TutorSession, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.TutorSession{}, ErrEmptyMessage
	}

	msg := domain.NewTutorMessage(content, true, s.now())
	session, ok, err := s.store.AppendTutorMessage(ctx, sessionID, msg)
	if err != nil {
		return domain.TutorSession{}, s.storeError(ctx, "send_message", err)
	}
	if !ok {
		return domain.TutorSession{}, ErrSessionNotFound
	}

	reply, err := task.NewTutorReplyTask(sessionID, content, s.store, s.generator, s.timeout, s.logger)
	if err != nil {
		return domain.TutorSession{}, NewServiceError("send_message", "failed to create reply task", err)
	}
	if err := s.tasks.Submit(reply); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to queue tutor reply",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return session, fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return session, nil
}

// ClearHistory removes every message from the session.
func (s *TutorService) ClearHistory(ctx context.Context, sessionID uuid.UUID) (domain.TutorSession, error) {
	return s.result(ctx, "clear_history")(s.store.ClearTutorHistory(ctx, sessionID))
}

// Relink points the session at another material, or at none.
func (s *TutorService) Relink(ctx context.Context, sessionID uuid.UUID, materialID uuid.NullUUID) (domain.TutorSession, error) {
	if err := s.requireMaterial(materialID); err != nil {
		return domain.TutorSession{}, err
	}
	return s.result(ctx, "relink")(s.store.RelinkTutorSession(ctx, sessionID, materialID))
}

// SetMode switches the session's tutoring style. Prior messages are kept.
func (s *TutorService) SetMode(ctx context.Context, sessionID uuid.UUID, mode domain.TutorMode) (domain.TutorSession, error) {
	if !mode.Valid() {
		return domain.TutorSession{}, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidTutorMode)
	}
	return s.result(ctx, "set_mode")(s.store.SetTutorMode(ctx, sessionID, mode))
}

// DeleteSession removes the session and its messages.
func (s *TutorService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	ok, err := s.store.DeleteTutorSession(ctx, sessionID)
	if err != nil {
		return s.storeError(ctx, "delete_session", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *TutorService) requireMaterial(materialID uuid.NullUUID) error {
	if !materialID.Valid {
		return nil
	}
	if _, ok := s.store.Material(materialID.UUID); !ok {
		return ErrMaterialNotFound
	}
	return nil
}

func (s *TutorService) result(ctx context.Context, op string) func(domain.TutorSession, bool, error) (domain.TutorSession, error) {
	return func(session domain.TutorSession, ok bool, err error) (domain.TutorSession, error) {
		if err != nil {
			return domain.TutorSession{}, s.storeError(ctx, op, err)
		}
		if !ok {
			return domain.TutorSession{}, ErrSessionNotFound
		}
		return session, nil
	}
}

// storeError maps a material deleted between check and write to
// ErrMaterialNotFound and wraps everything else.
func (s *TutorService) storeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrMaterialNotFound) {
		return ErrMaterialNotFound
	}
	if errors.Is(err, store.ErrInvalidEntity) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("tutor session update failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return NewServiceError(op, "failed to update tutor session", err)
}
