package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
)

// TutorSession returns a copy of the session with the given id.
func (l *Library) TutorSession(id uuid.UUID) (domain.TutorSession, bool) {
	return get(l, tutorSessions, id)
}

// AddTutorSession appends s. A linked material must exist.
func (l *Library) AddTutorSession(ctx context.Context, s domain.TutorSession) error {
	return add(ctx, l, tutorSessions, s)
}

// UpdateTutorSession replaces the session with s's ID; false when there is none.
// The message log may only grow or be cleared: an update that edits or drops
// individual messages fails with domain.ErrMessageLogRewritten.
//
// Prefer the targeted operations below for changes made after a slow call:
// they re-read the session under the lock instead of overwriting it with a
// stale copy.
func (l *Library) UpdateTutorSession(ctx context.Context, s domain.TutorSession) (bool, error) {
	return update(ctx, l, tutorSessions, s)
}

// DeleteTutorSession removes a session; false when there is none.
func (l *Library) DeleteTutorSession(ctx context.Context, id uuid.UUID) (bool, error) {
	return remove(ctx, l, tutorSessions, id)
}

// AppendTutorMessage adds msg to the end of the current message log of the
// session. A session deleted in the meantime makes this a no-op returning false.
func (l *Library) AppendTutorMessage(ctx context.Context, sessionID uuid.UUID, msg domain.TutorMessage) (domain.TutorSession, bool, error) {
	return modify(ctx, l, tutorSessions, sessionID, func(s domain.TutorSession) (domain.TutorSession, error) {
		return s.Append(msg, l.now()), nil
	})
}

// ClearTutorHistory empties the session's message log.
func (l *Library) ClearTutorHistory(ctx context.Context, sessionID uuid.UUID) (domain.TutorSession, bool, error) {
	return modify(ctx, l, tutorSessions, sessionID, func(s domain.TutorSession) (domain.TutorSession, error) {
		return s.Cleared(l.now()), nil
	})
}

// RelinkTutorSession points the session at another material, or at none.
// The new material must exist.
func (l *Library) RelinkTutorSession(ctx context.Context, sessionID uuid.UUID, materialID uuid.NullUUID) (domain.TutorSession, bool, error) {
	return modify(ctx, l, tutorSessions, sessionID, func(s domain.TutorSession) (domain.TutorSession, error) {
		return s.Relinked(materialID, l.now()), nil
	})
}

// SetTutorMode switches the session's mode, keeping its history.
func (l *Library) SetTutorMode(ctx context.Context, sessionID uuid.UUID, mode domain.TutorMode) (domain.TutorSession, bool, error) {
	return modify(ctx, l, tutorSessions, sessionID, func(s domain.TutorSession) (domain.TutorSession, error) {
		return s.WithMode(mode, l.now()), nil
	})
}
