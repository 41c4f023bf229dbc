package store

import (
	"context"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/events"
)

// CurrentUser returns the singleton user record.
func (l *Library) CurrentUser() domain.User {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.User
}

// UpdateUser replaces the singleton user record.
func (l *Library) UpdateUser(ctx context.Context, u domain.User) error {
	if err := u.Validate(); err != nil {
		return invalidEntity(err)
	}

	return l.mutate(ctx, "update_user", func(_ *Snapshot) (*changeSet, []*events.ChangeEvent, error) {
		cs := newChangeSet()
		cs.setUser(u)
		return cs, []*events.ChangeEvent{events.NewChangeEvent(KeyCurrentUser, events.OpUpdated, u.ID)}, nil
	})
}
