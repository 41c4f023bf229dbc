package store

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/events"
	"github.com/phrazzld/studyhall/internal/platform/logger"
)

// Library is the single owner of the study collections.
// It is safe for concurrent use.
type Library struct {
	backend Backend
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state Snapshot
}

// Option configures a Library.
type Option func(*Library)

// WithEmitter replaces the default in-memory event emitter.
func WithEmitter(e events.EventEmitter) Option {
	return func(l *Library) { l.emitter = e }
}

// WithClock overrides the time source used for UpdatedAt/ProcessedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// NewLibrary creates an empty library persisting to backend. Call Load to
// read previously persisted collections.
func NewLibrary(backend Backend, log *slog.Logger, opts ...Option) *Library {
	if log == nil {
		log = slog.Default()
	}
	l := &Library{
		backend: backend,
		logger:  log.With("component", "library"),
		now:     func() time.Time { return time.Now().UTC() },
		state:   emptySnapshot(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.emitter == nil {
		l.emitter = events.NewInMemoryEventEmitter(log)
	}
	return l
}

// Subscribe registers a handler for change events. Handlers run synchronously
// after the mutation has been committed and the lock released.
func (l *Library) Subscribe(h events.EventHandler) {
	l.emitter.RegisterHandler(h)
}

// Close closes the backend.
func (l *Library) Close() error {
	return l.backend.Close()
}

// Snapshot returns a deep copy of every collection.
func (l *Library) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.clone()
}

// mutation computes the changes to apply to the current state. It must not
// modify cur. A nil changeSet or an empty one commits nothing.
type mutation func(cur *Snapshot) (*changeSet, []*events.ChangeEvent, error)

// mutate runs fn under the write lock, persists the resulting changes in one
// batch and swaps them into memory only after the write succeeded. Events are
// emitted after the lock is released.
func (l *Library) mutate(ctx context.Context, op string, fn mutation) error {
	l.mu.Lock()
	cs, evs, err := fn(&l.state)
	if err == nil && cs != nil && !cs.empty() {
		err = l.commitLocked(ctx, op, cs)
	}
	l.mu.Unlock()

	if err != nil {
		return err
	}
	l.emit(ctx, evs)
	return nil
}

func (l *Library) commitLocked(ctx context.Context, op string, cs *changeSet) error {
	entries, err := cs.encode()
	if err != nil {
		return err
	}

	if err := l.backend.PutBatch(ctx, entries); err != nil {
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		logger.FromContextOrDefault(ctx, l.logger).Error("failed to persist collections",
			"operation", op,
			"keys", keys,
			"error", err)
		return NewStoreError(strings.Join(keys, ","), op, "failed to persist collections", err)
	}

	cs.applyTo(&l.state)
	return nil
}

func (l *Library) emit(ctx context.Context, evs []*events.ChangeEvent) {
	for _, ev := range evs {
		// The emitter logs handler failures; a listener never undoes a commit.
		_ = l.emitter.EmitEvent(ctx, ev)
	}
}

// Persist writes every collection to the backend.
func (l *Library) Persist(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := encodeAll(l.state)
	if err != nil {
		return err
	}
	if err := l.backend.PutBatch(ctx, entries); err != nil {
		return NewStoreError("library", "persist", "failed to persist collections", err)
	}
	return nil
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := slices.Clone(items)
	out[i] = v
	return out
}

func removeAt[T any](items []T, i int) []T {
	return slices.Delete(slices.Clone(items), i, i+1)
}

// removeWhere returns a copy of items without the matching elements and the
// IDs that were removed.
func removeWhere[T any](items []T, match func(T) bool, idOf func(T) uuid.UUID) ([]T, []uuid.UUID) {
	out := make([]T, 0, len(items))
	var removed []uuid.UUID
	for _, item := range items {
		if match(item) {
			removed = append(removed, idOf(item))
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

func appended[T any](items []T, v ...T) []T {
	out := make([]T, 0, len(items)+len(v))
	out = append(out, items...)
	return append(out, v...)
}
