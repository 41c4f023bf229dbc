package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/events"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

// LoadReport describes what Load found under each key.
type LoadReport struct {
	// Loaded lists keys that decoded successfully.
	Loaded []string
	// Missing lists keys that had never been written.
	Missing []string
	// Corrupt lists keys whose value could not be decoded. Their collections
	// start from the default value.
	Corrupt []*DecodeError
	// Orphaned counts entities whose material was not loaded, typically
	// because the materials key was corrupt. They are kept and stay editable
	// but no longer cascade.
	Orphaned int
}

// Load replaces the in-memory state with the persisted collections.
//
// Keys are read concurrently and decoded independently: a key that fails to
// decode falls back to its default (an empty collection, or the default
// user) without affecting the others. A backend read failure aborts the load
// and leaves the current state untouched.
func (l *Library) Load(ctx context.Context) (LoadReport, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)

	raw := make([][]byte, len(Keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range Keys {
		g.Go(func() error {
			data, err := l.backend.Get(gctx, key)
			if errors.Is(err, ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return NewStoreError(key, "load", "failed to read key", err)
			}
			raw[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("failed to load library", "error", err)
		return LoadReport{}, err
	}

	next := emptySnapshot()
	var report LoadReport
	for i, key := range Keys {
		if raw[i] == nil {
			report.Missing = append(report.Missing, key)
			continue
		}
		if err := decodeInto(&next, key, raw[i]); err != nil {
			decodeErr := &DecodeError{Key: key, Err: err}
			log.Warn("discarding undecodable collection",
				"key", key,
				"error", err)
			report.Corrupt = append(report.Corrupt, decodeErr)
			continue
		}
		report.Loaded = append(report.Loaded, key)
	}

	report.Orphaned = questions.orphans(&next) + flashcards.orphans(&next) +
		notes.orphans(&next) + tutorSessions.orphans(&next)
	if report.Orphaned > 0 {
		log.Warn("loaded entities reference missing materials",
			"orphaned", report.Orphaned)
	}

	l.mu.Lock()
	l.state = next
	l.mu.Unlock()

	log.Info("library loaded",
		"materials", len(next.Materials),
		"questions", len(next.Questions),
		"flashcards", len(next.Flashcards),
		"notes", len(next.Notes),
		"tutor_sessions", len(next.TutorSessions),
		"missing_keys", len(report.Missing),
		"corrupt_keys", len(report.Corrupt))

	evs := make([]*events.ChangeEvent, 0, len(report.Loaded))
	for _, key := range report.Loaded {
		evs = append(evs, events.NewChangeEvent(key, events.OpLoaded))
	}
	l.emit(ctx, evs)

	return report, nil
}

// decodeInto decodes data for key into the matching field of s. On error s is
// left with that field's default value.
func decodeInto(s *Snapshot, key string, data []byte) error {
	switch key {
	case KeyMaterials:
		return decodeList(data, &s.Materials)
	case KeyQuestions:
		return decodeList(data, &s.Questions)
	case KeyFlashcards:
		return decodeList(data, &s.Flashcards)
	case KeyNotes:
		return decodeList(data, &s.Notes)
	case KeyTutorSessions:
		return decodeList(data, &s.TutorSessions)
	case KeyCurrentUser:
		var u domain.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		if err := u.Validate(); err != nil {
			return err
		}
		s.User = u
		return nil
	default:
		return fmt.Errorf("unknown key %q", key)
	}
}

func decodeList[T any](data []byte, dst *[]T) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*dst = items
	return nil
}
