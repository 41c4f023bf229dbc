package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// TutorMode selects the tutoring style of a session.
type TutorMode string

// Possible tutor mode values
const (
	TutorModeSocratic    TutorMode = "socratic"
	TutorModeExplanation TutorMode = "explanation"
	TutorModeMathHelp    TutorMode = "mathHelp"
	TutorModeExamCoach   TutorMode = "examCoach"
)

// Valid reports whether m is a known tutor mode.
func (m TutorMode) Valid() bool {
	switch m {
	case TutorModeSocratic, TutorModeExplanation, TutorModeMathHelp, TutorModeExamCoach:
		return true
	default:
		return false
	}
}

// TutorMessage is one turn of a tutoring conversation. It belongs to exactly
// one session and is never referenced from anywhere else.
type TutorMessage struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// NewTutorMessage creates a message authored by the learner (isUser) or the tutor.
func NewTutorMessage(content string, isUser bool, now time.Time) TutorMessage {
	return TutorMessage{
		ID:        uuid.New(),
		Content:   content,
		IsUser:    isUser,
		Timestamp: now.UTC(),
	}
}

// TutorSession is a tutoring conversation with an append-only message log.
// MaterialID is an optional reference resolved through the store; the session
// never owns the material.
type TutorSession struct {
	ID         uuid.UUID      `json:"id"`
	MaterialID uuid.NullUUID  `json:"materialId"`
	Mode       TutorMode      `json:"mode"`
	Messages   []TutorMessage `json:"messages"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// NewTutorSession creates an empty session in the given mode, optionally
// linked to a material.
func NewTutorSession(mode TutorMode, materialID uuid.NullUUID) (*TutorSession, error) {
	now := time.Now().UTC()
	s := &TutorSession{
		ID:         uuid.New(),
		MaterialID: materialID,
		Mode:       mode,
		Messages:   []TutorMessage{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks if the TutorSession has valid data.
func (s *TutorSession) Validate() error {
	if s.ID == uuid.Nil {
		return invalid(ErrEmptyID)
	}

	if !s.Mode.Valid() {
		return invalid(ErrInvalidTutorMode)
	}

	if s.MaterialID.Valid && s.MaterialID.UUID == uuid.Nil {
		return invalid(ErrEmptyMaterialID)
	}

	return nil
}

// ValidateSuccessor checks that next is a legal later state of s: its log is
// either empty (cleared) or starts with every message of s, unchanged and in
// order.
func (s TutorSession) ValidateSuccessor(next TutorSession) error {
	if len(next.Messages) == 0 {
		return nil
	}
	if len(next.Messages) < len(s.Messages) {
		return invalid(ErrMessageLogRewritten)
	}
	for i, msg := range s.Messages {
		if !msg.equal(next.Messages[i]) {
			return invalid(ErrMessageLogRewritten)
		}
	}
	return nil
}

func (m TutorMessage) equal(o TutorMessage) bool {
	return m.ID == o.ID &&
		m.Content == o.Content &&
		m.IsUser == o.IsUser &&
		m.Source == o.Source &&
		m.Timestamp.Equal(o.Timestamp)
}

// LinkedTo reports whether the session references the given material.
func (s TutorSession) LinkedTo(materialID uuid.UUID) bool {
	return s.MaterialID.Valid && s.MaterialID.UUID == materialID
}

// Append returns a copy of the session with msg added to the end of its log.
func (s TutorSession) Append(msg TutorMessage, now time.Time) TutorSession {
	out := s.Clone()
	out.Messages = append(out.Messages, msg)
	out.UpdatedAt = now.UTC()
	return out
}

// Cleared returns a copy of the session with an empty log.
func (s TutorSession) Cleared(now time.Time) TutorSession {
	out := s.Clone()
	out.Messages = []TutorMessage{}
	out.UpdatedAt = now.UTC()
	return out
}

// Relinked returns a copy of the session pointing at another material, or at
// none when materialID is not valid.
func (s TutorSession) Relinked(materialID uuid.NullUUID, now time.Time) TutorSession {
	out := s.Clone()
	out.MaterialID = materialID
	out.UpdatedAt = now.UTC()
	return out
}

// WithMode returns a copy of the session in a new mode. Earlier messages are
// kept as they were.
func (s TutorSession) WithMode(mode TutorMode, now time.Time) TutorSession {
	out := s.Clone()
	out.Mode = mode
	out.UpdatedAt = now.UTC()
	return out
}

// Clone returns a deep copy of the session. The message log never shares
// backing storage with the original.
func (s TutorSession) Clone() TutorSession {
	out := s
	out.Messages = slices.Clone(s.Messages)
	return out
}
