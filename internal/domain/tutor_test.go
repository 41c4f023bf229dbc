package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTutorSessionAppendIsCopyOnWrite(t *testing.T) {
	t.Parallel()

	s, err := NewTutorSession(TutorModeSocratic, uuid.NullUUID{})
	require.NoError(t, err)

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	first := s.Append(NewTutorMessage("hello", true, now), now)
	second := first.Append(NewTutorMessage("hi, what are we studying?", false, now.Add(time.Second)), now.Add(time.Second))

	assert.Empty(t, s.Messages)
	assert.Len(t, first.Messages, 1)
	require.Len(t, second.Messages, 2)
	assert.True(t, second.Messages[0].IsUser)
	assert.False(t, second.Messages[1].IsUser)
	assert.Equal(t, now.Add(time.Second), second.UpdatedAt)
}

func TestTutorSessionModeChangeKeepsHistory(t *testing.T) {
	t.Parallel()

	s, err := NewTutorSession(TutorModeExplanation, uuid.NullUUID{})
	require.NoError(t, err)

	now := time.Now().UTC()
	s2 := s.Append(NewTutorMessage("explain entropy", true, now), now)
	s3 := s2.WithMode(TutorModeExamCoach, now)

	assert.Equal(t, TutorModeExamCoach, s3.Mode)
	assert.Equal(t, s2.Messages, s3.Messages)

	cleared := s3.Cleared(now)
	assert.Empty(t, cleared.Messages)
	assert.Len(t, s3.Messages, 1)
}

func TestTutorSessionOptionalMaterial(t *testing.T) {
	t.Parallel()

	materialID := uuid.New()
	s, err := NewTutorSession(TutorModeMathHelp, uuid.NullUUID{UUID: materialID, Valid: true})
	require.NoError(t, err)
	assert.True(t, s.LinkedTo(materialID))

	unlinked := s.Relinked(uuid.NullUUID{}, time.Now())
	assert.False(t, unlinked.LinkedTo(materialID))

	data, err := json.Marshal(unlinked)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"materialId":null`)

	_, err = NewTutorSession(TutorMode("lecture"), uuid.NullUUID{})
	assert.ErrorIs(t, err, ErrInvalidTutorMode)
}

func TestTutorSessionValidateSuccessor(t *testing.T) {
	t.Parallel()

	s, err := NewTutorSession(TutorModeSocratic, uuid.NullUUID{})
	require.NoError(t, err)
	now := time.Now()
	base := s.Append(NewTutorMessage("hello", true, now), now).
		Append(NewTutorMessage("hi", false, now), now)

	edited := base.Clone()
	edited.Messages[0].Content = "goodbye"

	dropped := base.Clone()
	dropped.Messages = dropped.Messages[1:]

	reordered := base.Clone()
	reordered.Messages[0], reordered.Messages[1] = reordered.Messages[1], reordered.Messages[0]

	tests := []struct {
		name    string
		next    TutorSession
		wantErr bool
	}{
		{"unchanged", base, false},
		{"appended", base.Append(NewTutorMessage("more", true, now), now), false},
		{"cleared", base.Cleared(now), false},
		{"mode change", base.WithMode(TutorModeExamCoach, now), false},
		{"edited message", edited, true},
		{"dropped message", dropped, true},
		{"reordered", reordered, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := base.ValidateSuccessor(tc.next)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMessageLogRewritten)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserPreferencesJSON(t *testing.T) {
	t.Parallel()

	u := DefaultUser()
	u.Preferences.SpacedRepetitionInterval = 36 * time.Hour

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"spacedRepetitionInterval":129600`)

	var decoded User
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, u, decoded)
	assert.NoError(t, decoded.Validate())
}
