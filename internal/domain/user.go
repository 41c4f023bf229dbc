package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// UserPreferences holds the user's application settings.
type UserPreferences struct {
	DarkMode                 bool          `json:"darkMode"`
	NotificationsEnabled     bool          `json:"notificationsEnabled"`
	StudyReminders           bool          `json:"studyReminders"`
	SpacedRepetitionInterval time.Duration `json:"spacedRepetitionInterval"`
}

// User is the single, process-wide user of the library. It is created once,
// updated in place and never deleted.
type User struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Preferences UserPreferences `json:"preferences"`
}

// DefaultUser returns the user a fresh library starts with.
func DefaultUser() User {
	return User{
		ID:   uuid.New(),
		Name: "Student",
		Preferences: UserPreferences{
			NotificationsEnabled:     true,
			StudyReminders:           true,
			SpacedRepetitionInterval: DefaultInterval,
		},
	}
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return invalid(ErrEmptyID)
	}

	if u.Preferences.SpacedRepetitionInterval <= 0 {
		return invalid(ErrInvalidInterval)
	}

	return nil
}

type preferencesAlias UserPreferences

// MarshalJSON encodes the base interval in seconds.
func (p UserPreferences) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		preferencesAlias
		SpacedRepetitionInterval float64 `json:"spacedRepetitionInterval"`
	}{
		preferencesAlias:         preferencesAlias(p),
		SpacedRepetitionInterval: p.SpacedRepetitionInterval.Seconds(),
	})
}

// UnmarshalJSON decodes preferences whose base interval is stored in seconds.
func (p *UserPreferences) UnmarshalJSON(data []byte) error {
	aux := struct {
		*preferencesAlias
		SpacedRepetitionInterval float64 `json:"spacedRepetitionInterval"`
	}{
		preferencesAlias: (*preferencesAlias)(p),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.SpacedRepetitionInterval = time.Duration(math.Round(aux.SpacedRepetitionInterval * float64(time.Second)))
	return nil
}
