package api

import (
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/api/shared"
	"github.com/phrazzld/studyhall/internal/domain"
)

// MaterialRequest is the payload for creating or replacing a material.
type MaterialRequest struct {
	Title     string   `json:"title"     validate:"required,max=200"`
	Content   string   `json:"content"   validate:"max=200000"`
	Type      string   `json:"type"      validate:"required,oneof=document text image video audio link"`
	SourceURL string   `json:"sourceURL" validate:"omitempty,url"`
	Tags      []string `json:"tags"      validate:"max=20,dive,max=50"`
	// Generate queues flashcard, question and note generation after creation.
	Generate bool `json:"generate"`
}

// CreateMaterialResponse is the created material and whether generation was queued.
type CreateMaterialResponse struct {
	Material         domain.Material `json:"material"`
	GenerationQueued bool            `json:"generationQueued"`
}

// GenerationResponse identifies a queued generation task.
type GenerationResponse struct {
	TaskID uuid.UUID `json:"taskId"`
}

// QuestionRequest is the payload for creating or replacing a question. The
// material ID is ignored on update.
type QuestionRequest struct {
	MaterialID    uuid.UUID `json:"materialId"`
	Question      string    `json:"question"      validate:"required,max=2000"`
	Type          string    `json:"type"          validate:"required,oneof=multipleChoice shortAnswer trueFalse fillInBlank essay"`
	Options       []string  `json:"options"       validate:"max=10"`
	CorrectAnswer string    `json:"correctAnswer" validate:"max=2000"`
	Explanation   string    `json:"explanation"   validate:"max=4000"`
	Difficulty    string    `json:"difficulty"    validate:"required,oneof=easy medium hard"`
}

// FlashcardRequest is the payload for creating or replacing a flashcard. The
// material ID is ignored on update.
type FlashcardRequest struct {
	MaterialID uuid.UUID `json:"materialId"`
	Front      string    `json:"front" validate:"required,max=2000"`
	Back       string    `json:"back"  validate:"required,max=4000"`
	Tags       []string  `json:"tags"  validate:"max=20,dive,max=50"`
}

// ReviewRequest rates a flashcard review with either a 0-5 quality or one of
// the outcome buttons.
type ReviewRequest struct {
	Quality *int   `json:"quality" validate:"omitempty,min=0,max=5"`
	Outcome string `json:"outcome" validate:"omitempty,oneof=again hard good easy"`
}

// Validate checks the struct tags and that exactly one rating is given.
func (r ReviewRequest) Validate() error {
	if err := shared.Validate.Struct(r); err != nil {
		return err
	}
	if (r.Quality == nil) == (r.Outcome == "") {
		return errors.New("exactly one of quality or outcome is required")
	}
	return nil
}

// PostponeRequest delays a flashcard's next review.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// StarRequest stars or unstars a flashcard.
type StarRequest struct {
	Starred bool `json:"starred"`
}

// NoteRequest is the payload for creating or replacing a note. The material
// ID is ignored on update.
type NoteRequest struct {
	MaterialID     uuid.UUID `json:"materialId"`
	Title          string    `json:"title"          validate:"required,max=200"`
	Content        string    `json:"content"        validate:"max=200000"`
	Summary        string    `json:"summary"        validate:"max=4000"`
	KeyConcepts    []string  `json:"keyConcepts"    validate:"max=50"`
	Examples       []string  `json:"examples"       validate:"max=50"`
	Misconceptions []string  `json:"misconceptions" validate:"max=50"`
	Tags           []string  `json:"tags"           validate:"max=20,dive,max=50"`
}

// CreateSessionRequest starts a tutoring session.
type CreateSessionRequest struct {
	Mode       string     `json:"mode" validate:"required,oneof=socratic explanation mathHelp examCoach"`
	MaterialID *uuid.UUID `json:"materialId"`
}

// SendMessageRequest is a learner message to the tutor.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// RelinkRequest points a session at another material; null unlinks it.
type RelinkRequest struct {
	MaterialID *uuid.UUID `json:"materialId"`
}

// ModeRequest changes a session's tutoring style.
type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=socratic explanation mathHelp examCoach"`
}

// UserRequest replaces the current user's profile and preferences.
type UserRequest struct {
	Name        string                 `json:"name"        validate:"max=100"`
	Email       string                 `json:"email"       validate:"omitempty,email"`
	Preferences domain.UserPreferences `json:"preferences"`
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
