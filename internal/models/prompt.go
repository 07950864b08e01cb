package models

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is a catalog record offering daily response text to users.
// Immutable once created; the Active flag controls catalog eligibility.
type Prompt struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ActivePromptRecord is the single current prompt selection for a device.
// At most one exists per device; it is replaced wholesale on rotation and is
// never returned to a caller once ExpiresAt has passed.
type ActivePromptRecord struct {
	Prompt     Prompt    `json:"prompt"`
	SelectedAt time.Time `json:"selectedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// UsedPromptIDs is the stored payload of the permanent used-prompt set.
// The set only grows; a prompt id present here is never selected again on
// that device.
type UsedPromptIDs struct {
	UsedPromptIDs []string `json:"usedPromptIds"`
}

// CurrentPrompt is what callers of the rotator receive.
type CurrentPrompt struct {
	Prompt        Prompt    `json:"prompt"`
	SelectedAt    time.Time `json:"selectedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	TimeRemaining string    `json:"timeRemaining"`
	IsNewPrompt   bool      `json:"isNewPrompt"`
}

// Lateness describes where a response falls relative to the response window
// that opens at SelectedAt.
type Lateness struct {
	OnTime bool   `json:"onTime"`
	LateBy string `json:"lateBy"`
}

// RotationEvent is published after a successful prompt rotation.
type RotationEvent struct {
	DeviceID   string    `json:"deviceId"`
	PromptID   uuid.UUID `json:"promptId"`
	SelectedAt time.Time `json:"selectedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
