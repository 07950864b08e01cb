package interfaces

import (
	"context"

	"github.com/google/uuid"

	"prompt-server/internal/models"
)

// PromptStore is the durable per-device persistence for the rotation state:
// the active prompt record and the permanent used-prompt id set.
//
// The store never surfaces errors. Reads report absence instead of failing:
// a missing key, an unreadable medium, or a malformed payload all come back
// as (nil, false) or an empty set. Writes log and swallow medium failures so
// that an already-computed rotation result is never lost to a storage fault.
type PromptStore interface {
	// ActivePrompt returns the stored record for the device, or ok=false when
	// absent or unreadable.
	ActivePrompt(ctx context.Context, deviceID string) (*models.ActivePromptRecord, bool)

	// SetActivePrompt overwrites the device's single active prompt record.
	SetActivePrompt(ctx context.Context, deviceID string, record *models.ActivePromptRecord)

	// UsedPromptIDs returns every prompt id ever selected on the device.
	// Defaults to empty when absent or unreadable.
	UsedPromptIDs(ctx context.Context, deviceID string) []uuid.UUID

	// AddUsedPromptID unions the id into the device's used set. Adding an id
	// that is already present is a no-op.
	AddUsedPromptID(ctx context.Context, deviceID string, promptID uuid.UUID)
}
