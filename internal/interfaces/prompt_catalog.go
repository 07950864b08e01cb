package interfaces

import (
	"context"

	"github.com/google/uuid"

	"prompt-server/internal/models"
)

// PromptCatalog defines the remote catalog of candidate prompts.
type PromptCatalog interface {
	// ListUnused retrieves up to limit active prompts whose ids are not in
	// excluded. No ordering is guaranteed.
	ListUnused(ctx context.Context, excluded []uuid.UUID, limit int) ([]models.Prompt, error)

	// Create inserts a new active prompt into the catalog.
	Create(ctx context.Context, prompt *models.Prompt) error

	// List retrieves all catalog prompts, active or not.
	List(ctx context.Context) ([]models.Prompt, error)

	// Deactivate removes a prompt from catalog eligibility without deleting it.
	Deactivate(ctx context.Context, id uuid.UUID) error
}
