package interfaces

import (
	"context"

	"prompt-server/internal/models"
)

// RotationEventPublisher publishes an event after each successful rotation so
// downstream consumers can react to the new prompt of the day.
type RotationEventPublisher interface {
	PublishRotationEvent(ctx context.Context, event models.RotationEvent) error
}
