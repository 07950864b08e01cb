package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"prompt-server/internal/models"
)

// Mock RotationEventPublisher
type RotationEventPublisher struct {
	mock.Mock
}

func (m *RotationEventPublisher) PublishRotationEvent(ctx context.Context, event models.RotationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
