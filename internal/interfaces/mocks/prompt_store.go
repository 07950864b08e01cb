package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"prompt-server/internal/models"
)

// Mock PromptStore
type PromptStore struct {
	mock.Mock
}

func (m *PromptStore) ActivePrompt(ctx context.Context, deviceID string) (*models.ActivePromptRecord, bool) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.ActivePromptRecord), args.Bool(1)
}

func (m *PromptStore) SetActivePrompt(ctx context.Context, deviceID string, record *models.ActivePromptRecord) {
	m.Called(ctx, deviceID, record)
}

func (m *PromptStore) UsedPromptIDs(ctx context.Context, deviceID string) []uuid.UUID {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]uuid.UUID)
}

func (m *PromptStore) AddUsedPromptID(ctx context.Context, deviceID string, promptID uuid.UUID) {
	m.Called(ctx, deviceID, promptID)
}
