package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prompt-server/internal/models"
	"prompt-server/internal/store"
)

// faultyKeyValueStore wraps a MemoryKeyValueStore and fails on demand.
type faultyKeyValueStore struct {
	*store.MemoryKeyValueStore
	getErr error
	setErr error
}

func (f *faultyKeyValueStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemoryKeyValueStore.GetItem(ctx, key)
}

func (f *faultyKeyValueStore) SetItem(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryKeyValueStore.SetItem(ctx, key, value)
}

func newTestRecord(selectedAt time.Time) *models.ActivePromptRecord {
	return &models.ActivePromptRecord{
		Prompt: models.Prompt{
			ID:        uuid.New(),
			Text:      "What made you smile today?",
			Active:    true,
			CreatedAt: selectedAt.Add(-48 * time.Hour),
		},
		SelectedAt: selectedAt,
		ExpiresAt:  selectedAt.Add(24 * time.Hour),
	}
}

func TestPromptStore_ActivePromptRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewPromptStore(store.NewMemoryKeyValueStore(), zap.NewNop())

	_, ok := s.ActivePrompt(ctx, "device-1")
	assert.False(t, ok, "fresh store should have no record")

	record := newTestRecord(time.Date(2024, 6, 1, 14, 37, 0, 0, time.UTC))
	s.SetActivePrompt(ctx, "device-1", record)

	got, ok := s.ActivePrompt(ctx, "device-1")
	require.True(t, ok)
	assert.Equal(t, record.Prompt.ID, got.Prompt.ID)
	assert.Equal(t, record.Prompt.Text, got.Prompt.Text)
	assert.True(t, record.SelectedAt.Equal(got.SelectedAt))
	assert.True(t, record.ExpiresAt.Equal(got.ExpiresAt))
}

func TestPromptStore_DevicesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := store.NewPromptStore(store.NewMemoryKeyValueStore(), zap.NewNop())

	record := newTestRecord(time.Now())
	s.SetActivePrompt(ctx, "device-a", record)

	_, ok := s.ActivePrompt(ctx, "device-b")
	assert.False(t, ok)
	assert.Empty(t, s.UsedPromptIDs(ctx, "device-b"))
}

func TestPromptStore_CorruptPayloadsDegradeToAbsent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKeyValueStore()
	s := store.NewPromptStore(kv, zap.NewNop())

	require.NoError(t, kv.SetItem(ctx, "DAILY_PROMPT_DATA:device-1", "{not json"))
	require.NoError(t, kv.SetItem(ctx, "PERMANENTLY_USED_PROMPT_IDS:device-1", "[broken"))

	_, ok := s.ActivePrompt(ctx, "device-1")
	assert.False(t, ok, "corrupt record must read as absent")
	assert.Empty(t, s.UsedPromptIDs(ctx, "device-1"), "corrupt used set must read as empty")
}

func TestPromptStore_MediumFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := &faultyKeyValueStore{MemoryKeyValueStore: store.NewMemoryKeyValueStore()}
	s := store.NewPromptStore(kv, zap.NewNop())

	record := newTestRecord(time.Now())
	s.SetActivePrompt(ctx, "device-1", record)
	s.AddUsedPromptID(ctx, "device-1", record.Prompt.ID)

	kv.getErr = errors.New("medium unavailable")
	_, ok := s.ActivePrompt(ctx, "device-1")
	assert.False(t, ok, "read failure must present as absent")
	assert.Empty(t, s.UsedPromptIDs(ctx, "device-1"))
	kv.getErr = nil

	// Write failures must not panic or propagate; the stored state simply
	// stays stale.
	kv.setErr = errors.New("medium unavailable")
	other := newTestRecord(time.Now())
	s.SetActivePrompt(ctx, "device-1", other)
	s.AddUsedPromptID(ctx, "device-1", other.Prompt.ID)
	kv.setErr = nil

	got, ok := s.ActivePrompt(ctx, "device-1")
	require.True(t, ok)
	assert.Equal(t, record.Prompt.ID, got.Prompt.ID, "failed write must leave the previous record intact")
	assert.Equal(t, []uuid.UUID{record.Prompt.ID}, s.UsedPromptIDs(ctx, "device-1"))
}

func TestPromptStore_AddUsedPromptID(t *testing.T) {
	ctx := context.Background()
	s := store.NewPromptStore(store.NewMemoryKeyValueStore(), zap.NewNop())

	first := uuid.New()
	second := uuid.New()

	s.AddUsedPromptID(ctx, "device-1", first)
	s.AddUsedPromptID(ctx, "device-1", second)
	assert.Equal(t, []uuid.UUID{first, second}, s.UsedPromptIDs(ctx, "device-1"))

	t.Run("idempotent", func(t *testing.T) {
		s.AddUsedPromptID(ctx, "device-1", first)
		assert.Equal(t, []uuid.UUID{first, second}, s.UsedPromptIDs(ctx, "device-1"))
	})
}

func TestPromptStore_UsedPromptIDsSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKeyValueStore()
	s := store.NewPromptStore(kv, zap.NewNop())

	valid := uuid.New()
	payload := `{"usedPromptIds":["` + valid.String() + `","not-a-uuid"]}`
	require.NoError(t, kv.SetItem(ctx, "PERMANENTLY_USED_PROMPT_IDS:device-1", payload))

	assert.Equal(t, []uuid.UUID{valid}, s.UsedPromptIDs(ctx, "device-1"))
}
