package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"
)

// Fixed logical keys, scoped per device installation.
const (
	keyActivePrompt  = "DAILY_PROMPT_DATA"
	keyUsedPromptIDs = "PERMANENTLY_USED_PROMPT_IDS"
)

// Compile-time check to ensure kvPromptStore implements PromptStore
var _ interfaces.PromptStore = (*kvPromptStore)(nil)

// kvPromptStore persists the rotation state as JSON payloads on a generic
// key-value medium. All medium and decoding failures degrade to absent/empty:
// corrupt storage must never block prompt loading, and a failed write must
// never break a rotation result that has already been computed.
type kvPromptStore struct {
	kv     interfaces.KeyValueStore
	logger *zap.Logger
}

// NewPromptStore creates a PromptStore on top of the given medium.
func NewPromptStore(kv interfaces.KeyValueStore, logger *zap.Logger) interfaces.PromptStore {
	return &kvPromptStore{
		kv:     kv,
		logger: logger.Named("PromptStore"),
	}
}

func activePromptKey(deviceID string) string {
	return fmt.Sprintf("%s:%s", keyActivePrompt, deviceID)
}

func usedPromptIDsKey(deviceID string) string {
	return fmt.Sprintf("%s:%s", keyUsedPromptIDs, deviceID)
}

// ActivePrompt returns the device's stored active prompt record.
func (s *kvPromptStore) ActivePrompt(ctx context.Context, deviceID string) (*models.ActivePromptRecord, bool) {
	key := activePromptKey(deviceID)
	raw, ok, err := s.kv.GetItem(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to read active prompt record, treating as absent",
			zap.Error(err), zap.String("deviceID", deviceID))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var record models.ActivePromptRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn("Malformed active prompt record, treating as absent",
			zap.Error(err), zap.String("deviceID", deviceID))
		return nil, false
	}
	return &record, true
}

// SetActivePrompt overwrites the device's active prompt record.
func (s *kvPromptStore) SetActivePrompt(ctx context.Context, deviceID string, record *models.ActivePromptRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("Failed to marshal active prompt record",
			zap.Error(err), zap.String("deviceID", deviceID))
		return
	}
	if err := s.kv.SetItem(ctx, activePromptKey(deviceID), string(payload)); err != nil {
		s.logger.Warn("Failed to persist active prompt record",
			zap.Error(err), zap.String("deviceID", deviceID))
	}
}

// UsedPromptIDs returns every prompt id ever selected on the device.
// Unparseable entries are skipped rather than failing the whole read.
func (s *kvPromptStore) UsedPromptIDs(ctx context.Context, deviceID string) []uuid.UUID {
	stored := s.rawUsedPromptIDs(ctx, deviceID)
	ids := make([]uuid.UUID, 0, len(stored))
	for _, raw := range stored {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.logger.Warn("Malformed prompt id in used set, skipping",
				zap.String("deviceID", deviceID), zap.String("value", raw))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// AddUsedPromptID unions the id into the device's used set via
// read-modify-write on the medium. The union makes the operation idempotent;
// it is deliberately not atomic across concurrent callers (last writer wins),
// matching the accepted low-frequency race of the rotation design.
func (s *kvPromptStore) AddUsedPromptID(ctx context.Context, deviceID string, promptID uuid.UUID) {
	existing := s.rawUsedPromptIDs(ctx, deviceID)
	idStr := promptID.String()
	for _, raw := range existing {
		if raw == idStr {
			return
		}
	}
	updated := models.UsedPromptIDs{UsedPromptIDs: append(existing, idStr)}

	payload, err := json.Marshal(updated)
	if err != nil {
		s.logger.Error("Failed to marshal used prompt ids",
			zap.Error(err), zap.String("deviceID", deviceID))
		return
	}
	if err := s.kv.SetItem(ctx, usedPromptIDsKey(deviceID), string(payload)); err != nil {
		s.logger.Warn("Failed to persist used prompt ids",
			zap.Error(err), zap.String("deviceID", deviceID), zap.String("promptID", idStr))
	}
}

// rawUsedPromptIDs reads the stored used-id payload, defaulting to empty on
// any failure.
func (s *kvPromptStore) rawUsedPromptIDs(ctx context.Context, deviceID string) []string {
	raw, ok, err := s.kv.GetItem(ctx, usedPromptIDsKey(deviceID))
	if err != nil {
		s.logger.Warn("Failed to read used prompt ids, treating as empty",
			zap.Error(err), zap.String("deviceID", deviceID))
		return nil
	}
	if !ok {
		return nil
	}

	var payload models.UsedPromptIDs
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Warn("Malformed used prompt ids payload, treating as empty",
			zap.Error(err), zap.String("deviceID", deviceID))
		return nil
	}
	return payload.UsedPromptIDs
}
