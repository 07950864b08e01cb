package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"
	"prompt-server/internal/utils"
)

// Default rotation settings, applied when the config leaves them zero.
const (
	DefaultPromptTTL      = 24 * time.Hour
	DefaultResponseWindow = 15 * time.Minute
	DefaultMaxCandidates  = 50
)

// RotationConfig carries the tunable parameters of the rotation logic.
type RotationConfig struct {
	// PromptTTL is the wall-clock validity of a selected prompt. There is no
	// calendar-day rollover: a prompt selected at 14:37 expires at 14:37.
	PromptTTL time.Duration
	// ResponseWindow is the grace period after selection within which a
	// response counts as on time.
	ResponseWindow time.Duration
	// MaxCandidates caps the catalog query. The selection is uniform over the
	// returned candidates, not the full catalog; the cap bounds query cost at
	// the price of a slight bias toward the first MaxCandidates unused
	// prompts in catalog order.
	MaxCandidates int
}

func (c RotationConfig) withDefaults() RotationConfig {
	if c.PromptTTL <= 0 {
		c.PromptTTL = DefaultPromptTTL
	}
	if c.ResponseWindow <= 0 {
		c.ResponseWindow = DefaultResponseWindow
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	return c
}

// RotationService decides what prompt a device sees right now: either the
// cached active prompt, while it is still valid, or a freshly selected one.
//
// Concurrent calls for the same device are not serialized. Two overlapping
// calls that both observe an absent or expired record will each select a
// prompt; the last writer wins for the active record while the used set may
// end up holding both ids. This matches the original behavior of the feature
// and is accepted for a low-frequency, per-device operation.
type RotationService struct {
	catalog interfaces.PromptCatalog
	store   interfaces.PromptStore
	events  interfaces.RotationEventPublisher
	cfg     RotationConfig
	logger  *zap.Logger

	now  func() time.Time
	pick func(n int) int
}

// NewRotationService creates a RotationService. events may be nil when no
// rotation events should be published.
func NewRotationService(
	catalog interfaces.PromptCatalog,
	store interfaces.PromptStore,
	events interfaces.RotationEventPublisher,
	cfg RotationConfig,
	logger *zap.Logger,
) *RotationService {
	return &RotationService{
		catalog: catalog,
		store:   store,
		events:  events,
		cfg:     cfg.withDefaults(),
		logger:  logger.Named("RotationService"),
		now:     time.Now,
		pick:    rand.Intn,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *RotationService) SetClock(now func() time.Time) {
	s.now = now
}

// SetPicker overrides the candidate picker. pick receives the candidate count
// and must return an index in [0, n). Intended for tests.
func (s *RotationService) SetPicker(pick func(n int) int) {
	s.pick = pick
}

// ResponseWindow returns the configured on-time window.
func (s *RotationService) ResponseWindow() time.Duration {
	return s.cfg.ResponseWindow
}

// GetCurrentPrompt returns the device's active prompt, rotating to a new one
// when none is stored or the stored one has expired. A store read failure is
// indistinguishable from an absent record and falls through to selection.
func (s *RotationService) GetCurrentPrompt(ctx context.Context, deviceID string) (*models.CurrentPrompt, error) {
	now := s.now()
	if record, ok := s.store.ActivePrompt(ctx, deviceID); ok && now.Before(record.ExpiresAt) {
		return &models.CurrentPrompt{
			Prompt:        record.Prompt,
			SelectedAt:    record.SelectedAt,
			ExpiresAt:     record.ExpiresAt,
			TimeRemaining: utils.Countdown(record.ExpiresAt, now),
			IsNewPrompt:   false,
		}, nil
	}
	return s.SelectNewPrompt(ctx, deviceID)
}

// SelectNewPrompt picks a new prompt for the device, bypassing any cached
// record, and persists the selection. Returns ErrAllPromptsUsed without
// touching stored state when no unused active prompt remains. Catalog errors
// propagate to the caller; retrying is the caller's concern.
func (s *RotationService) SelectNewPrompt(ctx context.Context, deviceID string) (*models.CurrentPrompt, error) {
	used := s.store.UsedPromptIDs(ctx, deviceID)

	candidates, err := s.catalog.ListUnused(ctx, used, s.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt catalog: %w", err)
	}
	if len(candidates) == 0 {
		s.logger.Info("Prompt catalog exhausted for device", zap.String("deviceID", deviceID))
		return nil, models.ErrAllPromptsUsed
	}

	prompt := candidates[s.pick(len(candidates))]
	now := s.now()
	record := &models.ActivePromptRecord{
		Prompt:     prompt,
		SelectedAt: now,
		ExpiresAt:  now.Add(s.cfg.PromptTTL),
	}

	// Both writes are independent; the store swallows failures, so neither
	// can invalidate the selection that is returned below.
	s.store.SetActivePrompt(ctx, deviceID, record)
	s.store.AddUsedPromptID(ctx, deviceID, prompt.ID)

	if s.events != nil {
		event := models.RotationEvent{
			DeviceID:   deviceID,
			PromptID:   prompt.ID,
			SelectedAt: record.SelectedAt,
			ExpiresAt:  record.ExpiresAt,
		}
		if err := s.events.PublishRotationEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish rotation event",
				zap.Error(err), zap.String("deviceID", deviceID), zap.String("promptID", prompt.ID.String()))
		}
	}

	s.logger.Info("Rotated to new prompt",
		zap.String("deviceID", deviceID),
		zap.String("promptID", prompt.ID.String()),
		zap.Time("expiresAt", record.ExpiresAt),
	)

	return &models.CurrentPrompt{
		Prompt:        prompt,
		SelectedAt:    record.SelectedAt,
		ExpiresAt:     record.ExpiresAt,
		TimeRemaining: utils.Countdown(record.ExpiresAt, now),
		IsNewPrompt:   true,
	}, nil
}

// Lateness reports where a response landing now falls relative to the
// response window of the device's active prompt. ok=false means the device
// has no stored record to measure against.
func (s *RotationService) Lateness(ctx context.Context, deviceID string) (models.Lateness, bool) {
	record, ok := s.store.ActivePrompt(ctx, deviceID)
	if !ok {
		return models.Lateness{}, false
	}
	return utils.ResponseLateness(record.SelectedAt, s.now(), s.cfg.ResponseWindow), true
}
