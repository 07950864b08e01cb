package interfaces

import "context"

// KeyValueStore is the backing medium for PromptStore: a minimal async
// key-value surface. Both operations may fail with a generic I/O error that
// the layer above must catch and degrade from.
type KeyValueStore interface {
	// GetItem returns the stored value for key. ok=false means the key is
	// absent (which is not an error).
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, overwriting any previous value.
	SetItem(ctx context.Context, key, value string) error
}
