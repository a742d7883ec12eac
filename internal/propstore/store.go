package propstore

import (
	"context"
	"strconv"
)

// Store is the system-wide persistent key-value property store.
//
// Keys are fixed string constants shared with other components (the
// "persist." convention); values are stored as text. Implementations must
// be safe for concurrent use.
type Store interface {
	// Get returns the raw value for key.
	// Returns ErrNotFound if the key has never been set.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// GetInt32 reads key from s and parses it as a signed 32-bit integer.
// Missing keys and malformed values fall back to def.
func GetInt32(ctx context.Context, s Store, key string, def int32) int32 {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}

// SetInt32 stores value under key in decimal text form.
func SetInt32(ctx context.Context, s Store, key string, value int32) error {
	return s.Set(ctx, key, strconv.FormatInt(int64(value), 10))
}
