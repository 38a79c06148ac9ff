package session

import (
	"context"
	"errors"
	"time"
)

// ErrCorruptData means a stored blob could not be deserialized back into a
// Session. Treat as fatal for that key, not retryable.
var ErrCorruptData = errors.New("session: corrupt session data")

// Store defines TTL-governed persistence for sessions, keyed by session id.
// Get returns (nil, nil) when the key is absent or already expired; callers
// map that to their own not-found condition. The store offers no versioning:
// concurrent updates to the same id race and the last write wins.
type Store interface {
	Create(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error

	// Touch extends the key's expiry without rewriting the payload.
	Touch(ctx context.Context, id string, ttl time.Duration) error
}
