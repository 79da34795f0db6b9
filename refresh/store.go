package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable reports that the backing store could not be reached.
// It is a distinct, retryable condition: an outage must never be read as
// "token revoked", and absence must never be reported as an outage.
var ErrStoreUnavailable = errors.New("refresh token store unavailable")

const (
	defaultPrefix    = "rt"
	defaultOpTimeout = 3 * time.Second
)

// Store records live (unconsumed) refresh tokens in Redis. Existence of a
// key is the sole authority for "not yet consumed"; Redis expires entries
// autonomously at TTL, bounding the replay window for abandoned sessions.
//
// Every operation runs under a bounded timeout so a slow store cannot stall
// request handling indefinitely.
type Store struct {
	redis     redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

// NewStore creates a refresh token [Store] backed by the given Redis client.
// prefix namespaces the keys ("rt" when empty); opTimeout bounds each store
// call (3s when zero or negative).
func NewStore(client redis.UniversalClient, prefix string, opTimeout time.Duration) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	return &Store{
		redis:     client,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (s *Store) key(token string) string {
	return s.prefix + ":" + token
}

// Save inserts an existence marker for token with the given ttl, overwriting
// any marker already present (idempotent).
func (s *Store) Save(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" {
		return errors.New("empty refresh token")
	}
	if ttl <= 0 {
		return errors.New("refresh token ttl must be positive")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Exists reports whether token is still redeemable. Absence means never
// issued, expired, or already rotated; callers cannot tell these apart.
func (s *Store) Exists(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.redis.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return n > 0, nil
}

// Delete removes the marker for token and reports whether it existed.
// Redis DEL is atomic per key, so when several rotations race on the same
// token at most one caller observes existed=true; that caller is the single
// rotation winner. Deleting an absent token is a no-op.
func (s *Store) Delete(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.redis.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return n > 0, nil
}
