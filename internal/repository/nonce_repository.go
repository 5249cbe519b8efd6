package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceRepo is the server-held OAuth handshake state. Each login attempt
// stores one nonce keyed by the random state parameter that travels
// through the provider redirect; the callback consumes it exactly once.
// Redis GETDEL makes the consume atomic, so a replayed callback can never
// observe the nonce a second time. Entries expire after the configured
// TTL when never consumed.
type NonceRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewNonceRepo(rdb *redis.Client, ttl time.Duration) *NonceRepo {
	return &NonceRepo{rdb: rdb, ttl: ttl}
}

func nonceKey(state string) string { return "oauth:nonce:" + state }

// Put stores the nonce for one login attempt.
func (r *NonceRepo) Put(ctx context.Context, state, nonce string) error {
	return r.rdb.Set(ctx, nonceKey(state), nonce, r.ttl).Err()
}

// Consume atomically fetches and deletes the nonce bound to state.
// ErrNonceNotFound is returned when it was never stored, expired, or was
// already consumed by an earlier callback.
func (r *NonceRepo) Consume(ctx context.Context, state string) (string, error) {
	v, err := r.rdb.GetDel(ctx, nonceKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNonceNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}
