package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/careteam-transfer/internal/persistence"
)

const lockKeyPrefix = "careteam-transfer:runlock:"

// releaseScript deletes the lock only while this holder still owns it, in
// one round trip, so an expired holder can never delete a successor's lock.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// lockClient is the subset of redis commands the lock needs.
type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RunLock guards against two invocations processing the same scope at
// once. Membership mutations within one scope must stay sequential.
type RunLock struct {
	client lockClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRunLock builds a lock backed by the shared Redis client.
func NewRunLock(store *persistence.Redis, ttl time.Duration, logger *zap.Logger) *RunLock {
	lock := &RunLock{ttl: ttl, logger: logger}
	if store != nil && store.Client != nil {
		lock.client = store.Client
	}
	return lock
}

// Acquire attempts to take the lock for a scope. It returns the token
// needed to release the lock and whether acquisition succeeded. When no
// Redis client is configured the lock degrades to a no-op with a warning.
func (l *RunLock) Acquire(ctx context.Context, scope string) (string, bool, error) {
	if l == nil || l.client == nil {
		if l != nil && l.logger != nil {
			l.logger.Warn("redis unavailable; running without overlapping-run guard",
				zap.String("scope", scope))
		}
		return "", true, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(scope), token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release frees the lock if this holder still owns it. The TTL covers the
// case where a crashed run never releases.
func (l *RunLock) Release(ctx context.Context, scope, token string) {
	if l == nil || l.client == nil || token == "" {
		return
	}

	if err := l.client.Eval(ctx, releaseScript, []string{lockKey(scope)}, token).Err(); err != nil && l.logger != nil {
		l.logger.Warn("failed to release run lock",
			zap.String("scope", scope), zap.Error(err))
	}
}

func lockKey(scope string) string {
	return lockKeyPrefix + scope
}
