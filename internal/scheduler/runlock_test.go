package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fakeLockClient emulates SetNX and the compare-and-delete script against
// an in-memory key space.
type fakeLockClient struct {
	keys map[string]string
}

func newFakeLockClient() *fakeLockClient {
	return &fakeLockClient{keys: make(map[string]string)}
}

func (f *fakeLockClient) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if _, held := f.keys[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLockClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	if f.keys[keys[0]] == args[0].(string) {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func newTestLock(client lockClient) *RunLock {
	return &RunLock{client: client, ttl: time.Minute, logger: zap.NewNop()}
}

func TestAcquireWhileHeldIsRefused(t *testing.T) {
	client := newFakeLockClient()
	lock := newTestLock(client)

	token, acquired, err := lock.Acquire(context.Background(), "mercy-health")
	if err != nil || !acquired || token == "" {
		t.Fatalf("first acquire: token=%q acquired=%v err=%v", token, acquired, err)
	}

	_, acquired, err = lock.Acquire(context.Background(), "mercy-health")
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if acquired {
		t.Fatal("second acquire succeeded while lock held")
	}

	// A different scope is independent.
	_, acquired, err = lock.Acquire(context.Background(), "other-network")
	if err != nil || !acquired {
		t.Fatalf("other scope acquire: acquired=%v err=%v", acquired, err)
	}
}

func TestReleaseWithWrongTokenKeepsLockHeld(t *testing.T) {
	client := newFakeLockClient()
	lock := newTestLock(client)

	token, _, err := lock.Acquire(context.Background(), "mercy-health")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	lock.Release(context.Background(), "mercy-health", "stale-token")
	if _, acquired, _ := lock.Acquire(context.Background(), "mercy-health"); acquired {
		t.Fatal("wrong-token release freed the lock")
	}

	lock.Release(context.Background(), "mercy-health", token)
	if _, acquired, _ := lock.Acquire(context.Background(), "mercy-health"); !acquired {
		t.Fatal("lock still held after owner release")
	}
}

func TestLockDegradesWithoutRedis(t *testing.T) {
	lock := NewRunLock(nil, time.Minute, zap.NewNop())

	token, acquired, err := lock.Acquire(context.Background(), "mercy-health")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !acquired || token != "" {
		t.Fatalf("degraded acquire: token=%q acquired=%v, want empty token and true", token, acquired)
	}

	// Release with no client and no token is a no-op, not a panic.
	lock.Release(context.Background(), "mercy-health", token)
}

func TestNilLockIsSafe(t *testing.T) {
	var lock *RunLock

	_, acquired, err := lock.Acquire(context.Background(), "mercy-health")
	if err != nil || !acquired {
		t.Fatalf("nil lock acquire: acquired=%v err=%v", acquired, err)
	}
	lock.Release(context.Background(), "mercy-health", "")
}
