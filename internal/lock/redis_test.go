package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "n3portal:order-no"

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	r.retry = 5 * time.Millisecond
	return r, mr
}

func TestRedisSecondLockWaitsForRelease(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	unlock, err := r.Lock(ctx, testKey)
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		unlock2, err := r.Lock(ctx, testKey)
		if err == nil {
			acquired <- unlock2
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case unlock2 := <-acquired:
		unlock2()
	case <-time.After(time.Second):
		t.Fatal("second lock not acquired after release")
	}
	assert.False(t, mr.Exists(testKey))
}

func TestRedisExpiredLeaseIsNotReleasedByOldOwner(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	unlockOld, err := r.Lock(ctx, testKey)
	require.NoError(t, err)
	oldToken, err := mr.Get(testKey)
	require.NoError(t, err)

	mr.FastForward(r.ttl + time.Second)
	require.False(t, mr.Exists(testKey))

	unlockNew, err := r.Lock(ctx, testKey)
	require.NoError(t, err)
	newToken, err := mr.Get(testKey)
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	unlockOld()
	got, err := mr.Get(testKey)
	require.NoError(t, err)
	assert.Equal(t, newToken, got)

	unlockNew()
	assert.False(t, mr.Exists(testKey))
}

func TestRedisLockHonoursContext(t *testing.T) {
	r, _ := newTestRedis(t)

	unlock, err := r.Lock(context.Background(), testKey)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = r.Lock(ctx, testKey)
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
