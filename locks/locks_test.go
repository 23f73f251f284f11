package locks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(start time.Time) (*MemoryLocker, *time.Time) {
	now := start
	locker := NewMemoryLocker()
	locker.now = func() time.Time { return now }
	return locker, &now
}

func TestAcquire_Fresh(t *testing.T) {
	locker, now := newTestLocker(time.Now())

	lease, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint(10), lease.HolderID)
	assert.Equal(t, now.Add(LockTTL), lease.ExpiresAt)
}

func TestAcquire_IdempotentRenewalExtendsExpiry(t *testing.T) {
	locker, nowPtr := newTestLocker(time.Now())

	first, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)

	*nowPtr = nowPtr.Add(2 * time.Minute)

	second, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err, "renewal by the holder must never error")
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestAcquire_ContendedFailsWithLease(t *testing.T) {
	locker, _ := newTestLocker(time.Now())

	held, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)

	_, err = locker.Acquire(ResourceObjective, 1, 20)
	require.Error(t, err)

	var locked *ErrLocked
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, uint(10), locked.Lease.HolderID)
	assert.Equal(t, held.ExpiresAt, locked.Lease.ExpiresAt)
}

func TestAcquire_AfterExpirySucceeds(t *testing.T) {
	locker, nowPtr := newTestLocker(time.Now())

	_, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)

	*nowPtr = nowPtr.Add(LockTTL + time.Second)

	lease, err := locker.Acquire(ResourceObjective, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, uint(20), lease.HolderID)
}

func TestCheck(t *testing.T) {
	locker, nowPtr := newTestLocker(time.Now())

	// Unlocked: anyone passes
	assert.NoError(t, locker.Check(ResourceObjective, 1, 10))

	_, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)

	// Holder passes, others are rejected
	assert.NoError(t, locker.Check(ResourceObjective, 1, 10))
	var locked *ErrLocked
	err = locker.Check(ResourceObjective, 1, 20)
	require.True(t, errors.As(err, &locked))

	// Lazy expiry: after the TTL the lock is gone for everyone
	*nowPtr = nowPtr.Add(LockTTL + time.Second)
	assert.NoError(t, locker.Check(ResourceObjective, 1, 20))
}

func TestRelease(t *testing.T) {
	locker, _ := newTestLocker(time.Now())

	_, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)

	// Release by a non-holder is a no-op
	require.NoError(t, locker.Release(ResourceObjective, 1, 20))
	err = locker.Check(ResourceObjective, 1, 20)
	var locked *ErrLocked
	require.True(t, errors.As(err, &locked))

	// Release by the holder frees the resource
	require.NoError(t, locker.Release(ResourceObjective, 1, 10))
	assert.NoError(t, locker.Check(ResourceObjective, 1, 20))

	// Releasing an absent lock is fine
	require.NoError(t, locker.Release(ResourceObjective, 99, 10))
}

func TestResourcesAreIndependent(t *testing.T) {
	locker, _ := newTestLocker(time.Now())

	_, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)

	// Same id under a different resource name is a different lock
	lease, err := locker.Acquire(ResourceTouchbase, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, uint(20), lease.HolderID)
}

func TestPurgeExpired(t *testing.T) {
	locker, nowPtr := newTestLocker(time.Now())

	_, err := locker.Acquire(ResourceObjective, 1, 10)
	require.NoError(t, err)
	_, err = locker.Acquire(ResourceObjective, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 0, locker.PurgeExpired())

	*nowPtr = nowPtr.Add(LockTTL + time.Second)
	assert.Equal(t, 2, locker.PurgeExpired())
	assert.Equal(t, 0, locker.PurgeExpired())
}
