package shim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corevm/errs"
	csync "corevm/sync"
	"corevm/thread"
)

func TestMutexInitDefaultsToDefaultKind(t *testing.T) {
	sh, _, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))

	kind, err := sh.mutexKind(0x1000)
	require.NoError(t, err)
	assert.Equal(t, MutexDefault, kind)
}

func TestMutexInitStoresRequestedKind(t *testing.T) {
	sh, _, _, _ := newTestShim()
	kind := MutexRecursive
	require.NoError(t, sh.MutexInit(0x1000, &kind))

	got, err := sh.mutexKind(0x1000)
	require.NoError(t, err)
	assert.Equal(t, MutexRecursive, got)
}

func TestMutexLockUncontendedSucceeds(t *testing.T) {
	sh, _, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))

	ret, merr := sh.MutexLock(0x1000)
	assert.Nil(t, merr)
	assert.Equal(t, int32(0), ret)
}

func TestMutexLockNormalSelfRelockDeadlocks(t *testing.T) {
	sh, _, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))

	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	_, merr = sh.MutexLock(0x1000)
	require.NotNil(t, merr)
	assert.True(t, errors.Is(merr, errs.ErrDeadlock))
}

func TestMutexLockRecursiveSelfRelockIncrementsCount(t *testing.T) {
	sh, _, sy, _ := newTestShim()
	kind := MutexRecursive
	require.NoError(t, sh.MutexInit(0x1000, &kind))

	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)
	_, merr = sh.MutexLock(0x1000)
	require.Nil(t, merr)

	id, err := sh.mutexID(0x1000)
	require.NoError(t, err)
	assert.Equal(t, 2, sy.MutexLockCount(id))
}

func TestMutexLockErrorCheckSelfRelockReturnsEDEADLK(t *testing.T) {
	sh, _, _, _ := newTestShim()
	kind := MutexErrorCheck
	require.NoError(t, sh.MutexInit(0x1000, &kind))

	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	ret, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)
	assert.Equal(t, EDEADLK, ret)
}

func TestMutexLockByOtherThreadBlocks(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))

	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	other := tm.CreateThread()
	prev := tm.SetActiveThreadID(other)
	_, merr = sh.MutexLock(0x1000)
	tm.SetActiveThreadID(prev)

	require.Nil(t, merr)
	assert.Equal(t, thread.BlockedOnSync, tm.Thread(other).State())
}

func TestMutexTryLockReturnsEBUSYInsteadOfBlocking(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))
	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	other := tm.CreateThread()
	prev := tm.SetActiveThreadID(other)
	ret, merr := sh.MutexTryLock(0x1000)
	tm.SetActiveThreadID(prev)

	require.Nil(t, merr)
	assert.Equal(t, EBUSY, ret)
	assert.Equal(t, thread.Enabled, tm.Thread(other).State())
}

func TestMutexUnlockHandsOffToFIFOWaiter(t *testing.T) {
	sh, tm, sy, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))
	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	waiter := tm.CreateThread()
	prev := tm.SetActiveThreadID(waiter)
	_, merr = sh.MutexLock(0x1000)
	require.Nil(t, merr)
	tm.SetActiveThreadID(prev)
	require.Equal(t, thread.BlockedOnSync, tm.Thread(waiter).State())

	_, merr = sh.MutexUnlock(0x1000)
	require.Nil(t, merr)

	assert.Equal(t, thread.Enabled, tm.Thread(waiter).State())
	id, err := sh.mutexID(0x1000)
	require.NoError(t, err)
	owner, ok := sy.MutexGetOwner(id)
	require.True(t, ok)
	assert.Equal(t, csync.ThreadID(waiter), owner)
}

func TestMutexUnlockByNonOwnerIsUB(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))
	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	other := tm.CreateThread()
	prev := tm.SetActiveThreadID(other)
	_, merr = sh.MutexUnlock(0x1000)
	tm.SetActiveThreadID(prev)

	assert.NotNil(t, merr)
}

func TestMutexDestroyWhileLockedIsUB(t *testing.T) {
	sh, _, _, _ := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))
	_, merr := sh.MutexLock(0x1000)
	require.Nil(t, merr)

	merr = sh.MutexDestroy(0x1000)
	assert.NotNil(t, merr)
}

func TestMutexDestroyWritesUndefinedMarker(t *testing.T) {
	sh, _, _, mem := newTestShim()
	require.NoError(t, sh.MutexInit(0x1000, nil))

	require.Nil(t, sh.MutexDestroy(0x1000))
	raw, err := mem.ReadU32(0x1000, MutexOffID)
	require.NoError(t, err)
	assert.Equal(t, undefinedMarker, raw)
}

func TestMutexLazyIDAllocationOnStaticInit(t *testing.T) {
	sh, _, sy, mem := newTestShim()

	ret, merr := sh.MutexLock(0x2000)
	require.Nil(t, merr)
	assert.Equal(t, int32(0), ret)

	raw, err := mem.ReadU32(0x2000, MutexOffID)
	require.NoError(t, err)
	assert.NotZero(t, raw)
	assert.True(t, sy.MutexIsLocked(csync.MutexID(raw)))
}
