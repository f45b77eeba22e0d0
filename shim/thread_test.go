package shim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corevm/thread"
)

func TestThreadCreatePushesFrameAsNewActiveThenRestores(t *testing.T) {
	sh, tm, _, _ := newTestShim()

	var sawActiveDuringPush thread.ID
	newID := sh.ThreadCreate(func(id thread.ID) {
		sawActiveDuringPush = tm.ActiveThreadID()
		assert.Equal(t, id, sawActiveDuringPush)
	})

	assert.Equal(t, thread.ID(1), newID)
	assert.Equal(t, newID, sawActiveDuringPush)
	assert.Equal(t, thread.MainThread, tm.ActiveThreadID(), "active thread must be restored after create")
	assert.Equal(t, thread.Joinable, tm.Thread(newID).JoinStatus())
}

func TestThreadJoinRejectsNonNullRetval(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	child := tm.CreateThread()

	merr := sh.ThreadJoin(child, false)
	assert.NotNil(t, merr)
}

func TestThreadJoinSucceedsWithNullRetval(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	child := tm.CreateThread()

	merr := sh.ThreadJoin(child, true)
	require.Nil(t, merr)
	assert.Equal(t, thread.BlockedOnJoin, tm.ActiveThread().State())
}

func TestThreadJoinSelfIsUB(t *testing.T) {
	sh, _, _, _ := newTestShim()
	merr := sh.ThreadJoin(thread.MainThread, true)
	assert.NotNil(t, merr)
}

func TestThreadDetach(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	child := tm.CreateThread()

	require.Nil(t, sh.ThreadDetach(child))
	assert.Equal(t, thread.Detached, tm.Thread(child).JoinStatus())

	assert.NotNil(t, sh.ThreadDetach(child), "detaching twice is UB")
}

func TestThreadSelfWritesActiveID(t *testing.T) {
	sh, tm, _, mem := newTestShim()
	child := tm.CreateThread()
	tm.SetActiveThreadID(child)

	require.NoError(t, sh.ThreadSelf(0x5000))
	got, err := mem.ReadU32(0x5000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(child), got)
}

func TestSchedYieldSetsFlag(t *testing.T) {
	sh, tm, _, _ := newTestShim()
	assert.False(t, tm.YieldFlag())
	sh.SchedYield()
	assert.True(t, tm.YieldFlag())
}
