package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondvarSignalIsFIFOAndPairsMutex(t *testing.T) {
	s := NewState()
	id := s.CondvarCreate()
	mutexID := s.MutexCreate()

	s.CondvarWait(id, 1, mutexID)
	s.CondvarWait(id, 2, mutexID)
	assert.True(t, s.CondvarIsAwaited(id))

	waiter, m, ok := s.CondvarSignal(id)
	require.True(t, ok)
	assert.Equal(t, ThreadID(1), waiter)
	assert.Equal(t, mutexID, m)

	waiter, _, ok = s.CondvarSignal(id)
	require.True(t, ok)
	assert.Equal(t, ThreadID(2), waiter)

	assert.False(t, s.CondvarIsAwaited(id))
}

func TestCondvarSignalOnEmptyIsNoop(t *testing.T) {
	s := NewState()
	id := s.CondvarCreate()

	_, _, ok := s.CondvarSignal(id)
	assert.False(t, ok)
}

func TestCondvarRemoveWaiterForTimeout(t *testing.T) {
	s := NewState()
	id := s.CondvarCreate()
	mutexID := s.MutexCreate()

	s.CondvarWait(id, 1, mutexID)
	s.CondvarWait(id, 2, mutexID)

	s.CondvarRemoveWaiter(id, 1)
	assert.True(t, s.CondvarIsAwaited(id), "thread 2 is still waiting")

	waiter, _, ok := s.CondvarSignal(id)
	require.True(t, ok)
	assert.Equal(t, ThreadID(2), waiter, "removed waiter must not be signaled later")
}

func TestCondvarRemoveWaiterNotPresentIsNoop(t *testing.T) {
	s := NewState()
	id := s.CondvarCreate()

	assert.NotPanics(t, func() {
		s.CondvarRemoveWaiter(id, 99)
	})
}
