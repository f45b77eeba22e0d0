// File: mutex.go
// Brief: SYNC mutex records — owner, recursive lock count, FIFO waiters
package sync

import "corevm/utils/types"

// mutex is the authoritative record for one guest pthread_mutex_t. Guest
// memory holds only the MutexID (see corevm/shim/layout.go); this struct
// is never copied into guest memory.
type mutex struct {
	owner     ThreadID
	hasOwner  bool
	lockCount int
	waiters   *types.Queue[ThreadID]
}

// MutexCreate allocates a fresh mutex and returns its id. Ids start at 1;
// 0 is reserved by guest memory layout to mean "unassigned".
func (s *State) MutexCreate() MutexID {
	s.nextMutexID++
	id := MutexID(s.nextMutexID)
	s.mutexes[id] = &mutex{waiters: types.NewQueue[ThreadID]()}
	return id
}

// MutexDestroy removes a mutex record. The caller (SHIM) is responsible
// for asserting it is not currently locked before calling this.
func (s *State) MutexDestroy(id MutexID) {
	delete(s.mutexes, id)
}

// MutexIsLocked reports whether the mutex currently has an owner.
func (s *State) MutexIsLocked(id MutexID) bool {
	m := s.mutexes[id]
	return m != nil && m.hasOwner
}

// MutexGetOwner returns the current owner. ok is false if the mutex is
// unlocked or does not exist; callers must only invoke this when the
// mutex is known to be locked.
func (s *State) MutexGetOwner(id MutexID) (t ThreadID, ok bool) {
	m := s.mutexes[id]
	if m == nil || !m.hasOwner {
		return 0, false
	}
	return m.owner, true
}

// MutexLockCount returns the current recursion depth, 0 if unlocked.
func (s *State) MutexLockCount(id MutexID) int {
	m := s.mutexes[id]
	if m == nil {
		return 0
	}
	return m.lockCount
}

// MutexLock grants the mutex to t. If unlocked, t becomes owner with
// count 1. If already owned by t, the count is incremented — it is the
// caller's responsibility (per mutex kind) to decide whether recursive
// locking is allowed before calling this. Must not be called when the
// mutex is owned by a different thread.
func (s *State) MutexLock(id MutexID, t ThreadID) {
	m := s.mutexes[id]
	if !m.hasOwner {
		m.owner = t
		m.hasOwner = true
		m.lockCount = 1
		return
	}
	m.lockCount++
}

// MutexUnlock decrements the lock count of the current owner. Returns the
// owner and the new count, and ok=false if the mutex was already
// unlocked. The caller is responsible for verifying the unlocking thread
// is in fact the owner before calling this.
func (s *State) MutexUnlock(id MutexID) (owner ThreadID, newCount int, ok bool) {
	m := s.mutexes[id]
	if m == nil || !m.hasOwner {
		return 0, 0, false
	}
	m.lockCount--
	owner = m.owner
	if m.lockCount <= 0 {
		m.hasOwner = false
		m.lockCount = 0
	}
	return owner, m.lockCount, true
}

// MutexEnqueue appends t to the mutex's FIFO waiter queue.
func (s *State) MutexEnqueue(id MutexID, t ThreadID) {
	s.mutexes[id].waiters.Push(t)
}

// MutexDequeue pops the head of the mutex's waiter queue, FIFO.
func (s *State) MutexDequeue(id MutexID) (ThreadID, bool) {
	m := s.mutexes[id]
	if m == nil {
		return 0, false
	}
	return m.waiters.PopOK()
}

// MutexWaiters returns the waiter ids in FIFO order, for invariant checks.
func (s *State) MutexWaiters(id MutexID) []ThreadID {
	m := s.mutexes[id]
	if m == nil {
		return nil
	}
	return m.waiters.Items()
}
