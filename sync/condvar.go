// File: condvar.go
// Brief: SYNC condvar records — FIFO waiters paired with the mutex to reacquire
package sync

import "corevm/utils/types"

// condWaiter is one entry in a condvar's wait queue: the blocked thread
// and the mutex it must reacquire before returning from wait/timedwait.
type condWaiter struct {
	thread  ThreadID
	mutexID MutexID
}

// condvar is the authoritative record for one guest pthread_cond_t.
type condvar struct {
	waiters *types.Queue[condWaiter]
}

// CondvarCreate allocates a fresh condvar and returns its id.
func (s *State) CondvarCreate() CondvarID {
	s.nextCondvarID++
	id := CondvarID(s.nextCondvarID)
	s.condvars[id] = &condvar{waiters: types.NewQueue[condWaiter]()}
	return id
}

// CondvarDestroy removes a condvar record. Caller must ensure it has no
// waiters first.
func (s *State) CondvarDestroy(id CondvarID) {
	delete(s.condvars, id)
}

// CondvarWait appends (t, mutexID) to the condvar's waiters.
func (s *State) CondvarWait(id CondvarID, t ThreadID, mutexID MutexID) {
	s.condvars[id].waiters.Push(condWaiter{thread: t, mutexID: mutexID})
}

// CondvarSignal pops the head waiter, FIFO. ok is false if there were no
// waiters (a no-op signal).
func (s *State) CondvarSignal(id CondvarID) (t ThreadID, mutexID MutexID, ok bool) {
	c := s.condvars[id]
	if c == nil {
		return 0, 0, false
	}
	w, found := c.waiters.PopOK()
	if !found {
		return 0, 0, false
	}
	return w.thread, w.mutexID, true
}

// CondvarIsAwaited reports whether any thread is currently waiting on the
// condvar.
func (s *State) CondvarIsAwaited(id CondvarID) bool {
	c := s.condvars[id]
	return c != nil && !c.waiters.IsEmpty()
}

// CondvarRemoveWaiter removes t from the condvar's waiters if present. A
// no-op if t is not waiting — used by a firing timeout callback, which
// races against (and loses to, in the same scheduler tick, never both) a
// concurrent signal/broadcast for the same thread.
func (s *State) CondvarRemoveWaiter(id CondvarID, t ThreadID) {
	c := s.condvars[id]
	if c == nil {
		return
	}
	c.waiters.RemoveIf(func(w condWaiter) bool { return w.thread == t })
}
