// File: mutex.go
// Brief: pthread_mutex_* shims
package shim

import (
	"corevm/errs"
	csync "corevm/sync"
	"corevm/thread"
)

func (sh *Shim) kindOffset() int {
	if sh.Mem.PointerWidth() == 8 {
		return MutexOffKind64
	}
	return MutexOffKind32
}

// mutexID reads the mutex's id field, lazily allocating one if it is
// still zero (a statically-initialized mutex that pthread_mutex_init was
// never called on).
func (sh *Shim) mutexID(addr uint64) (csync.MutexID, error) {
	return lazyGetOrCreateID(sh.Mem, addr, MutexOffID, sh.Sy.MutexCreate)
}

func (sh *Shim) mutexKind(addr uint64) (MutexKind, error) {
	k, err := sh.Mem.ReadI32(addr, sh.kindOffset())
	if err != nil {
		return MutexDefault, err
	}
	return MutexKind(k), nil
}

// MutexInit reads the requested kind (PTHREAD_MUTEX_DEFAULT if attr is
// nil), allocates the mutex's id, and stores the kind.
func (sh *Shim) MutexInit(addr uint64, attrKind *MutexKind) error {
	kind := MutexDefault
	if attrKind != nil {
		kind = *attrKind
	}
	if _, err := sh.mutexID(addr); err != nil {
		return err
	}
	return sh.Mem.WriteI32(addr, sh.kindOffset(), int32(kind))
}

// MutexLock locks the mutex for the active thread, blocking it if
// necessary. Returns the POSIX return value (0, or EDEADLK for an
// ERRORCHECK self-relock; a blocked caller does not re-run this, it is
// handed ownership by MutexUnlock) or a fatal *errs.MachineStop for
// UB/unsupported conditions.
//
// Per spec.md: same-thread reacquisition of an already-held mutex is
// handled by kind — NORMAL (and DEFAULT) deadlocks, ERRORCHECK returns
// EDEADLK, RECURSIVE increments the count, any other kind is UB.
func (sh *Shim) MutexLock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.mutexID(addr)
	if err != nil {
		return 0, errs.Unsupported("mutex_lock: reading guest memory: %v", err)
	}
	active := csync.ThreadID(sh.TM.ActiveThreadID())

	if !sh.Sy.MutexIsLocked(id) {
		sh.Sy.MutexLock(id, active)
		return 0, nil
	}

	owner, _ := sh.Sy.MutexGetOwner(id)
	if owner != active {
		sh.TM.BlockThread(thread.ID(active))
		sh.Sy.MutexEnqueue(id, active)
		return 0, nil
	}

	kind, kerr := sh.mutexKind(addr)
	if kerr != nil {
		return 0, errs.Unsupported("mutex_lock: reading mutex kind: %v", kerr)
	}
	switch kind {
	case MutexRecursive:
		sh.Sy.MutexLock(id, active)
		return 0, nil
	case MutexErrorCheck:
		return EDEADLK, nil
	case MutexNormal, MutexDefault:
		return 0, errs.Deadlock("thread %d relocked a NORMAL mutex %d it already owns", active, id)
	default:
		return 0, undefinedBehavior("mutex_lock: unknown mutex kind %d", kind)
	}
}

// MutexTryLock behaves like MutexLock but never blocks: cases that would
// block instead return EBUSY, and same-thread NORMAL/ERRORCHECK
// reacquisition also returns EBUSY rather than deadlocking.
func (sh *Shim) MutexTryLock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.mutexID(addr)
	if err != nil {
		return 0, errs.Unsupported("mutex_trylock: reading guest memory: %v", err)
	}
	active := csync.ThreadID(sh.TM.ActiveThreadID())

	if !sh.Sy.MutexIsLocked(id) {
		sh.Sy.MutexLock(id, active)
		return 0, nil
	}

	owner, _ := sh.Sy.MutexGetOwner(id)
	if owner != active {
		return EBUSY, nil
	}

	kind, kerr := sh.mutexKind(addr)
	if kerr != nil {
		return 0, errs.Unsupported("mutex_trylock: reading mutex kind: %v", kerr)
	}
	switch kind {
	case MutexRecursive:
		sh.Sy.MutexLock(id, active)
		return 0, nil
	case MutexErrorCheck, MutexNormal, MutexDefault:
		return EBUSY, nil
	default:
		return 0, undefinedBehavior("mutex_trylock: unknown mutex kind %d", kind)
	}
}

// MutexUnlock releases one level of the active thread's ownership. On
// reaching count 0, it hands the mutex off to the next FIFO waiter in the
// same step (the handoff is atomic with respect to the scheduler: the
// waiter's unblock happens here, not in a later scheduler tick).
func (sh *Shim) MutexUnlock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.mutexID(addr)
	if err != nil {
		return 0, errs.Unsupported("mutex_unlock: reading guest memory: %v", err)
	}
	active := csync.ThreadID(sh.TM.ActiveThreadID())

	if !sh.Sy.MutexIsLocked(id) {
		kind, kerr := sh.mutexKind(addr)
		if kerr != nil {
			return 0, errs.Unsupported("mutex_unlock: reading mutex kind: %v", kerr)
		}
		switch kind {
		case MutexNormal, MutexDefault:
			return 0, undefinedBehavior("mutex_unlock: mutex %d is already unlocked", id)
		default:
			return EPERM, nil
		}
	}

	owner, _ := sh.Sy.MutexGetOwner(id)
	if owner != active {
		return 0, undefinedBehavior("mutex_unlock: thread %d does not own mutex %d", active, id)
	}

	_, newCount, _ := sh.Sy.MutexUnlock(id)
	if newCount > 0 {
		return 0, nil
	}

	if waiter, ok := sh.Sy.MutexDequeue(id); ok {
		sh.Sy.MutexLock(id, waiter)
		sh.TM.UnblockThread(thread.ID(waiter))
	}
	return 0, nil
}

// MutexDestroy removes the mutex's SYNC record and writes the undefined
// marker back to guest memory. UB if the mutex is currently locked.
func (sh *Shim) MutexDestroy(addr uint64) *errs.MachineStop {
	id, err := sh.mutexID(addr)
	if err != nil {
		return errs.Unsupported("mutex_destroy: reading guest memory: %v", err)
	}
	if sh.Sy.MutexIsLocked(id) {
		return undefinedBehavior("mutex_destroy: mutex %d is still locked", id)
	}
	sh.Sy.MutexDestroy(id)
	if werr := sh.Mem.WriteU32(addr, MutexOffID, undefinedMarker); werr != nil {
		return errs.Unsupported("mutex_destroy: writing guest memory: %v", werr)
	}
	return nil
}

// releaseMutexForCondWait unlocks mutexID on behalf of a condvar wait.
// Used only by this package's condvar shims (see condvar.go); it is an
// unexported package-level function (not a method), kept here in
// mutex.go next to reacquireMutexForCondWake and the rest of the mutex
// bookkeeping.
func releaseMutexForCondWait(sh *Shim, mutexID csync.MutexID, waiter thread.ID) *errs.MachineStop {
	owner, ok := sh.Sy.MutexGetOwner(mutexID)
	if !ok || owner != csync.ThreadID(waiter) {
		return undefinedBehavior("cond_wait: thread %d does not own mutex %d", waiter, mutexID)
	}
	_, newCount, _ := sh.Sy.MutexUnlock(mutexID)
	if newCount != 0 {
		return errs.Unsupported("cond_wait: waiting while holding mutex %d recursively is not supported", mutexID)
	}
	if nextWaiter, ok := sh.Sy.MutexDequeue(mutexID); ok {
		sh.Sy.MutexLock(mutexID, nextWaiter)
		sh.TM.UnblockThread(thread.ID(nextWaiter))
	}
	return nil
}

// reacquireMutexForCondWake reacquires mutexID on behalf of t, who is
// waking from a condvar wait (via signal, broadcast, or timeout). If the
// mutex is free, t takes it immediately and is unblocked; otherwise t is
// enqueued on the mutex and stays blocked until its turn.
func reacquireMutexForCondWake(sh *Shim, mutexID csync.MutexID, t thread.ID) {
	if sh.Sy.MutexIsLocked(mutexID) {
		sh.Sy.MutexEnqueue(mutexID, csync.ThreadID(t))
		return
	}
	sh.Sy.MutexLock(mutexID, csync.ThreadID(t))
	sh.TM.UnblockThread(t)
}
