// File: condvar.go
// Brief: pthread_cond_* shims, including the release/reacquire mutex handoff
package shim

import (
	"time"

	"corevm/errs"
	csync "corevm/sync"
	"corevm/thread"
	"corevm/utils/flags"
)

func (sh *Shim) condID(addr uint64) (csync.CondvarID, error) {
	return lazyGetOrCreateID(sh.Mem, addr, CondOffID, sh.Sy.CondvarCreate)
}

// CondInit allocates the condvar's id and stores its clock, defaulting to
// CLOCK_REALTIME when attr is nil.
func (sh *Shim) CondInit(addr uint64, attr *CondAttr) error {
	clock := ClockRealtime
	if attr != nil {
		clock = attr.Clock
	}
	if _, err := sh.condID(addr); err != nil {
		return err
	}
	return sh.Mem.WriteI32(addr, CondOffClockID, clock)
}

func (sh *Shim) condClock(addr uint64) (int32, error) {
	return sh.Mem.ReadI32(addr, CondOffClockID)
}

// CondWait releases the mutex (transferring it directly to a queued
// waiter if one exists) and enqueues the active thread on the condvar,
// then blocks it. Per the condvar contract, release and enqueue happen
// atomically with respect to the scheduler: no other thread runs between
// them.
func (sh *Shim) CondWait(condAddr, mutexAddr uint64) *errs.MachineStop {
	id, err := sh.condID(condAddr)
	if err != nil {
		return errs.Unsupported("cond_wait: reading guest memory: %v", err)
	}
	mutexID, err := sh.mutexID(mutexAddr)
	if err != nil {
		return errs.Unsupported("cond_wait: reading guest memory: %v", err)
	}
	active := sh.TM.ActiveThreadID()

	if merr := releaseMutexForCondWait(sh, mutexID, active); merr != nil {
		return merr
	}
	sh.Sy.CondvarWait(id, csync.ThreadID(active), mutexID)
	sh.TM.BlockThread(active)
	return nil
}

// CondTimedWait behaves like CondWait, additionally registering a
// timeout callback that fires at abstime (interpreted against the
// condvar's stored clock). The callback reacquires the mutex, removes
// the thread from the condvar's waiters, and writes ETIMEDOUT into
// writeResult — which CondTimedWait itself first sets to 0 (success),
// since a racing signal/broadcast may resolve the wait before the
// timeout fires.
func (sh *Shim) CondTimedWait(condAddr, mutexAddr uint64, abstimeSec int64, abstimeNsec int64, writeResult func(int32)) *errs.MachineStop {
	if flags.IsolationRequired {
		return errs.Unsupported("cond_timedwait: requires access to the real clock, which is disabled under isolation")
	}

	id, err := sh.condID(condAddr)
	if err != nil {
		return errs.Unsupported("cond_timedwait: reading guest memory: %v", err)
	}
	mutexID, err := sh.mutexID(mutexAddr)
	if err != nil {
		return errs.Unsupported("cond_timedwait: reading guest memory: %v", err)
	}
	active := sh.TM.ActiveThreadID()

	if merr := releaseMutexForCondWait(sh, mutexID, active); merr != nil {
		return merr
	}
	sh.Sy.CondvarWait(id, csync.ThreadID(active), mutexID)
	sh.TM.BlockThread(active)

	writeResult(0)

	clock, cerr := sh.condClock(condAddr)
	if cerr != nil {
		return errs.Unsupported("cond_timedwait: reading clock id: %v", cerr)
	}

	var callTime thread.Time
	switch clock {
	case ClockRealtime:
		callTime = thread.Time{Clock: thread.RealTime, At: time.Unix(abstimeSec, abstimeNsec)}
	case ClockMonotonic:
		callTime = thread.Time{Clock: thread.Monotonic, At: sh.timeAnchor.Add(time.Duration(abstimeSec)*time.Second + time.Duration(abstimeNsec))}
	default:
		return errs.Unsupported("cond_timedwait: unknown clock id %d", clock)
	}

	sh.TM.RegisterTimeoutCallback(active, callTime, func() {
		reacquireMutexForCondWake(sh, mutexID, active)
		sh.Sy.CondvarRemoveWaiter(id, csync.ThreadID(active))
		writeResult(ETIMEDOUT)
	})
	return nil
}

// CondSignal wakes the one longest-waiting thread, if any, reacquiring
// its mutex and unregistering its timeout if it had one. A no-op on a
// condvar with no waiters.
func (sh *Shim) CondSignal(addr uint64) *errs.MachineStop {
	id, err := sh.condID(addr)
	if err != nil {
		return errs.Unsupported("cond_signal: reading guest memory: %v", err)
	}
	t, mutexID, ok := sh.Sy.CondvarSignal(id)
	if !ok {
		return nil
	}
	reacquireMutexForCondWake(sh, mutexID, thread.ID(t))
	sh.TM.UnregisterTimeoutCallbackIfExists(thread.ID(t))
	return nil
}

// CondBroadcast repeats CondSignal until the condvar's waiter queue is
// empty. No other thread runs between each pop and its mutex handoff:
// the whole broadcast happens within this single shim call.
func (sh *Shim) CondBroadcast(addr uint64) *errs.MachineStop {
	id, err := sh.condID(addr)
	if err != nil {
		return errs.Unsupported("cond_broadcast: reading guest memory: %v", err)
	}
	for {
		t, mutexID, ok := sh.Sy.CondvarSignal(id)
		if !ok {
			return nil
		}
		reacquireMutexForCondWake(sh, mutexID, thread.ID(t))
		sh.TM.UnregisterTimeoutCallbackIfExists(thread.ID(t))
	}
}

// CondDestroy removes the condvar's SYNC record. UB if any thread is
// still waiting on it.
func (sh *Shim) CondDestroy(addr uint64) *errs.MachineStop {
	id, err := sh.condID(addr)
	if err != nil {
		return errs.Unsupported("cond_destroy: reading guest memory: %v", err)
	}
	if sh.Sy.CondvarIsAwaited(id) {
		return undefinedBehavior("cond_destroy: condvar %d still has waiters", id)
	}
	sh.Sy.CondvarDestroy(id)
	if werr := sh.Mem.WriteU32(addr, CondOffID, undefinedMarker); werr != nil {
		return errs.Unsupported("cond_destroy: writing guest memory: %v", werr)
	}
	return nil
}
