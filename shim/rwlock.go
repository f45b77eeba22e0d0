// File: rwlock.go
// Brief: pthread_rwlock_* shims
package shim

import (
	"corevm/errs"
	csync "corevm/sync"
	"corevm/thread"
)

func (sh *Shim) rwlockID(addr uint64) (csync.RwLockID, error) {
	return lazyGetOrCreateID(sh.Mem, addr, RwLockOffID, sh.Sy.RwLockCreate)
}

// RwLockRdLock blocks the active thread if the lock is write-held,
// otherwise registers it as a reader immediately.
func (sh *Shim) RwLockRdLock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.rwlockID(addr)
	if err != nil {
		return 0, errs.Unsupported("rwlock_rdlock: reading guest memory: %v", err)
	}
	active := csync.ThreadID(sh.TM.ActiveThreadID())

	if sh.Sy.RwLockIsWriteLocked(id) {
		sh.Sy.RwLockEnqueueReader(id, active)
		sh.TM.BlockThread(thread.ID(active))
		return 0, nil
	}
	sh.Sy.RwLockReaderAdd(id, active)
	return 0, nil
}

// RwLockTryRdLock never blocks: EBUSY instead of enqueuing.
func (sh *Shim) RwLockTryRdLock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.rwlockID(addr)
	if err != nil {
		return 0, errs.Unsupported("rwlock_tryrdlock: reading guest memory: %v", err)
	}
	if sh.Sy.RwLockIsWriteLocked(id) {
		return EBUSY, nil
	}
	sh.Sy.RwLockReaderAdd(id, csync.ThreadID(sh.TM.ActiveThreadID()))
	return 0, nil
}

// RwLockWrLock blocks the active thread if the lock is held at all
// (reader or writer), otherwise takes it immediately.
func (sh *Shim) RwLockWrLock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.rwlockID(addr)
	if err != nil {
		return 0, errs.Unsupported("rwlock_wrlock: reading guest memory: %v", err)
	}
	active := csync.ThreadID(sh.TM.ActiveThreadID())

	if sh.Sy.RwLockIsLocked(id) {
		sh.TM.BlockThread(thread.ID(active))
		sh.Sy.RwLockEnqueueWriter(id, active)
	} else {
		sh.Sy.RwLockWriterSet(id, active)
	}
	return 0, nil
}

// RwLockTryWrLock never blocks: EBUSY instead of enqueuing.
func (sh *Shim) RwLockTryWrLock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.rwlockID(addr)
	if err != nil {
		return 0, errs.Unsupported("rwlock_trywrlock: reading guest memory: %v", err)
	}
	if sh.Sy.RwLockIsLocked(id) {
		return EBUSY, nil
	}
	sh.Sy.RwLockWriterSet(id, csync.ThreadID(sh.TM.ActiveThreadID()))
	return 0, nil
}

// RwLockUnlock releases the active thread's hold (as reader or writer)
// and hands off to the next waiter. Writers are preferred over readers on
// unlock — a documented starvation trade-off: when a writer releases, a
// queued writer gets the lock before any queued reader, so sustained
// writer traffic can starve queued readers.
func (sh *Shim) RwLockUnlock(addr uint64) (int32, *errs.MachineStop) {
	id, err := sh.rwlockID(addr)
	if err != nil {
		return 0, errs.Unsupported("rwlock_unlock: reading guest memory: %v", err)
	}
	active := csync.ThreadID(sh.TM.ActiveThreadID())

	if sh.Sy.RwLockReaderRemove(id, active) {
		if !sh.Sy.RwLockIsLocked(id) {
			if writer, ok := sh.Sy.RwLockDequeueWriter(id); ok {
				sh.Sy.RwLockWriterSet(id, writer)
				sh.TM.UnblockThread(thread.ID(writer))
			}
		}
		return 0, nil
	}

	if writer, ok := sh.Sy.RwLockWriterRemove(id); ok && writer == active {
		if nextWriter, ok := sh.Sy.RwLockDequeueWriter(id); ok {
			sh.Sy.RwLockWriterSet(id, nextWriter)
			sh.TM.UnblockThread(thread.ID(nextWriter))
		} else {
			for {
				reader, ok := sh.Sy.RwLockDequeueReader(id)
				if !ok {
					break
				}
				sh.Sy.RwLockReaderAdd(id, reader)
				sh.TM.UnblockThread(thread.ID(reader))
			}
		}
		return 0, nil
	}

	return 0, undefinedBehavior("rwlock_unlock: rwlock %d is not held by thread %d", id, active)
}

// RwLockDestroy removes the rwlock's SYNC record. UB if still locked.
func (sh *Shim) RwLockDestroy(addr uint64) *errs.MachineStop {
	id, err := sh.rwlockID(addr)
	if err != nil {
		return errs.Unsupported("rwlock_destroy: reading guest memory: %v", err)
	}
	if sh.Sy.RwLockIsLocked(id) {
		return undefinedBehavior("rwlock_destroy: rwlock %d is still locked", id)
	}
	sh.Sy.RwLockDestroy(id)
	if werr := sh.Mem.WriteU32(addr, RwLockOffID, undefinedMarker); werr != nil {
		return errs.Unsupported("rwlock_destroy: writing guest memory: %v", werr)
	}
	return nil
}
