// File: thread.go
// Brief: pthread_create/join/detach/self and sched_yield shims
package shim

import (
	"corevm/errs"
	"corevm/thread"
)

// ThreadCreate allocates a new thread id, temporarily switches the active
// thread to it so pushFrame can push the start routine's initial call
// frame (and anything else that needs to run "as" the new thread, such as
// allocating its TLS entries), then restores the previously active
// thread. Returns the new thread's id.
func (sh *Shim) ThreadCreate(pushFrame func(id thread.ID)) thread.ID {
	id := sh.TM.CreateThread()
	prev := sh.TM.SetActiveThreadID(id)
	pushFrame(id)
	sh.TM.SetActiveThreadID(prev)
	return id
}

// ThreadJoin joins target on behalf of the active thread. Only a null
// retval pointer is supported; a non-null one is Unsupported. Any other
// join precondition violation (target not Joinable, self-join) is UB.
func (sh *Shim) ThreadJoin(target thread.ID, retvalIsNull bool) *errs.MachineStop {
	if !retvalIsNull {
		return errs.Unsupported("pthread_join: non-null retval is not supported")
	}
	if err := sh.TM.JoinThread(target); err != nil {
		return undefinedBehavior("%v", err)
	}
	return nil
}

// ThreadDetach detaches t.
func (sh *Shim) ThreadDetach(t thread.ID) *errs.MachineStop {
	if err := sh.TM.DetachThread(t); err != nil {
		return undefinedBehavior("%v", err)
	}
	return nil
}

// ThreadSelf writes the active thread's id to addr.
func (sh *Shim) ThreadSelf(addr uint64) error {
	return sh.Mem.WriteU32(addr, 0, uint32(sh.TM.ActiveThreadID()))
}

// SchedYield sets the yield flag consumed by the next scheduler tick.
func (sh *Shim) SchedYield() {
	sh.TM.YieldActiveThread()
}
