// File: shim.go
// Brief: SHIM — wires TM and SYNC together behind the libc-compatible surface
package shim

import (
	"time"

	"corevm/errs"
	csync "corevm/sync"
	"corevm/thread"
	"corevm/utils/log"
)

// Shim realizes the POSIX surface (pthread_*, nanosleep, clock_gettime,
// prctl) on top of TM and SYNC. It holds no mutable long-term state of
// its own beyond the clock anchor: guest object identities live in guest
// memory (read/written through mem), the authoritative records live in
// sync.State, and thread state lives in thread.Manager.
type Shim struct {
	TM  *thread.Manager
	Sy  *csync.State
	Mem GuestMemory

	timeAnchor time.Time
}

// New returns a shim wired to the given thread manager, sync state, and
// guest memory collaborator. timeAnchor is the instant CLOCK_MONOTONIC
// and mach_absolute_time are measured from — normally time.Now() at
// interpreter start.
func New(tm *thread.Manager, sy *csync.State, mem GuestMemory, timeAnchor time.Time) *Shim {
	return &Shim{TM: tm, Sy: sy, Mem: mem, timeAnchor: timeAnchor}
}

// undefinedBehavior logs the triggering condition before building the
// MachineStop, so a host running with default verbosity still sees why
// interpretation halted even if it only inspects the returned error's
// category, not its message.
func undefinedBehavior(format string, args ...any) *errs.MachineStop {
	log.Errorf(format, args...)
	return errs.UndefinedBehavior(format, args...)
}

// lazyGetOrCreateID reads the id field at addr+offset; if it is zero
// (unassigned), it allocates a fresh id via create and stores it back.
// Grounded on spec.md's "lazy id allocation" glossary entry.
func lazyGetOrCreateID[T ~uint32](mem GuestMemory, addr uint64, offset int, create func() T) (T, error) {
	raw, err := mem.ReadU32(addr, offset)
	if err != nil {
		return 0, err
	}
	if raw == 0 {
		id := create()
		if err := mem.WriteU32(addr, offset, uint32(id)); err != nil {
			return 0, err
		}
		return id, nil
	}
	return T(raw), nil
}
