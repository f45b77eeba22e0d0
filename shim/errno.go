// File: errno.go
// Brief: POSIX errno and clock/prctl constants, sourced from x/sys/unix rather than redeclared
package shim

import "golang.org/x/sys/unix"

// Errno values returned by shim operations. 0 means success. These are
// thin int32 aliases over golang.org/x/sys/unix's linux errno table — the
// interpreter's own libc-constant lookup (an external collaborator, out
// of scope for this core) is expected to resolve to the same numeric
// values on the guest side, so the shim compares against the concrete
// constants here rather than re-deriving them.
const (
	EINVAL  = int32(unix.EINVAL)
	EBUSY   = int32(unix.EBUSY)
	EPERM   = int32(unix.EPERM)
	EDEADLK = int32(unix.EDEADLK)

	// ETIMEDOUT is written into a timedwait's return slot by a firing
	// timeout callback.
	ETIMEDOUT = int32(unix.ETIMEDOUT)
)

// Clock ids accepted by clock_gettime/pthread_condattr_setclock.
const (
	ClockRealtime  = int32(unix.CLOCK_REALTIME)
	ClockMonotonic = int32(unix.CLOCK_MONOTONIC)
)

// prctl operations this shim understands.
const (
	PrSetName = int32(unix.PR_SET_NAME)
	PrGetName = int32(unix.PR_GET_NAME)
)
