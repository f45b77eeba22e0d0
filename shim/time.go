// File: time.go
// Brief: nanosleep, clock_gettime, gettimeofday, mach_absolute_time shims
package shim

import (
	"time"

	"corevm/errs"
	"corevm/thread"
	"corevm/utils/flags"
)

// NanoSleep blocks the active thread and registers a MONOTONIC timeout that
// unblocks it after the requested duration. A zero duration still blocks,
// waking on the very next scheduler tick rather than sleeping the host.
func (sh *Shim) NanoSleep(reqSec int64, reqNsec int64) *errs.MachineStop {
	if reqSec < 0 || reqNsec < 0 {
		return undefinedBehavior("nanosleep: negative duration")
	}
	active := sh.TM.ActiveThreadID()
	duration := time.Duration(reqSec)*time.Second + time.Duration(reqNsec)

	sh.TM.BlockThread(active)
	sh.TM.RegisterTimeoutCallback(active, thread.Time{
		Clock: thread.Monotonic,
		At:    time.Now().Add(duration),
	}, func() {
		sh.TM.UnblockThread(active)
	})
	return nil
}

// ClockGetTime writes the requested clock's current reading. MONOTONIC is
// measured from the shim's time anchor; REALTIME from the host wall clock.
// Any other clock id is EINVAL. Under isolation, only MONOTONIC is allowed
// (it carries no information about the host's wall-clock date).
func (sh *Shim) ClockGetTime(clockID int32) (sec int64, nsec int64, errno int32) {
	switch clockID {
	case ClockMonotonic:
		d := time.Since(sh.timeAnchor)
		return int64(d / time.Second), int64(d % time.Second), 0
	case ClockRealtime:
		if flags.IsolationRequired {
			return 0, 0, EINVAL
		}
		now := time.Now()
		return now.Unix(), int64(now.Nanosecond()), 0
	default:
		return 0, 0, EINVAL
	}
}

// GetTimeOfDay writes the current REALTIME reading in (sec, usec) form.
// hasTZ must be false: a non-null tz argument is EINVAL, matching the
// modern POSIX deprecation of the timezone parameter.
func (sh *Shim) GetTimeOfDay(hasTZ bool) (sec int64, usec int64, errno int32) {
	if hasTZ {
		return 0, 0, EINVAL
	}
	if flags.IsolationRequired {
		return 0, 0, EINVAL
	}
	now := time.Now()
	return now.Unix(), int64(now.Nanosecond() / 1000), 0
}

// MachAbsoluteTime returns nanoseconds elapsed since the shim's time
// anchor, mirroring Darwin's mach_absolute_time with a 1:1 timebase.
func (sh *Shim) MachAbsoluteTime() uint64 {
	return uint64(time.Since(sh.timeAnchor).Nanoseconds())
}
