// File: timeout.go
// Brief: Per-thread one-shot timeout callbacks with tagged absolute time
package thread

import "time"

// Clock tags which wall-clock source an absolute Time was computed
// against, since a nanosleep/timedwait deadline must be compared against
// the same clock it was computed from.
type Clock int

const (
	Monotonic Clock = iota
	RealTime
)

// Time is an absolute instant tagged by which clock it was computed
// against. Constructed at the call site: the condvar shim picks
// Monotonic or RealTime from the condvar's stored clock attribute;
// nanosleep always picks Monotonic.
type Time struct {
	Clock Clock
	At    time.Time
}

// Until returns the duration from now until t. The tag is not consulted:
// the caller passes a now sampled from the clock t is tagged with.
// Negative if t has already passed.
func (t Time) Until(now time.Time) time.Duration {
	return t.At.Sub(now)
}

// Ready reports whether t has passed, comparing against the given
// monotonic-now and real-now samples (the caller takes one sample of each
// so every callback in a scan is compared against a consistent snapshot).
func (t Time) Ready(monotonicNow, realNow time.Time) bool {
	switch t.Clock {
	case Monotonic:
		return !monotonicNow.Before(t.At)
	default:
		return !realNow.Before(t.At)
	}
}

// Callback is a one-shot closure capturing only ids, never handles, to
// avoid re-entrancy hazards when it mutates TM/SYNC state.
type Callback func()

type timeoutEntry struct {
	callTime Time
	callback Callback
}

// RegisterTimeoutCallback installs the pending timeout for t. Panics if t
// already has one registered: invariant I5 allows at most one per thread.
func (m *Manager) RegisterTimeoutCallback(t ID, callTime Time, cb Callback) {
	if _, exists := m.timeouts[t]; exists {
		panic("thread: thread already has a registered timeout callback")
	}
	m.timeouts[t] = timeoutEntry{callTime: callTime, callback: cb}
}

// UnregisterTimeoutCallbackIfExists removes t's pending timeout, if any.
// A no-op if none is registered — used when a condvar signal/broadcast
// wakes a thread that also had a timedwait pending.
func (m *Manager) UnregisterTimeoutCallbackIfExists(t ID) {
	delete(m.timeouts, t)
}

// GetReadyCallback scans threads in ascending id order and pops the first
// whose call_time has passed, per the corresponding clock. Returns
// ok=false if none is ready yet.
func (m *Manager) GetReadyCallback() (t ID, cb Callback, ok bool) {
	monotonicNow := time.Now()
	realNow := time.Now()
	for _, th := range m.threads {
		entry, exists := m.timeouts[th.id]
		if !exists {
			continue
		}
		if entry.callTime.Ready(monotonicNow, realNow) {
			delete(m.timeouts, th.id)
			return th.id, entry.callback, true
		}
	}
	return 0, nil, false
}

// NearestTimeout returns the thread id and wait duration of the
// soonest-firing pending callback, found via a direct minimum search
// (the resolution of one of this core's two open questions: schedule()
// does not scan for readiness before sleeping, it goes straight to the
// nearest callback). ok is false if no callback is pending.
func (m *Manager) NearestTimeout() (t ID, wait time.Duration, ok bool) {
	monotonicNow := time.Now()
	realNow := time.Now()

	first := true
	for tid, entry := range m.timeouts {
		var d time.Duration
		if entry.callTime.Clock == Monotonic {
			d = entry.callTime.At.Sub(monotonicNow)
		} else {
			d = entry.callTime.At.Sub(realNow)
		}
		if first || d < wait || (d == wait && tid < t) {
			wait = d
			t = tid
			first = false
		}
	}
	return t, wait, !first
}

// HasTimeoutCallback reports whether t currently has a pending timeout.
func (m *Manager) HasTimeoutCallback(t ID) bool {
	_, ok := m.timeouts[t]
	return ok
}
