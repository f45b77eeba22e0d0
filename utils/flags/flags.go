// File: flags.go
// Brief: Package-level tunables the host interpreter sets before driving the scheduler
package flags

import "time"

// isolation
var (
	// IsolationRequired mirrors Miri's "isolated execution" mode: when set,
	// shims that read the real wall clock or sleep in real time fail with
	// Unsupported instead of touching the host clock.
	IsolationRequired bool
)

// timeouts and limits
var (
	// MaxTimeoutWaitReal caps how long schedule() will block the host
	// sleeping toward the nearest pending timeout callback during timed
	// deadlock recovery. Zero means unlimited.
	MaxTimeoutWaitReal time.Duration
)

// logging
var (
	NoInfo     bool
	NoProgress bool
)

// memory supervision
var (
	NoMemorySupervisor bool
)

// Reset restores every tunable to its zero value. Intended for tests that
// run multiple independent scheduler scenarios in one process.
func Reset() {
	IsolationRequired = false
	MaxTimeoutWaitReal = 0
	NoInfo = false
	NoProgress = false
	NoMemorySupervisor = false
}
