// File: schedule.go
// Brief: SCHED — picks the next scheduling action from TM state, stateless-model-checker style
package scheduler

import (
	"time"

	"corevm/errs"
	"corevm/thread"
	"corevm/utils/control"
	"corevm/utils/flags"
	"corevm/utils/log"
)

// Action is the scheduling decision returned by Schedule.
type Action int

const (
	// ExecuteStep runs one instruction of the active thread.
	ExecuteStep Action = iota
	// ExecuteTimeoutCallback runs a ready timeout callback (the lowest-id
	// ready one, see RunTimeoutCallback).
	ExecuteTimeoutCallback
	// ExecuteDtors runs destructors of the just-terminated active thread.
	ExecuteDtors
	// Stop ends interpretation: every thread has terminated, or, when
	// returned with a non-nil error, interpretation cannot continue.
	Stop
)

func (a Action) String() string {
	switch a {
	case ExecuteStep:
		return "execute-step"
	case ExecuteTimeoutCallback:
		return "execute-timeout-callback"
	case ExecuteDtors:
		return "execute-dtors"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Schedule decides the next action to take, given the thread manager's
// current state. It runs the policy commonly used by stateless model
// checkers such as Loom: keep running the active thread as long as
// possible, switch only when it is blocked, terminated, or has explicitly
// yielded.
func Schedule(tm *thread.Manager) (Action, error) {
	// 0. Host-level memory supervisor fired: abort regardless of guest state.
	if control.CheckCanceled() {
		return Stop, errs.Unsupported("interpretation canceled: %s", "host memory supervisor")
	}

	// 1. Active thread just terminated?
	if tm.CheckActiveTerminated() {
		return ExecuteDtors, nil
	}

	// 2. Main thread terminated?
	if tm.Thread(thread.MainThread).State() == thread.Terminated {
		if !tm.AllTerminated() {
			return Stop, errs.Unsupported("main thread exited while other threads are still alive")
		}
		return Stop, nil
	}

	// 3. Continue the active thread if it is still runnable.
	if tm.ActiveThread().State() == thread.Enabled && !tm.YieldFlag() {
		return ExecuteStep, nil
	}

	// 4. Pick the next enabled thread, ascending id order.
	prevActive := tm.ActiveThreadID()
	yielded := tm.YieldFlag()
	for id := thread.ID(0); int(id) < tm.ThreadCount(); id++ {
		th := tm.Thread(id)
		if th.State() != thread.Enabled {
			continue
		}
		if yielded && id == prevActive {
			continue
		}
		tm.SetActiveThreadID(id)
		tm.ClearYieldFlag()
		return ExecuteStep, nil
	}
	tm.ClearYieldFlag()
	if tm.ActiveThread().State() == thread.Enabled {
		return ExecuteStep, nil
	}

	// 5. Nothing runnable and every thread terminated: invariant violation
	// (step 2 stops once main has terminated, so this cannot happen).
	if tm.AllTerminated() {
		panic("scheduler: all threads terminated but main thread is not — unreachable")
	}

	// 6. Timed deadlock recovery: sleep toward the nearest pending
	// timeout callback, if any.
	id, wait, ok := tm.NearestTimeout()
	if !ok {
		return ExecuteStep, errs.Deadlock("no thread is runnable and no timeout callback is pending")
	}

	log.Important("scheduler: no thread runnable, sleeping toward nearest timeout on thread ", id)
	if wait > 0 {
		if flags.MaxTimeoutWaitReal > 0 && wait > flags.MaxTimeoutWaitReal {
			wait = flags.MaxTimeoutWaitReal
		}
		time.Sleep(wait)
	}
	return ExecuteTimeoutCallback, nil
}

// RunTimeoutCallback pulls the now-ready callback from TM, switches the
// active thread to its owner, invokes it, then restores the previously
// active thread. Returns false if no callback is ready (the caller asked
// for this action without Schedule having just returned it, or the
// callback was unregistered between Schedule and this call — e.g. a
// condvar signal beat the timeout to the punch).
func RunTimeoutCallback(tm *thread.Manager) bool {
	id, cb, ok := tm.GetReadyCallback()
	if !ok {
		return false
	}
	prev := tm.SetActiveThreadID(id)
	cb()
	tm.SetActiveThreadID(prev)
	return true
}
