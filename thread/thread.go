// File: thread.go
// Brief: TM thread records — state, join status, name, and the opaque stack
package thread

// ID identifies a guest thread. 0 is always the main thread.
type ID uint32

// MainThread is the id of the thread created at manager construction.
const MainThread ID = 0

// State is one of Enabled, BlockedOnJoin, BlockedOnSync, Terminated.
type State int

const (
	Enabled State = iota
	BlockedOnJoin
	BlockedOnSync
	Terminated
)

func (s State) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case BlockedOnJoin:
		return "blocked-on-join"
	case BlockedOnSync:
		return "blocked-on-sync"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// JoinStatus is one of Joinable, Detached, Joined.
type JoinStatus int

const (
	Joinable JoinStatus = iota
	Detached
	Joined
)

// Stack is the interpreter's call-stack representation for one thread. It
// is opaque to the core: TM owns the field to let the scheduler swap
// active stacks between threads, but never inspects frames, only whether
// the stack is empty (the thread-termination check in schedule()).
type Stack interface {
	Empty() bool
}

// maxNameLen is the number of name bytes retained, excluding the NUL a
// caller (prctl) appends on read. See corevm/shim.Prctl.
const maxNameLen = 15

// Thread is one guest thread's TM-owned record.
type Thread struct {
	id ID

	state State
	// joinTarget is meaningful only when state == BlockedOnJoin.
	joinTarget ID

	joinStatus JoinStatus
	name       []byte
	stack      Stack
}

// ID returns the thread's id.
func (t *Thread) ID() ID { return t.id }

// State returns the thread's current scheduling state.
func (t *Thread) State() State { return t.state }

// JoinTarget returns the thread id being awaited, valid only when State()
// is BlockedOnJoin.
func (t *Thread) JoinTarget() ID { return t.joinTarget }

// JoinStatus returns the thread's join status.
func (t *Thread) JoinStatus() JoinStatus { return t.joinStatus }

// Name returns the thread's name, or nil if never set.
func (t *Thread) Name() []byte { return t.name }

// Stack returns the thread's call stack, as set by the interpreter.
func (t *Thread) Stack() Stack { return t.stack }

// SetStack installs the thread's call stack. Called by the interpreter
// when it pushes the initial frame of a newly created thread, and
// whenever it mutates frames thereafter.
func (t *Thread) SetStack(s Stack) { t.stack = s }

// checkTerminated marks the thread Terminated if it is Enabled with an
// empty stack, returning whether it did so. Mirrors the
// check-active-thread-termination step of schedule().
func (t *Thread) checkTerminated() bool {
	if t.state == Enabled && t.stack != nil && t.stack.Empty() {
		t.state = Terminated
		return true
	}
	return false
}
