// File: manager.go
// Brief: TM — the thread registry, active-thread tracking, and timeout table
package thread

import "fmt"

// Manager is the thread manager (TM). It owns every thread record ever
// created (terminated threads are kept, never deleted, so ids stay
// stable) plus the timeout callback table and thread-local static remap.
//
// Manager is not safe for concurrent use — all mutation happens from the
// interpreter's single host thread.
type Manager struct {
	active  ID
	threads []*Thread

	yieldActive bool

	timeouts map[ID]timeoutEntry

	tls *TLSTable
}

// NewManager returns a manager with a single Enabled, Detached main
// thread (id 0) active.
func NewManager() *Manager {
	main := &Thread{id: MainThread, state: Enabled, joinStatus: Detached}
	return &Manager{
		active:   MainThread,
		threads:  []*Thread{main},
		timeouts: make(map[ID]timeoutEntry),
		tls:      NewTLSTable(),
	}
}

// TLS returns the thread-local static allocation table.
func (m *Manager) TLS() *TLSTable { return m.tls }

// CreateThread pushes a new Enabled, Joinable thread and returns its id.
// The interpreter must call SetStack on the returned thread once it has
// pushed the start routine's initial frame.
func (m *Manager) CreateThread() ID {
	id := ID(len(m.threads))
	m.threads = append(m.threads, &Thread{id: id, state: Enabled, joinStatus: Joinable})
	return id
}

// Thread returns the record for id. Panics if id is out of range: ids are
// only ever handed out by CreateThread, so an invalid id is a caller bug.
func (m *Manager) Thread(id ID) *Thread {
	return m.threads[id]
}

// ThreadCount returns the number of threads ever created, including
// terminated ones.
func (m *Manager) ThreadCount() int {
	return len(m.threads)
}

// ActiveThreadID returns the id of the currently active thread.
func (m *Manager) ActiveThreadID() ID {
	return m.active
}

// SetActiveThreadID switches the active thread to id and returns the
// previously active id. Panics if id is not a valid thread index.
func (m *Manager) SetActiveThreadID(id ID) ID {
	if int(id) >= len(m.threads) {
		panic(fmt.Sprintf("thread: invalid thread id %d", id))
	}
	prev := m.active
	m.active = id
	return prev
}

// ActiveThread returns the record of the currently active thread.
func (m *Manager) ActiveThread() *Thread {
	return m.threads[m.active]
}

// BlockThread transitions t from Enabled to BlockedOnSync. Panics if t is
// not Enabled: a caller must never block an already-blocked thread.
func (m *Manager) BlockThread(t ID) {
	th := m.threads[t]
	if th.state != Enabled {
		panic(fmt.Sprintf("thread: blocking thread %d which is not enabled (state=%s)", t, th.state))
	}
	th.state = BlockedOnSync
}

// UnblockThread transitions t from BlockedOnSync to Enabled. Panics if t
// is not BlockedOnSync.
func (m *Manager) UnblockThread(t ID) {
	th := m.threads[t]
	if th.state != BlockedOnSync {
		panic(fmt.Sprintf("thread: unblocking thread %d which is not blocked-on-sync (state=%s)", t, th.state))
	}
	th.state = Enabled
}

// DetachThread marks t Detached. Fails with invalid-operation if t is
// already Detached or Joined.
func (m *Manager) DetachThread(t ID) error {
	th := m.threads[t]
	if th.joinStatus != Joinable {
		return fmt.Errorf("thread: cannot detach thread %d: already detached or joined", t)
	}
	th.joinStatus = Detached
	return nil
}

// JoinThread marks target as joined by the active thread. Fails with
// invalid-operation if target is not Joinable or is the active thread
// itself. If target has not yet terminated, blocks the active thread on
// it (BlockedOnJoin). Panics if another thread is already BlockedOnJoin
// on target — invariant I4, a Joinable thread can have at most one
// joiner, and join_thread is the only place that can create that edge.
func (m *Manager) JoinThread(target ID) error {
	th := m.threads[target]
	if th.joinStatus != Joinable {
		return fmt.Errorf("thread: cannot join thread %d: not joinable", target)
	}
	if target == m.active {
		return fmt.Errorf("thread: thread %d cannot join itself", target)
	}
	for _, other := range m.threads {
		if other.state == BlockedOnJoin && other.joinTarget == target {
			panic(fmt.Sprintf("thread: thread %d already has a joiner", target))
		}
	}

	th.joinStatus = Joined
	if th.state != Terminated {
		active := m.threads[m.active]
		active.state = BlockedOnJoin
		active.joinTarget = target
	}
	return nil
}

// SetThreadName sets the active thread's name, truncated here to at most
// maxNameLen (15) bytes.
func (m *Manager) SetThreadName(name []byte) {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	cp := make([]byte, len(name))
	copy(cp, name)
	m.threads[m.active].name = cp
}

// GetThreadName returns the active thread's name, or "<unnamed>" if
// never set.
func (m *Manager) GetThreadName() []byte {
	name := m.threads[m.active].name
	if name == nil {
		return []byte("<unnamed>")
	}
	return name
}

// YieldActiveThread sets the one-shot yield flag consumed by the next
// Schedule() call.
func (m *Manager) YieldActiveThread() {
	m.yieldActive = true
}

// YieldFlag reports whether the yield flag is currently set.
func (m *Manager) YieldFlag() bool {
	return m.yieldActive
}

// ClearYieldFlag clears the one-shot yield flag.
func (m *Manager) ClearYieldFlag() {
	m.yieldActive = false
}

// AllTerminated reports whether every thread is Terminated.
func (m *Manager) AllTerminated() bool {
	for _, th := range m.threads {
		if th.state != Terminated {
			return false
		}
	}
	return true
}

// CheckActiveTerminated runs the termination check on the active thread
// (empty stack while Enabled -> Terminated) and, if it just terminated,
// transitions every thread BlockedOnJoin on it to Enabled. Returns
// whether the active thread just terminated.
func (m *Manager) CheckActiveTerminated() bool {
	active := m.threads[m.active]
	if !active.checkTerminated() {
		return false
	}
	for _, th := range m.threads {
		if th.state == BlockedOnJoin && th.joinTarget == m.active {
			th.state = Enabled
		}
	}
	return true
}
