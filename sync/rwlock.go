// File: rwlock.go
// Brief: SYNC rwlock records — exclusive writer, reader multiset, two FIFO queues
package sync

import "corevm/utils/types"

// rwlock is the authoritative record for one guest pthread_rwlock_t.
type rwlock struct {
	hasWriter bool
	writer    ThreadID
	readers   map[ThreadID]int // nesting count per reader thread
	readerQ   *types.Queue[ThreadID]
	writerQ   *types.Queue[ThreadID]
}

// RwLockCreate allocates a fresh rwlock and returns its id.
func (s *State) RwLockCreate() RwLockID {
	s.nextRwLockID++
	id := RwLockID(s.nextRwLockID)
	s.rwlocks[id] = &rwlock{
		readers: make(map[ThreadID]int),
		readerQ: types.NewQueue[ThreadID](),
		writerQ: types.NewQueue[ThreadID](),
	}
	return id
}

// RwLockDestroy removes an rwlock record. Caller must ensure it is
// unlocked first.
func (s *State) RwLockDestroy(id RwLockID) {
	delete(s.rwlocks, id)
}

// RwLockIsLocked reports whether the rwlock is held by a writer or by any
// reader.
func (s *State) RwLockIsLocked(id RwLockID) bool {
	r := s.rwlocks[id]
	return r != nil && (r.hasWriter || len(r.readers) > 0)
}

// RwLockIsWriteLocked reports whether the rwlock is held exclusively.
func (s *State) RwLockIsWriteLocked(id RwLockID) bool {
	r := s.rwlocks[id]
	return r != nil && r.hasWriter
}

// RwLockReaderAdd registers t as a reader, incrementing its nesting count
// if it already holds the lock for read.
func (s *State) RwLockReaderAdd(id RwLockID, t ThreadID) {
	r := s.rwlocks[id]
	r.readers[t]++
}

// RwLockReaderRemove decrements t's reader nesting count, removing it
// entirely once it reaches zero. Returns whether t was present at all.
func (s *State) RwLockReaderRemove(id RwLockID, t ThreadID) bool {
	r := s.rwlocks[id]
	if r == nil {
		return false
	}
	n, ok := r.readers[t]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.readers, t)
	} else {
		r.readers[t] = n - 1
	}
	return true
}

// RwLockReaderCount returns the number of distinct reader threads
// currently holding the lock.
func (s *State) RwLockReaderCount(id RwLockID) int {
	r := s.rwlocks[id]
	if r == nil {
		return 0
	}
	return len(r.readers)
}

// RwLockWriterSet installs t as the exclusive writer. Requires the rwlock
// is currently unlocked.
func (s *State) RwLockWriterSet(id RwLockID, t ThreadID) {
	r := s.rwlocks[id]
	r.hasWriter = true
	r.writer = t
}

// RwLockWriterRemove clears the writer, returning the prior owner and
// whether one was set.
func (s *State) RwLockWriterRemove(id RwLockID) (ThreadID, bool) {
	r := s.rwlocks[id]
	if r == nil || !r.hasWriter {
		return 0, false
	}
	prev := r.writer
	r.hasWriter = false
	r.writer = 0
	return prev, true
}

// RwLockEnqueueReader appends t to the rwlock's reader wait queue.
func (s *State) RwLockEnqueueReader(id RwLockID, t ThreadID) {
	s.rwlocks[id].readerQ.Push(t)
}

// RwLockEnqueueWriter appends t to the rwlock's writer wait queue.
func (s *State) RwLockEnqueueWriter(id RwLockID, t ThreadID) {
	s.rwlocks[id].writerQ.Push(t)
}

// RwLockDequeueReader pops the head of the reader wait queue, FIFO.
func (s *State) RwLockDequeueReader(id RwLockID) (ThreadID, bool) {
	r := s.rwlocks[id]
	if r == nil {
		return 0, false
	}
	return r.readerQ.PopOK()
}

// RwLockDequeueWriter pops the head of the writer wait queue, FIFO.
func (s *State) RwLockDequeueWriter(id RwLockID) (ThreadID, bool) {
	r := s.rwlocks[id]
	if r == nil {
		return 0, false
	}
	return r.writerQ.PopOK()
}

// RwLockHasQueuedWriter reports whether any thread is queued for write
// access. The unlock shim does not call it: it pops with
// RwLockDequeueWriter and checks the ok result instead.
func (s *State) RwLockHasQueuedWriter(id RwLockID) bool {
	r := s.rwlocks[id]
	return r != nil && !r.writerQ.IsEmpty()
}
