package shim

import (
	"encoding/binary"
	"fmt"
	"time"

	csync "corevm/sync"
	"corevm/thread"
)

// fakeMemory is a flat byte-addressable guest memory stand-in for tests.
// Each distinct addr gets its own backing slab, grown on demand.
type fakeMemory struct {
	slabs        map[uint64][]byte
	pointerWidth int
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{slabs: make(map[uint64][]byte), pointerWidth: 8}
}

func (m *fakeMemory) slab(addr uint64, end int) []byte {
	s := m.slabs[addr]
	if len(s) < end {
		grown := make([]byte, end)
		copy(grown, s)
		s = grown
		m.slabs[addr] = s
	}
	return s
}

func (m *fakeMemory) ReadU32(addr uint64, offset int) (uint32, error) {
	s := m.slab(addr, offset+4)
	return binary.LittleEndian.Uint32(s[offset : offset+4]), nil
}

func (m *fakeMemory) WriteU32(addr uint64, offset int, val uint32) error {
	s := m.slab(addr, offset+4)
	binary.LittleEndian.PutUint32(s[offset:offset+4], val)
	return nil
}

func (m *fakeMemory) ReadI32(addr uint64, offset int) (int32, error) {
	v, err := m.ReadU32(addr, offset)
	return int32(v), err
}

func (m *fakeMemory) WriteI32(addr uint64, offset int, val int32) error {
	return m.WriteU32(addr, offset, uint32(val))
}

func (m *fakeMemory) ReadBytes(addr uint64, offset int, n int) ([]byte, error) {
	s := m.slab(addr, offset+n)
	out := make([]byte, n)
	copy(out, s[offset:offset+n])
	return out, nil
}

func (m *fakeMemory) WriteBytes(addr uint64, offset int, data []byte) error {
	s := m.slab(addr, offset+len(data))
	copy(s[offset:], data)
	return nil
}

func (m *fakeMemory) PointerWidth() int { return m.pointerWidth }

// failingMemory always errors, for the guest-memory-failure branches.
type failingMemory struct{}

func (failingMemory) ReadU32(uint64, int) (uint32, error)      { return 0, fmt.Errorf("fake read failure") }
func (failingMemory) WriteU32(uint64, int, uint32) error       { return fmt.Errorf("fake write failure") }
func (failingMemory) ReadI32(uint64, int) (int32, error)       { return 0, fmt.Errorf("fake read failure") }
func (failingMemory) WriteI32(uint64, int, int32) error        { return fmt.Errorf("fake write failure") }
func (failingMemory) ReadBytes(uint64, int, int) ([]byte, error) {
	return nil, fmt.Errorf("fake read failure")
}
func (failingMemory) WriteBytes(uint64, int, []byte) error { return fmt.Errorf("fake write failure") }
func (failingMemory) PointerWidth() int                    { return 8 }

func newTestShim() (*Shim, *thread.Manager, *csync.State, *fakeMemory) {
	tm := thread.NewManager()
	sy := csync.NewState()
	mem := newFakeMemory()
	return New(tm, sy, mem, time.Now()), tm, sy, mem
}
