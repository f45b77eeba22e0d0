// File: memory.go
// Brief: Abort interpretation when host RAM runs low
package control

import (
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/mem"

	"corevm/utils/flags"
	"corevm/utils/log"
)

var wasCanceled atomic.Bool

// Supervisor periodically checks host RAM and swap usage. Guest thread
// state (stacks, wait queues, TLS tables) accumulates for the life of an
// interpreter run and is never reclaimed by SYNC/TM, so a guest program
// that spawns unboundedly many threads can exhaust host memory without
// the core itself ever erroring. Supervisor runs as a background goroutine
// started by the host alongside the scheduler loop; CheckCanceled should
// be polled by the host's step loop and treated as a MachineStop.
func Supervisor() {
	if flags.NoMemorySupervisor {
		return
	}

	v, err := mem.VirtualMemory()
	if err != nil {
		log.Errorf("control: error reading memory info: %v", err)
		return
	}
	s, err := mem.SwapMemory()
	if err != nil {
		log.Errorf("control: error reading swap info: %v", err)
		return
	}

	thresholdRAM := uint64(float64(v.Total) * 0.02)
	thresholdSwap := uint64(1024 * 1024 * 1024) // 1GB
	startSwap := s.Used

	for {
		if wasCanceled.Load() {
			return
		}

		v, err = mem.VirtualMemory()
		if err != nil {
			log.Errorf("control: error reading memory info: %v", err)
		}
		s, err = mem.SwapMemory()
		if err != nil {
			log.Errorf("control: error reading swap info: %v", err)
		}

		if v.Available < thresholdRAM || s.Used > thresholdSwap+startSwap {
			cancelRAM()
			return
		}

		time.Sleep(500 * time.Millisecond)
	}
}

// cancelRAM marks interpretation as canceled and gives the host a chance to
// reclaim memory before it inspects the canceled flag.
func cancelRAM() {
	wasCanceled.Store(true)
	log.Error("control: not enough RAM to continue interpretation")
	runtime.GC()
	debug.FreeOSMemory()
}

// Cancel marks interpretation as canceled for a reason other than memory
// pressure (e.g. a host-level timeout on the whole run).
func Cancel() {
	wasCanceled.Store(true)
}

// CheckCanceled returns whether interpretation was canceled
func CheckCanceled() bool {
	return wasCanceled.Load()
}

// Reset clears the canceled flag. Used between independent test scenarios
// in the same process.
func Reset() {
	wasCanceled.Store(false)
}
