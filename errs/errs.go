// File: errs.go
// Brief: Fatal machine-stop categories distinct from POSIX errno returns
package errs

import (
	"errors"
	"fmt"
)

// Sentinel categories a host can match with errors.Is against the error
// returned from MachineStop.Unwrap().
var (
	// ErrUndefinedBehavior marks a guest operation that violates a POSIX
	// precondition the core does not emulate past (e.g. unlocking a mutex
	// one does not own).
	ErrUndefinedBehavior = errors.New("undefined behavior")

	// ErrUnsupported marks a guest operation this core deliberately does
	// not model (e.g. pthread_join with a non-null retval).
	ErrUnsupported = errors.New("unsupported operation")

	// ErrDeadlock marks a scheduler-detected deadlock: no thread is
	// runnable and no timeout callback is pending, or a NORMAL mutex was
	// reacquired by its own owner.
	ErrDeadlock = errors.New("deadlock")
)

// MachineStop is a fatal interpretation-ending condition. It carries the
// category sentinel so a host can distinguish a deadlock termination from
// other machine stops, plus a human-readable message with no further
// structure: there is no rollback, interpretation halts at the current
// step regardless of which category fired.
type MachineStop struct {
	category error
	msg      string
}

// UndefinedBehavior builds a MachineStop for a UB condition.
func UndefinedBehavior(format string, args ...any) *MachineStop {
	return &MachineStop{category: ErrUndefinedBehavior, msg: fmt.Sprintf(format, args...)}
}

// Unsupported builds a MachineStop for an unsupported operation.
func Unsupported(format string, args ...any) *MachineStop {
	return &MachineStop{category: ErrUnsupported, msg: fmt.Sprintf(format, args...)}
}

// Deadlock builds a MachineStop for a detected deadlock.
func Deadlock(format string, args ...any) *MachineStop {
	return &MachineStop{category: ErrDeadlock, msg: fmt.Sprintf(format, args...)}
}

func (e *MachineStop) Error() string {
	return fmt.Sprintf("%s: %s", e.category, e.msg)
}

func (e *MachineStop) Unwrap() error {
	return e.category
}
