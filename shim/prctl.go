// File: prctl.go
// Brief: PR_SET_NAME / PR_GET_NAME shims
package shim

import "corevm/errs"

const maxPrctlName = 16 // including the NUL terminator

// Prctl dispatches PR_SET_NAME and PR_GET_NAME. Any other op is
// Unsupported: this shim only models the two thread-naming operations.
func (sh *Shim) Prctl(op int32, addr uint64) *errs.MachineStop {
	switch op {
	case PrSetName:
		return sh.prctlSetName(addr)
	case PrGetName:
		return sh.prctlGetName(addr)
	default:
		return errs.Unsupported("prctl: operation %d is not supported", op)
	}
}

// prctlSetName reads a NUL-terminated string from addr and truncates it to
// 15 bytes before storing it as the active thread's name.
func (sh *Shim) prctlSetName(addr uint64) *errs.MachineStop {
	raw, err := sh.Mem.ReadBytes(addr, 0, maxPrctlName)
	if err != nil {
		return errs.Unsupported("prctl(PR_SET_NAME): reading guest memory: %v", err)
	}
	name := raw
	for i, b := range raw {
		if b == 0 {
			name = raw[:i]
			break
		}
	}
	sh.TM.SetThreadName(name)
	return nil
}

// prctlGetName writes the active thread's name back to addr as a
// NUL-terminated string of at most 16 bytes total.
func (sh *Shim) prctlGetName(addr uint64) *errs.MachineStop {
	name := sh.TM.GetThreadName()
	if len(name) > maxPrctlName-1 {
		name = name[:maxPrctlName-1]
	}
	buf := make([]byte, len(name)+1)
	copy(buf, name)
	if err := sh.Mem.WriteBytes(addr, 0, buf); err != nil {
		return errs.Unsupported("prctl(PR_GET_NAME): writing guest memory: %v", err)
	}
	return nil
}
