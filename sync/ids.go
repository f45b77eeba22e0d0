// File: ids.go
// Brief: Opaque dense identifiers for synchronization primitives
package sync

// ThreadID identifies a guest thread. Declared here (rather than imported
// from package thread) so SYNC has no compile-time dependency on TM: per
// the cyclic-reference design note, each side references the other only
// by opaque ID.
type ThreadID uint32

// MutexID is a dense id returned by MutexCreate. Zero means "unassigned"
// in guest memory; SYNC itself never hands out zero.
type MutexID uint32

// RwLockID is a dense id returned by RwLockCreate.
type RwLockID uint32

// CondvarID is a dense id returned by CondvarCreate.
type CondvarID uint32
