// Package shm maps the driver's named shared-memory segment.
// Platform-specific mapping code is in shm_windows.go and shm_unix.go.
package shm

import "errors"

// ErrNoSpace is returned when creating a segment would exhaust the backing
// filesystem (unix create path only).
var ErrNoSpace = errors.New("shm: not enough space left on shared memory device")

// MapOptions selects the segment to map.
type MapOptions struct {
	// Name is the segment's name in the platform namespace.
	Name string
	// Size is the byte length to map.
	Size int
	// Create makes the segment if it does not exist (simulator side).
	// The client always opens with Create=false: a missing segment means
	// the driver is not running.
	Create bool
}

// MappedRegion is one mapped view of a shared segment.
type MappedRegion struct {
	// Bytes is the live mapped view. Writes are visible to the other
	// process immediately; synchronization is the caller's problem.
	Bytes []byte

	name    string
	created bool
	sysHandle
}
