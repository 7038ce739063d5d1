// Package hsync abstracts the named synchronization objects shared with the
// driver process: auto-reset events and cross-process mutexes, looked up by
// name. On Windows these are real kernel objects; elsewhere an in-process
// registry backs simulators and tests.
//
// All waits are infinite by contract. A crashed driver wedges the caller on
// the current wait; callers inherit that liveness trade-off.
package hsync

import "errors"

// ErrNotExist is returned when a named object has not been created by the
// other side, typically because the driver process is not running.
var ErrNotExist = errors.New("hsync: named object does not exist")

// ErrClosed is returned by operations on a closed handle.
var ErrClosed = errors.New("hsync: handle closed")

// Event is an auto-reset named event: Signal wakes exactly one waiter and
// the event resets.
type Event interface {
	// Wait blocks until the event is signaled. No timeout.
	Wait() error
	// Signal sets the event.
	Signal() error
	Close() error
}

// Mutex is a cross-process named mutex.
type Mutex interface {
	// Lock blocks until ownership is acquired. No timeout.
	Lock() error
	Unlock() error
	Close() error
}

// Opener resolves named synchronization objects. It is the handle-owning
// context passed to every component; there are no ambient singletons.
type Opener interface {
	OpenEvent(name string) (Event, error)
	OpenMutex(name string) (Mutex, error)
}
