package hsync

import "sync"

// Registry is an in-process name table of events and mutexes. It stands in
// for the kernel object namespace when driver and client run in the same
// process: simulators, replay tooling and tests. The creating side calls
// CreateEvent/CreateMutex; openers fail with ErrNotExist until then.
type Registry struct {
	mu      sync.Mutex
	events  map[string]*memEvent
	mutexes map[string]*memMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		events:  make(map[string]*memEvent),
		mutexes: make(map[string]*memMutex),
	}
}

// CreateEvent creates (or returns the existing) named event.
func (r *Registry) CreateEvent(name string) Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[name]
	if !ok {
		e = newMemEvent()
		r.events[name] = e
	}
	return e
}

// CreateMutex creates (or returns the existing) named mutex.
func (r *Registry) CreateMutex(name string) Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mutexes[name]
	if !ok {
		m = &memMutex{}
		r.mutexes[name] = m
	}
	return m
}

// OpenEvent implements Opener.
func (r *Registry) OpenEvent(name string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[name]; ok {
		return e, nil
	}
	return nil, ErrNotExist
}

// OpenMutex implements Opener.
func (r *Registry) OpenMutex(name string) (Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mutexes[name]; ok {
		return m, nil
	}
	return nil, ErrNotExist
}

// memEvent has Windows auto-reset semantics: Signal stores at most one
// pending wake, Wait consumes it.
type memEvent struct {
	set  chan struct{}
	done chan struct{}
	once sync.Once
}

func newMemEvent() *memEvent {
	return &memEvent{
		set:  make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (e *memEvent) Wait() error {
	select {
	case <-e.set:
		return nil
	case <-e.done:
		return ErrClosed
	}
}

func (e *memEvent) Signal() error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}
	select {
	case e.set <- struct{}{}:
	default: // already signaled
	}
	return nil
}

func (e *memEvent) Close() error {
	e.once.Do(func() { close(e.done) })
	return nil
}

type memMutex struct {
	mu sync.Mutex
}

func (m *memMutex) Lock() error {
	m.mu.Lock()
	return nil
}

func (m *memMutex) Unlock() error {
	m.mu.Unlock()
	return nil
}

// Close is a no-op: the registry owns the underlying mutex and other
// handles may still reference it.
func (m *memMutex) Close() error { return nil }
