//go:build windows

package hsync

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

// SystemOpener resolves names against the Windows kernel object namespace.
// Objects must already exist (the driver creates them); open never creates.
type SystemOpener struct{}

// System returns the platform opener for real driver connections.
func System() Opener { return SystemOpener{} }

func (SystemOpener) OpenEvent(name string) (Event, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenEvent(windows.EVENT_MODIFY_STATE|windows.SYNCHRONIZE, false, p)
	if err != nil {
		return nil, fmt.Errorf("hsync: open event %q: %w (%w)", name, err, ErrNotExist)
	}
	return &winHandle{h: h}, nil
}

func (SystemOpener) OpenMutex(name string) (Mutex, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenMutex(windows.SYNCHRONIZE, false, p)
	if err != nil {
		return nil, fmt.Errorf("hsync: open mutex %q: %w (%w)", name, err, ErrNotExist)
	}
	return &winHandle{h: h}, nil
}

type winHandle struct {
	mu     sync.Mutex
	h      windows.Handle
	closed bool
}

func (w *winHandle) wait() error {
	// WAIT_ABANDONED still grants ownership of a mutex: the driver died
	// while holding it, the protected state may be torn but the record
	// formats are fixed-size so a fresh write repairs them.
	ev, err := windows.WaitForSingleObject(w.h, windows.INFINITE)
	if err != nil {
		return err
	}
	if ev != windows.WAIT_OBJECT_0 && ev != windows.WAIT_ABANDONED {
		return fmt.Errorf("hsync: wait returned %#x", ev)
	}
	return nil
}

func (w *winHandle) Wait() error { return w.wait() }
func (w *winHandle) Lock() error { return w.wait() }

func (w *winHandle) Signal() error {
	return windows.SetEvent(w.h)
}

func (w *winHandle) Unlock() error {
	return windows.ReleaseMutex(w.h)
}

func (w *winHandle) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return windows.CloseHandle(w.h)
}
