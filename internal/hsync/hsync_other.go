//go:build !windows

package hsync

import "sync"

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// System returns the process-wide registry. The vendor driver only exists
// on Windows; elsewhere the "system" namespace is in-process, shared by a
// simulator and the client under test.
func System() Opener {
	defaultRegistryOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// SystemRegistry exposes the process-wide registry so simulators can create
// the driver-side objects the client will open.
func SystemRegistry() *Registry {
	System()
	return defaultRegistry
}
