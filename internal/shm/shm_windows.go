//go:build windows

package shm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

type sysHandle struct {
	mapping windows.Handle
	view    uintptr
}

var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMapping = kernel32.NewProc("OpenFileMappingW")
)

func openFileMapping(access uint32, name *uint16) (windows.Handle, error) {
	h, _, err := procOpenFileMapping.Call(uintptr(access), 0, uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return 0, err
	}
	return windows.Handle(h), nil
}

// MapRegion opens (or, for simulators, creates) the named file mapping and
// maps a full view of it.
func MapRegion(opts MapOptions) (*MappedRegion, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d", opts.Size)
	}
	namep, err := windows.UTF16PtrFromString(opts.Name)
	if err != nil {
		return nil, err
	}

	var mapping windows.Handle
	if opts.Create {
		mapping, err = windows.CreateFileMapping(windows.InvalidHandle, nil,
			windows.PAGE_READWRITE, 0, uint32(opts.Size), namep)
	} else {
		mapping, err = openFileMapping(windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, namep)
	}
	if err != nil {
		return nil, fmt.Errorf("shm: open mapping %q: %w", opts.Name, err)
	}

	view, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(opts.Size))
	if err != nil {
		_ = windows.CloseHandle(mapping)
		return nil, fmt.Errorf("shm: map view of %q: %w", opts.Name, err)
	}

	return &MappedRegion{
		Bytes:     unsafe.Slice((*byte)(unsafe.Pointer(view)), opts.Size),
		name:      opts.Name,
		created:   opts.Create,
		sysHandle: sysHandle{mapping: mapping, view: view},
	}, nil
}

// Close unmaps the view and closes the mapping handle.
func (r *MappedRegion) Close() error {
	if r == nil || r.Bytes == nil {
		return nil
	}
	r.Bytes = nil
	err := windows.UnmapViewOfFile(r.view)
	if cerr := windows.CloseHandle(r.mapping); err == nil {
		err = cerr
	}
	return err
}
