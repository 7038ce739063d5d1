//go:build !windows

package shm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

type sysHandle struct {
	fd int
}

func shmDir() string {
	if st, err := os.Stat("/dev/shm"); err == nil && st.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// canCreateOnDevShm reports whether the backing filesystem has room for a
// new segment of the given size.
func canCreateOnDevShm(size uint64, dir string) bool {
	stat, err := disk.Usage(dir)
	if err != nil {
		// Can't measure; let the write fail instead of guessing.
		return true
	}
	return stat.Free >= size
}

// MapRegion maps the named segment backed by a file under /dev/shm.
func MapRegion(opts MapOptions) (*MappedRegion, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d", opts.Size)
	}
	dir := shmDir()
	path := filepath.Join(dir, opts.Name)

	flags := unix.O_RDWR
	if opts.Create {
		if !canCreateOnDevShm(uint64(opts.Size), dir) {
			return nil, fmt.Errorf("%w: path %s, size %d", ErrNoSpace, path, opts.Size)
		}
		flags |= unix.O_CREAT
	}
	fd, err := unix.Open(path, flags, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	if opts.Create {
		if err := unix.Ftruncate(fd, int64(opts.Size)); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("shm: truncate %s: %w", path, err)
		}
	}
	mem, err := unix.Mmap(fd, 0, opts.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	if opts.Create {
		for i := range mem {
			mem[i] = 0
		}
	}
	return &MappedRegion{
		Bytes:     mem,
		name:      path,
		created:   opts.Create,
		sysHandle: sysHandle{fd: fd},
	}, nil
}

// Close unmaps the view and releases the descriptor. The creator also
// removes the backing file.
func (r *MappedRegion) Close() error {
	if r == nil || r.Bytes == nil {
		return nil
	}
	err := unix.Munmap(r.Bytes)
	r.Bytes = nil
	if cerr := unix.Close(r.fd); err == nil {
		err = cerr
	}
	if r.created {
		if rerr := os.Remove(r.name); err == nil && !os.IsNotExist(rerr) {
			err = rerr
		}
	}
	return err
}
