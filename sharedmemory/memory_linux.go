//go:build linux

package sharedmemory

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/richinsley/glplatform/core"
)

// shm_open on Linux is a file under this tmpfs.
const shmDir = "/dev/shm/"

func shmPath(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", core.Errorf(core.BadParameter, "bad shared memory name %q", name)
	}
	return shmDir + name, nil
}

// Create makes a region of size bytes, replacing a stale one of the same
// name.
func Create(name string, size int) (*Memory, error) {
	if size <= 0 {
		return nil, core.Errorf(core.BadParameter, "shared memory size %d", size)
	}
	path, err := shmPath(name)
	if err != nil {
		return nil, err
	}
	_ = unix.Unlink(path)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0o660)
	if err != nil {
		return nil, fmt.Errorf("create shared memory %s: %w", name, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		unix.Unlink(path)
		return nil, fmt.Errorf("size shared memory %s: %w", name, err)
	}
	m, err := mapFd(fd, name, size)
	if err != nil {
		unix.Unlink(path)
		return nil, err
	}
	m.owner = true
	return m, nil
}

// Open maps an existing region. It never unlinks it.
func Open(name string, size int) (*Memory, error) {
	path, err := shmPath(name)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open shared memory %s: %w", name, err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat shared memory %s: %w", name, err)
	}
	if st.Size < int64(size) {
		unix.Close(fd)
		return nil, core.Errorf(core.BadParameter, "shared memory %s is %d bytes, want %d", name, st.Size, size)
	}
	return mapFd(fd, name, size)
}

// mapFd maps fd and closes it; the mapping keeps the object alive.
func mapFd(fd int, name string, size int) (*Memory, error) {
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	unix.Close(fd)
	if err != nil {
		return nil, fmt.Errorf("map shared memory %s: %w", name, err)
	}
	core.Logger().Debug("sharedmemory: mapped", "name", name, "size", size)
	return &Memory{name: name, data: data, unmap: unix.Munmap}, nil
}

func unlink(name string) error {
	path, err := shmPath(name)
	if err != nil {
		return err
	}
	if err := unix.Unlink(path); err != nil {
		return fmt.Errorf("unlink shared memory %s: %w", name, err)
	}
	return nil
}
