//go:build linux

package ioctl

import (
	"golang.org/x/sys/unix"
)

// Do issues request cmd on fd with arg pointing at the request struct.
// Interrupted calls are restarted, as libdrm does.
func Do(fd, cmd, arg uintptr) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, arg)
		switch errno {
		case 0:
			return nil
		case unix.EINTR, unix.EAGAIN:
			continue
		}
		return errno
	}
}
