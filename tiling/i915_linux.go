//go:build linux

package tiling

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/richinsley/glplatform/internal/ioctl"
)

type sysGetTiling struct {
	handle          uint32
	tilingMode      uint32
	swizzleMode     uint32
	physSwizzleMode uint32
}

type sysPread struct {
	handle  uint32
	pad     uint32
	offset  uint64
	size    uint64
	dataPtr uint64
}

var (
	ioctlGetTiling = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysGetTiling{})), ioctl.DRMBase, ioctl.DRMCommandBase+0x22)
	ioctlPread     = ioctl.NewCode(ioctl.Write, uint32(unsafe.Sizeof(sysPread{})), ioctl.DRMBase, ioctl.DRMCommandBase+0x1c)
	ioctlPwrite    = ioctl.NewCode(ioctl.Write, uint32(unsafe.Sizeof(sysPread{})), ioctl.DRMBase, ioctl.DRMCommandBase+0x1d)
)

// I915 issues i915 GEM ioctls on a DRM device descriptor it does not own.
type I915 struct {
	fd int
}

func OpenI915(fd int) *I915 { return &I915{fd: fd} }

func (m *I915) Tiling(handle uint32) (Mode, error) {
	t := sysGetTiling{handle: handle}
	if err := ioctl.Do(uintptr(m.fd), uintptr(ioctlGetTiling), uintptr(unsafe.Pointer(&t))); err != nil {
		return 0, fmt.Errorf("get tiling of %d: %w", handle, err)
	}
	return Mode(t.tilingMode), nil
}

func (m *I915) rw(cmd uint32, handle uint32, offset uint64, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	r := sysPread{
		handle:  handle,
		offset:  offset,
		size:    uint64(len(p)),
		dataPtr: uint64(uintptr(unsafe.Pointer(&p[0]))),
	}
	err := ioctl.Do(uintptr(m.fd), uintptr(cmd), uintptr(unsafe.Pointer(&r)))
	runtime.KeepAlive(p)
	return err
}

func (m *I915) Pread(handle uint32, offset uint64, p []byte) error {
	if err := m.rw(ioctlPread, handle, offset, p); err != nil {
		return fmt.Errorf("pread %d at %d: %w", handle, offset, err)
	}
	return nil
}

func (m *I915) Pwrite(handle uint32, offset uint64, p []byte) error {
	if err := m.rw(ioctlPwrite, handle, offset, p); err != nil {
		return fmt.Errorf("pwrite %d at %d: %w", handle, offset, err)
	}
	return nil
}
