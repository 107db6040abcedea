//go:build !(linux && cgo)

package gbm

import (
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
)

type Device struct{}

func Open(fd int) (*Device, error) {
	return nil, core.Errorf(core.BuiltWithoutSupport, "gbm needs cgo and linux")
}

func (d *Device) Fd() int                                     { return -1 }
func (d *Device) Ptr() unsafe.Pointer                         { return nil }
func (d *Device) IsFormatSupported(format, flags uint32) bool { return false }
func (d *Device) Close() error                                { return nil }

func (d *Device) CreateBO(width, height, format, flags uint32) (slbuf.BufferObject, error) {
	return nil, core.ErrBuiltWithout
}

func (d *Device) CreateSurface(width, height, format, flags uint32) (*Surface, error) {
	return nil, core.ErrBuiltWithout
}

type Surface struct{}

func (s *Surface) Ptr() unsafe.Pointer { return nil }
func (s *Surface) ReleaseBuffer(bo slbuf.BufferObject) {}
func (s *Surface) HasFreeBuffers() bool { return false }
func (s *Surface) Destroy()                            {}
