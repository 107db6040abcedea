//go:build linux && cgo

package gbm

/*
#cgo LDFLAGS: -lgbm
#include <stdint.h>
#include <gbm.h>

extern void goBODestroy(struct gbm_bo *bo, void *data);

static void set_bo_handle(struct gbm_bo *bo, uintptr_t h) {
    gbm_bo_set_user_data(bo, (void *)h, goBODestroy);
}

static uintptr_t get_bo_handle(struct gbm_bo *bo) {
    return (uintptr_t)gbm_bo_get_user_data(bo);
}

static uint32_t bo_gem_handle(struct gbm_bo *bo) {
    return gbm_bo_get_handle(bo).u32;
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
)

type Device struct {
	dev *C.struct_gbm_device
	fd  int
}

// Open creates a GBM device on an open DRM fd. The fd stays owned by the
// caller and must outlive the device.
func Open(fd int) (*Device, error) {
	dev := C.gbm_create_device(C.int(fd))
	if dev == nil {
		return nil, core.Errorf(core.UnknownError, "gbm_create_device failed on fd %d", fd)
	}
	core.Logger().Debug("gbm: device created", "fd", fd, "backend", C.GoString(C.gbm_device_get_backend_name(dev)))
	return &Device{dev: dev, fd: fd}, nil
}

func (d *Device) Fd() int { return d.fd }

// Ptr is the gbm_device pointer, the native display for EGL.
func (d *Device) Ptr() unsafe.Pointer { return unsafe.Pointer(d.dev) }

func (d *Device) IsFormatSupported(format, flags uint32) bool {
	return C.gbm_device_is_format_supported(d.dev, C.uint32_t(format), C.uint32_t(flags)) != 0
}

func (d *Device) CreateBO(width, height, format, flags uint32) (slbuf.BufferObject, error) {
	bo := C.gbm_bo_create(d.dev, C.uint32_t(width), C.uint32_t(height), C.uint32_t(format), C.uint32_t(flags))
	if bo == nil {
		return nil, fmt.Errorf("gbm_bo_create %dx%d format %#x: failed", width, height, format)
	}
	return attach(bo, true), nil
}

func (d *Device) CreateSurface(width, height, format, flags uint32) (*Surface, error) {
	s := C.gbm_surface_create(d.dev, C.uint32_t(width), C.uint32_t(height), C.uint32_t(format), C.uint32_t(flags))
	if s == nil {
		return nil, core.Errorf(core.BadAlloc, "gbm_surface_create %dx%d format %#x failed", width, height, format)
	}
	return &Surface{s: s}, nil
}

func (d *Device) Close() error {
	if d.dev != nil {
		C.gbm_device_destroy(d.dev)
		d.dev = nil
	}
	return nil
}

// BO is a buffer object. The same gbm_bo always maps to the same *BO.
type BO struct {
	bo    *C.struct_gbm_bo
	owned bool

	data    any
	destroy func(any)
	gone    bool
}

// attach returns the *BO registered on bo, registering a new one first if
// needed. The registration is dropped when GBM destroys bo.
func attach(bo *C.struct_gbm_bo, owned bool) *BO {
	if h := C.get_bo_handle(bo); h != 0 {
		if b, ok := cgo.Handle(h).Value().(*BO); ok {
			return b
		}
	}
	b := &BO{bo: bo, owned: owned}
	C.set_bo_handle(bo, C.uintptr_t(cgo.NewHandle(b)))
	return b
}

func (b *BO) released() {
	b.gone = true
	if b.destroy != nil {
		b.destroy(b.data)
	}
	b.data, b.destroy = nil, nil
}

func (b *BO) Width() uint32  { return uint32(C.gbm_bo_get_width(b.bo)) }
func (b *BO) Height() uint32 { return uint32(C.gbm_bo_get_height(b.bo)) }
func (b *BO) Stride() uint32 { return uint32(C.gbm_bo_get_stride(b.bo)) }
func (b *BO) Format() uint32 { return uint32(C.gbm_bo_get_format(b.bo)) }
func (b *BO) Handle() uint32 { return uint32(C.bo_gem_handle(b.bo)) }
func (b *BO) UserData() any  { return b.data }

// Ptr is the gbm_bo pointer, used as an EGL native pixmap.
func (b *BO) Ptr() unsafe.Pointer { return unsafe.Pointer(b.bo) }

// SetUserData attaches data; destroy runs with it when GBM frees the bo.
func (b *BO) SetUserData(data any, destroy func(any)) {
	b.data = data
	b.destroy = destroy
}

// Destroy frees a bo created with CreateBO. Surface bos belong to their
// surface and are left alone.
func (b *BO) Destroy() {
	if !b.owned || b.gone {
		return
	}
	C.gbm_bo_destroy(b.bo)
}

type Surface struct {
	s *C.struct_gbm_surface
}

// Ptr is the gbm_surface pointer, the native window for EGL.
func (s *Surface) Ptr() unsafe.Pointer { return unsafe.Pointer(s.s) }

// LockFrontBuffer locks the buffer EGL just finished rendering. Call it
// once after each eglSwapBuffers.
func (s *Surface) LockFrontBuffer() (*BO, error) {
	bo := C.gbm_surface_lock_front_buffer(s.s)
	if bo == nil {
		return nil, core.Errorf(core.UnknownError, "gbm_surface_lock_front_buffer failed")
	}
	return attach(bo, false), nil
}

// ReleaseBuffer returns a locked buffer to the surface.
func (s *Surface) ReleaseBuffer(bo slbuf.BufferObject) {
	b, ok := bo.(*BO)
	if !ok || b.gone {
		return
	}
	C.gbm_surface_release_buffer(s.s, b.bo)
}

func (s *Surface) HasFreeBuffers() bool {
	return C.gbm_surface_has_free_buffers(s.s) != 0
}

func (s *Surface) Destroy() {
	if s.s != nil {
		C.gbm_surface_destroy(s.s)
		s.s = nil
	}
}
