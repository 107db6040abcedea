package surfaceless

import (
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/kms"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/tiling"
)

// NativeContext is a driver context handle, such as an EGLContext.
type NativeContext any

// Native is the driver stack a display renders through: a buffer
// allocator, EGL and GL entry points, and optionally a scanout device.
type Native interface {
	Allocator() slbuf.Allocator
	GL() slbuf.GL
	CreateContext(attrs core.ConfigAttrs, share NativeContext) (NativeContext, error)
	DestroyContext(c NativeContext) error
	// MakeCurrent binds c with no draw surface; nil releases the thread.
	MakeCurrent(c NativeContext) error
	GetProcAddress(name string) unsafe.Pointer
	// Display returns the scanout device, failing when the node cannot
	// drive an output.
	Display() (kms.Device, error)
	// Tiling is nil when the device has no tiled copy path.
	Tiling() tiling.Memory
	Close() error
}

// Opener connects to the native stack named by opts.
type Opener func(opts *options.Options) (Native, error)
