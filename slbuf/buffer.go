package slbuf

import (
	"fmt"

	"github.com/richinsley/glplatform/core"
)

// BufferObject is a native drawable allocation, typically a gbm_bo.
// Destroy runs the destroy callback registered with SetUserData.
type BufferObject interface {
	Width() uint32
	Height() uint32
	Stride() uint32
	Format() uint32
	Handle() uint32
	UserData() any
	SetUserData(data any, destroy func(data any))
	Destroy()
}

// Surface is the rendering surface a locked buffer object came from.
type Surface interface {
	ReleaseBuffer(bo BufferObject)
}

// Registrar registers buffers with the kernel as scanout framebuffers.
type Registrar interface {
	AddFramebuffer(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error)
	RemoveFramebuffer(id uint32) error
}

// FramebufferState tracks kernel framebuffer registration.
type FramebufferState int

const (
	Unregistered FramebufferState = iota
	Registered
	RegistrationFailed
)

func (s FramebufferState) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registered:
		return "registered"
	case RegistrationFailed:
		return "registration-failed"
	}
	return fmt.Sprintf("FramebufferState(%d)", int(s))
}

// Buffer wraps one buffer object. The wrapper is owned by the buffer
// object: it is attached as user data and freed from the object's destroy
// callback, so a buffer object never has more than one Buffer.
type Buffer struct {
	surface Surface
	bo      BufferObject

	fbState FramebufferState
	fbID    uint32
	reg     Registrar

	gl           GL
	depthStencil uint32
	image        Image
	hasImage     bool
	glOwner      any
	glfb         Framebuffer
	hasGLFB      bool

	busy      bool
	destroyed bool
}

// Wrap returns the Buffer attached to bo, creating and attaching one on
// first use. surface may be nil for standalone allocations.
func Wrap(bo BufferObject, surface Surface) *Buffer {
	if b, ok := bo.UserData().(*Buffer); ok && b != nil {
		return b
	}
	b := &Buffer{surface: surface, bo: bo}
	bo.SetUserData(b, destroyHook)
	return b
}

func destroyHook(data any) {
	if b, ok := data.(*Buffer); ok {
		b.destroy()
	}
}

// destroy deregisters the kernel framebuffer and drops GL-side state. It
// only runs from the buffer object's destroy callback.
func (b *Buffer) destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	if b.fbState == Registered && b.reg != nil {
		if err := b.reg.RemoveFramebuffer(b.fbID); err != nil {
			core.Logger().Warn("slbuf: remove framebuffer", "fb", b.fbID, "err", err)
		}
	}
	b.fbState = Unregistered
	if b.hasImage {
		b.gl.DestroyImage(b.image)
		b.hasImage = false
	}
	b.hasGLFB = false
	b.glOwner = nil
}

func (b *Buffer) BO() BufferObject        { return b.bo }
func (b *Buffer) Surface() Surface        { return b.surface }
func (b *Buffer) Width() uint32           { return b.bo.Width() }
func (b *Buffer) Height() uint32          { return b.bo.Height() }
func (b *Buffer) Destroyed() bool         { return b.destroyed }
func (b *Buffer) Busy() bool              { return b.busy }
func (b *Buffer) State() FramebufferState { return b.fbState }

// GBMFormat queries the buffer object; it is not cached.
func (b *Buffer) GBMFormat() uint32 { return b.bo.Format() }

// DRMFormat is the kernel fourcc for the buffer object's format.
func (b *Buffer) DRMFormat() uint32 { return DRMFormat(b.bo.Format()) }

// Lock marks the buffer as in use: drawn to, pending or on screen.
func (b *Buffer) Lock() { b.busy = true }

// Release returns the buffer to its rendering surface, if it has one, and
// makes it eligible for drawing again.
func (b *Buffer) Release() {
	b.busy = false
	if b.surface != nil {
		b.surface.ReleaseBuffer(b.bo)
	}
}

// Framebuffer returns the kernel framebuffer id for the buffer,
// registering it on first use. A failed registration is remembered and
// never retried.
func (b *Buffer) Framebuffer(reg Registrar, width, height uint32) (uint32, error) {
	switch b.fbState {
	case Registered:
		return b.fbID, nil
	case RegistrationFailed:
		return 0, core.Errorf(core.UnknownError, "framebuffer registration previously failed")
	}

	format := b.DRMFormat()
	if !ScanoutFormat(format) {
		b.fbState = RegistrationFailed
		return 0, core.Errorf(core.UnknownError, "unexpected buffer format %#08x for framebuffer", format)
	}
	id, err := reg.AddFramebuffer(width, height, 24, 32, b.bo.Stride(), b.bo.Handle())
	if err != nil {
		b.fbState = RegistrationFailed
		core.Logger().Warn("slbuf: add framebuffer", "err", err)
		return 0, core.Wrap(core.UnknownError, err, "drmModeAddFB")
	}
	b.reg = reg
	b.fbID = id
	b.fbState = Registered
	core.Logger().Debug("slbuf: framebuffer registered", "fb", id, "handle", b.bo.Handle())
	return id, nil
}
