package slbuf

import (
	"github.com/richinsley/glplatform/core"
)

// Image is an EGLImage created from a buffer object.
type Image uintptr

// Framebuffer names the GL objects that make a buffer renderable.
type Framebuffer struct {
	FBO          uint32
	Color        uint32
	DepthStencil uint32
}

// GL is the EGL and GL entry points a buffer needs. Implementations act on
// whichever context is current on the calling thread.
type GL interface {
	CreateImage(bo BufferObject) (Image, error)
	DestroyImage(img Image)
	CreateFramebuffer(img Image, width, height, depthStencil uint32) (Framebuffer, error)
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(fbo uint32)
	Blit(dst, src Framebuffer, width, height uint32)
	Viewport(x, y, width, height int32)
	Finish()
	Flush()
}

// CheckGLFramebuffer returns the GL framebuffer object for the buffer in
// the context identified by owner, creating it if needed. GL objects made
// for a previous context are abandoned; that context owns and frees them.
func (b *Buffer) CheckGLFramebuffer(owner any) (uint32, error) {
	if b.gl == nil {
		return 0, core.Errorf(core.InternalError, "buffer has no GL function table")
	}
	if b.hasGLFB && b.glOwner == owner {
		return b.glfb.FBO, nil
	}
	b.hasGLFB = false
	b.glOwner = nil

	if !b.hasImage {
		img, err := b.gl.CreateImage(b.bo)
		if err != nil {
			return 0, core.Wrap(core.UnknownError, err, "create image")
		}
		b.image = img
		b.hasImage = true
	}
	fb, err := b.gl.CreateFramebuffer(b.image, b.bo.Width(), b.bo.Height(), b.depthStencil)
	if err != nil {
		return 0, core.Wrap(core.UnknownError, err, "create framebuffer")
	}
	b.glfb = fb
	b.glOwner = owner
	b.hasGLFB = true
	return fb.FBO, nil
}

// GLOwner returns the context the GL framebuffer belongs to, or nil.
func (b *Buffer) GLOwner() any {
	if !b.hasGLFB {
		return nil
	}
	return b.glOwner
}

// BindFramebuffer makes the buffer the draw target in owner's context.
func (b *Buffer) BindFramebuffer(owner any) error {
	fbo, err := b.CheckGLFramebuffer(owner)
	if err != nil {
		return err
	}
	b.gl.BindFramebuffer(fbo)
	return nil
}

// FreeGLResources deletes the GL framebuffer. The owning context must be
// current.
func (b *Buffer) FreeGLResources() {
	if !b.hasGLFB {
		return
	}
	b.gl.DeleteFramebuffer(b.glfb)
	b.hasGLFB = false
	b.glOwner = nil
}

// ForgetGLResources drops the GL framebuffer without deleting it, for use
// once the owning context has been destroyed.
func (b *Buffer) ForgetGLResources() {
	b.hasGLFB = false
	b.glOwner = nil
}

func (b *Buffer) Finish() {
	if b.gl != nil {
		b.gl.Finish()
	}
}

func (b *Buffer) Flush() {
	if b.gl != nil {
		b.gl.Flush()
	}
}

// SetGL attaches a GL function table to a buffer created outside the pool,
// such as a scanout buffer.
func (b *Buffer) SetGL(gl GL, depthStencil uint32) {
	b.gl = gl
	b.depthStencil = depthStencil
}

// CopyGL blits src into dst through GL. Both buffers get framebuffers in
// owner's context, which must be current.
func CopyGL(owner any, dst, src *Buffer) error {
	if src.gl == nil {
		return core.Errorf(core.InternalError, "buffer has no GL function table")
	}
	if dst.gl == nil {
		dst.gl = src.gl
	}
	if _, err := src.CheckGLFramebuffer(owner); err != nil {
		return err
	}
	if _, err := dst.CheckGLFramebuffer(owner); err != nil {
		return err
	}
	w := min(src.Width(), dst.Width())
	h := min(src.Height(), dst.Height())
	src.gl.Blit(dst.glfb, src.glfb, w, h)
	src.gl.Finish()
	return nil
}
