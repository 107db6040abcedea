//go:build linux && cgo

// Package gles implements the buffer GL function table on top of EGL
// images and GL renderbuffers.
package gles

import (
	"fmt"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/egl"
	"github.com/richinsley/glplatform/slbuf"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the GL entry points. A context must be current.
func Init() error {
	initOnce.Do(func() {
		if err := gl.Init(); err != nil {
			initErr = core.Wrap(core.UnknownError, err, "initialize GL")
			return
		}
		core.Logger().Debug("gles: entry points loaded", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	})
	return initErr
}

type pixmap interface {
	Ptr() unsafe.Pointer
}

// GL renders into buffer objects through EGL images on dpy.
type GL struct {
	dpy *egl.Display
}

var _ slbuf.GL = (*GL)(nil)

func New(dpy *egl.Display) *GL { return &GL{dpy: dpy} }

func (g *GL) CreateImage(bo slbuf.BufferObject) (slbuf.Image, error) {
	p, ok := bo.(pixmap)
	if !ok {
		return 0, core.Errorf(core.InternalError, "buffer object %T has no native pixmap", bo)
	}
	img, err := g.dpy.CreateImage(p.Ptr())
	if err != nil {
		return 0, err
	}
	return slbuf.Image(img), nil
}

func (g *GL) DestroyImage(img slbuf.Image) { g.dpy.DestroyImage(uintptr(img)) }

// CreateFramebuffer builds a framebuffer whose colour attachment is the
// image, with an optional depth/stencil renderbuffer.
func (g *GL) CreateFramebuffer(img slbuf.Image, width, height, depthStencil uint32) (slbuf.Framebuffer, error) {
	var fb slbuf.Framebuffer
	gl.GenFramebuffers(1, &fb.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.FBO)

	gl.GenRenderbuffers(1, &fb.Color)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.Color)
	if err := egl.ImageTargetRenderbufferStorage(uintptr(img)); err != nil {
		g.DeleteFramebuffer(fb)
		return slbuf.Framebuffer{}, err
	}
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, fb.Color)

	if depthStencil != 0 {
		gl.GenRenderbuffers(1, &fb.DepthStencil)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.DepthStencil)
		gl.RenderbufferStorage(gl.RENDERBUFFER, depthStencil, int32(width), int32(height))
		attach := uint32(gl.DEPTH_ATTACHMENT)
		if depthStencil == slbuf.Depth24Stencil8 {
			attach = gl.DEPTH_STENCIL_ATTACHMENT
		}
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attach, gl.RENDERBUFFER, fb.DepthStencil)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		g.DeleteFramebuffer(fb)
		return slbuf.Framebuffer{}, fmt.Errorf("framebuffer incomplete: status %#x", status)
	}
	return fb, nil
}

func (g *GL) DeleteFramebuffer(fb slbuf.Framebuffer) {
	if fb.FBO != 0 {
		gl.DeleteFramebuffers(1, &fb.FBO)
	}
	if fb.Color != 0 {
		gl.DeleteRenderbuffers(1, &fb.Color)
	}
	if fb.DepthStencil != 0 {
		gl.DeleteRenderbuffers(1, &fb.DepthStencil)
	}
}

func (g *GL) BindFramebuffer(fbo uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, fbo) }

// Blit copies the colour of src into dst. It needs GL 3.0 or ES 3.0.
func (g *GL) Blit(dst, src slbuf.Framebuffer, width, height uint32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.FBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst.FBO)
	w, h := int32(width), int32(height)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
}

func (g *GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (g *GL) Finish()                            { gl.Finish() }
func (g *GL) Flush()                             { gl.Flush() }
