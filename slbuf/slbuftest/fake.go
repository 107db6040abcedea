// Package slbuftest provides in-memory buffer objects, allocators and GL
// tables for testing code built on slbuf.
package slbuftest

import (
	"errors"
	"fmt"

	"github.com/richinsley/glplatform/slbuf"
)

// BO is an in-memory buffer object.
type BO struct {
	W, H, Pitch, Fourcc, GEMHandle uint32

	Destroyed bool

	data    any
	destroy func(any)
}

func NewBO(w, h, format uint32) *BO {
	return &BO{W: w, H: h, Pitch: w * 4, Fourcc: format, GEMHandle: nextHandle()}
}

var handles uint32

func nextHandle() uint32 {
	handles++
	return handles
}

func (b *BO) Width() uint32  { return b.W }
func (b *BO) Height() uint32 { return b.H }
func (b *BO) Stride() uint32 { return b.Pitch }
func (b *BO) Format() uint32 { return b.Fourcc }
func (b *BO) Handle() uint32 { return b.GEMHandle }
func (b *BO) UserData() any  { return b.data }

func (b *BO) SetUserData(data any, destroy func(any)) {
	b.data = data
	b.destroy = destroy
}

func (b *BO) Destroy() {
	if b.Destroyed {
		return
	}
	b.Destroyed = true
	if b.destroy != nil {
		b.destroy(b.data)
	}
}

// Allocator hands out BOs and records them.
type Allocator struct {
	Supported map[uint32]bool // nil means every format
	Fail      bool
	Created   []*BO
	LastFlags uint32
}

func (a *Allocator) IsFormatSupported(format, flags uint32) bool {
	return a.Supported == nil || a.Supported[format]
}

func (a *Allocator) CreateBO(w, h, format, flags uint32) (slbuf.BufferObject, error) {
	if a.Fail {
		return nil, errors.New("out of memory")
	}
	bo := NewBO(w, h, format)
	a.Created = append(a.Created, bo)
	a.LastFlags = flags
	return bo, nil
}

// Surface records buffer releases.
type Surface struct {
	Released []slbuf.BufferObject
}

func (s *Surface) ReleaseBuffer(bo slbuf.BufferObject) {
	s.Released = append(s.Released, bo)
}

// Registrar fakes kernel framebuffer registration.
type Registrar struct {
	Fail    bool
	Added   int
	Removed []uint32
	next    uint32
}

func (r *Registrar) AddFramebuffer(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	r.Added++
	if r.Fail {
		return 0, errors.New("invalid argument")
	}
	r.next++
	return 100 + r.next, nil
}

func (r *Registrar) RemoveFramebuffer(id uint32) error {
	r.Removed = append(r.Removed, id)
	return nil
}

// GL records the calls made through the GL function table.
type GL struct {
	Calls    []string
	FailFB   bool
	next     uint32
	Bound    uint32
	Finishes int
}

func (g *GL) logf(format string, args ...any) {
	g.Calls = append(g.Calls, fmt.Sprintf(format, args...))
}

func (g *GL) CreateImage(bo slbuf.BufferObject) (slbuf.Image, error) {
	g.logf("image %d", bo.Handle())
	return slbuf.Image(bo.Handle()), nil
}

func (g *GL) DestroyImage(img slbuf.Image) { g.logf("destroy image %d", img) }

func (g *GL) CreateFramebuffer(img slbuf.Image, w, h, ds uint32) (slbuf.Framebuffer, error) {
	if g.FailFB {
		return slbuf.Framebuffer{}, errors.New("framebuffer incomplete")
	}
	g.next++
	g.logf("fb %d", g.next)
	return slbuf.Framebuffer{FBO: g.next, Color: g.next}, nil
}

func (g *GL) DeleteFramebuffer(fb slbuf.Framebuffer) { g.logf("delete fb %d", fb.FBO) }
func (g *GL) BindFramebuffer(fbo uint32)             { g.Bound = fbo }

func (g *GL) Blit(dst, src slbuf.Framebuffer, w, h uint32) {
	g.logf("blit %d->%d %dx%d", src.FBO, dst.FBO, w, h)
}

func (g *GL) Viewport(x, y, w, h int32) { g.logf("viewport %dx%d", w, h) }
func (g *GL) Finish()                   { g.Finishes++ }
func (g *GL) Flush()                    {}
