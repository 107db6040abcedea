package present

import (
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/tiling"
)

// Strategy consumes a rendered, locked buffer. Every strategy releases
// the buffer's lock, either before returning or once it leaves the screen.
type Strategy interface {
	Present(b *slbuf.Buffer) error
	Close() error
}

// Flipper is the display driver a strategy scans out through.
type Flipper interface {
	Flip(b *slbuf.Buffer) error
	Resolution() (width, height uint32, err error)
	OnScreen() *slbuf.Buffer
	WaitPending() error
	Forget(b *slbuf.Buffer) error
}

// CopyFunc copies the pixels of src into dst.
type CopyFunc func(dst, src *slbuf.Buffer) error

// Deps are the collaborators New wires into a strategy.
type Deps struct {
	Driver Flipper
	Alloc  slbuf.Allocator
	// Memory enables the tiled copy. When nil, GLCopy is used.
	Memory tiling.Memory
	GLCopy CopyFunc
}

// New returns the strategy for mode. Legacy presents like None; callers
// skip locking for it.
func New(mode Mode, deps Deps) (Strategy, error) {
	switch mode {
	case None, Legacy:
		return NewNone(), nil
	case Flip:
		if deps.Driver == nil {
			return nil, core.Errorf(core.UnsupportedOnPlatform, "flip presentation needs a display")
		}
		return NewFlip(deps.Driver), nil
	case Copy:
		if deps.Driver == nil || deps.Alloc == nil {
			return nil, core.Errorf(core.UnsupportedOnPlatform, "copy presentation needs a display")
		}
		copier := deps.GLCopy
		if deps.Memory != nil {
			mem := deps.Memory
			copier = func(dst, src *slbuf.Buffer) error {
				return tiling.Copy(mem, dst.BO(), src.BO())
			}
		}
		if copier == nil {
			return nil, core.Errorf(core.UnsupportedOnPlatform, "copy presentation needs a copy path")
		}
		return NewCopy(deps.Driver, deps.Alloc, copier), nil
	}
	return nil, core.Errorf(core.BadParameter, "unknown presentation mode %d", int(mode))
}

type noDisplay struct{}

// NewNone returns the render-only strategy.
func NewNone() Strategy { return noDisplay{} }

func (noDisplay) Present(b *slbuf.Buffer) error {
	b.Release()
	return nil
}

func (noDisplay) Close() error { return nil }

type flip struct {
	drv Flipper
}

// NewFlip returns the zero-copy strategy. The driver releases each buffer
// when the next flip completes.
func NewFlip(drv Flipper) Strategy { return &flip{drv: drv} }

func (f *flip) Present(b *slbuf.Buffer) error {
	if err := f.drv.Flip(b); err != nil {
		b.Release()
		return err
	}
	return nil
}

func (f *flip) Close() error { return nil }

type copyFlip struct {
	drv   Flipper
	alloc slbuf.Allocator
	copy  CopyFunc

	front, back *slbuf.Buffer
}

// NewCopy returns the copy-then-flip strategy. Its scanout pair is
// allocated on the first Present at the display's resolution.
func NewCopy(drv Flipper, alloc slbuf.Allocator, copier CopyFunc) Strategy {
	return &copyFlip{drv: drv, alloc: alloc, copy: copier}
}

func (c *copyFlip) allocate(format uint32) error {
	w, h, err := c.drv.Resolution()
	if err != nil {
		return err
	}
	var pair [2]*slbuf.Buffer
	for i := range pair {
		bo, err := c.alloc.CreateBO(w, h, format, slbuf.UseScanout|slbuf.UseRendering)
		if err != nil {
			for _, b := range pair[:i] {
				b.BO().Destroy()
			}
			return core.Wrap(core.BadAlloc, err, "create scanout buffer")
		}
		pair[i] = slbuf.Wrap(bo, nil)
	}
	c.front, c.back = pair[0], pair[1]
	core.Logger().Debug("present: scanout pair allocated", "width", w, "height", h)
	return nil
}

func (c *copyFlip) Present(b *slbuf.Buffer) error {
	defer b.Release()

	if c.back == nil {
		if err := c.allocate(b.GBMFormat()); err != nil {
			return err
		}
	}
	// The back buffer may still be on screen while its successor is
	// pending; wait so the copy does not tear.
	if c.drv.OnScreen() == c.back {
		if err := c.drv.WaitPending(); err != nil {
			return err
		}
	}
	if err := c.copy(c.back, b); err != nil {
		return err
	}
	c.back.Lock()
	if err := c.drv.Flip(c.back); err != nil {
		c.back.Release()
		return err
	}
	c.front, c.back = c.back, c.front
	return nil
}

func (c *copyFlip) Close() error {
	var firstErr error
	for _, b := range []*slbuf.Buffer{c.front, c.back} {
		if b == nil {
			continue
		}
		if err := c.drv.Forget(b); err != nil && firstErr == nil {
			firstErr = err
		}
		b.BO().Destroy()
	}
	c.front, c.back = nil, nil
	return firstErr
}
