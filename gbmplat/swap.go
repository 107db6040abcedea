// Package gbmplat renders into EGL window surfaces on GBM and scans the
// locked front buffers out on a DRM display.
package gbmplat

import (
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/slbuf"
)

// FrontBuffers is a GBM surface as seen from the swap path.
type FrontBuffers interface {
	slbuf.Surface
	LockFrontBuffer() (slbuf.BufferObject, error)
	HasFreeBuffers() bool
}

// Scanout is the display driver state the swap path waits on.
type Scanout interface {
	present.Flipper
	Pending() *slbuf.Buffer
}

type swapChain struct {
	mode present.Mode
	surf FrontBuffers
	gl   slbuf.GL
}

// beforeSwap waits for the pending flip when the surface has no buffer
// left for EGL to render the next frame into.
func (c *swapChain) beforeSwap(drv Scanout) error {
	if drv == nil || c.surf.HasFreeBuffers() || drv.Pending() == nil {
		return nil
	}
	return drv.WaitPending()
}

// afterSwap locks the buffer eglSwapBuffers just produced and hands it to
// s. Legacy mode leaves the surface alone.
func (c *swapChain) afterSwap(s present.Strategy) error {
	if !c.mode.LocksBuffers() {
		return nil
	}
	bo, err := c.surf.LockFrontBuffer()
	if err != nil {
		return core.Wrap(core.UnknownError, err, "gbm_surface_lock_front_buffer")
	}
	b := slbuf.Wrap(bo, c.surf)
	b.SetGL(c.gl, 0)
	b.Lock()
	return s.Present(b)
}

// detach makes drv drop any buffer of this surface before the surface is
// destroyed.
func (c *swapChain) detach(drv Scanout) error {
	if drv == nil {
		return nil
	}
	var firstErr error
	for _, b := range []*slbuf.Buffer{drv.Pending(), drv.OnScreen()} {
		if b == nil || b.Surface() != c.surf {
			continue
		}
		if err := drv.Forget(b); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
