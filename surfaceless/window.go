package surfaceless

import (
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/slbuf"
)

// Window is a set of buffers drawn in turn and handed to the display's
// presentation strategy on swap.
type Window struct {
	dpy    *Display
	cfg    *Config
	width  int
	height int
	param  slbuf.Param
	slots  []*slbuf.Buffer
	draw   *slbuf.Buffer
}

var _ platform.Window = (*Window)(nil)

func (w *Window) Size() (width, height int) { return w.width, w.height }

// Show is a no-op; presentation starts with the first swap.
func (w *Window) Show() error { return nil }

// DrawBuffer is the buffer currently rendered into, or nil.
func (w *Window) DrawBuffer() *slbuf.Buffer { return w.draw }

// prepareDrawBuffer makes sure the window holds a draw buffer and binds it
// on the current context, unless a user framebuffer is bound.
func (w *Window) prepareDrawBuffer() error {
	return w.acquire(w.dpy.current, !w.dpy.userFB)
}

// acquire takes a draw buffer from the slots if the window has none and
// binds it on ctx when bind is set. It does nothing without a context.
func (w *Window) acquire(ctx *Context, bind bool) error {
	if ctx == nil {
		return nil
	}
	if w.draw == nil {
		b, err := w.dpy.retryExhausted(func() (*slbuf.Buffer, error) {
			return slbuf.GetBuffer(w.slots, &w.param, &w.dpy.funcs)
		})
		if err != nil {
			return err
		}
		w.draw = b
	}
	if !bind {
		return nil
	}
	return w.draw.BindFramebuffer(ctx)
}

// SwapBuffers presents the draw buffer and prepares the next one.
func (w *Window) SwapBuffers() error {
	d := w.dpy
	if w.draw == nil {
		if err := w.prepareDrawBuffer(); err != nil {
			return err
		}
		if w.draw == nil {
			return core.Errorf(core.BadParameter, "swap on a window that was never made current")
		}
	}
	s, err := d.presenter()
	if err != nil {
		return err
	}
	b := w.draw
	w.draw = nil
	if d.mode.NeedsDisplay() {
		b.Finish()
	} else {
		b.Flush()
	}
	err = s.Present(b)
	if err == nil && d.vsync && d.drv != nil {
		err = d.drv.WaitPending()
	}
	if d.currentWin == w {
		if perr := w.prepareDrawBuffer(); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// Destroy stops the driver using the window's buffers, waiting for a
// pending flip, then destroys them.
func (w *Window) Destroy() error {
	d := w.dpy
	var firstErr error
	if d.currentWin == w {
		if err := d.MakeCurrent(d.current, nil); err != nil {
			firstErr = err
		}
		platform.Forget(nil, w)
	}
	for _, b := range w.slots {
		if b == nil {
			continue
		}
		if d.drv != nil {
			if err := d.drv.Forget(b); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if d.current != nil && b.GLOwner() == any(d.current) {
			b.FreeGLResources()
		}
	}
	slbuf.DestroyAll(w.slots)
	w.draw = nil
	d.tracker.Forget(nil, w)
	d.removeWindow(w)
	if err := d.teardown(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
