package surfaceless

import (
	"errors"

	"github.com/richinsley/glplatform/binding"
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/kms"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/slbuf"
)

// Display owns the native stack, the scanout driver and the binding
// record shared by every context and window created on it.
type Display struct {
	native Native
	funcs  slbuf.Funcs
	mode   present.Mode
	slots  int
	vsync  bool
	width  int
	height int

	dev      kms.Device
	drv      *kms.Driver
	strategy present.Strategy

	tracker binding.Tracker[*Context, *Window]
	windows []*Window

	current    *Context
	currentWin *Window
	userFB     bool
}

var _ platform.Display = (*Display)(nil)

// NewDisplay wraps an opened native stack.
func NewDisplay(n Native, opts *options.Options) *Display {
	return &Display{
		native: n,
		funcs:  slbuf.Funcs{Alloc: n.Allocator(), GL: n.GL()},
		mode:   opts.Present,
		slots:  opts.Slots,
		vsync:  opts.WaitVSync,
		width:  opts.Width,
		height: opts.Height,
	}
}

// Only GLES2 is loadable through the surfaceless EGL path.
func (d *Display) SupportsContextAPI(api core.ContextAPI) bool {
	return api == core.ContextOpenGLES2
}

func (d *Display) Native() any { return d.native }

// Mode is the presentation mode windows on this display use.
func (d *Display) Mode() present.Mode { return d.mode }

// Driver returns the scanout driver, or nil before the first present.
func (d *Display) Driver() *kms.Driver { return d.drv }

func (d *Display) ChooseConfig(attrs core.ConfigAttrs) (platform.Config, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	attrs.Normalize()
	switch {
	case attrs.Samples > 0, attrs.SampleBuffers:
		return nil, core.Errorf(core.UnsupportedOnPlatform, "multisampling is not supported")
	case attrs.ContextAPI != core.ContextOpenGLES2:
		return nil, core.Errorf(core.UnsupportedOnPlatform, "context api %s is not supported", attrs.ContextAPI)
	case attrs.StencilSize > 8:
		return nil, core.Errorf(core.UnsupportedOnPlatform, "stencil size %d is too large", attrs.StencilSize)
	case attrs.DepthSize > 32:
		return nil, core.Errorf(core.UnsupportedOnPlatform, "depth size %d is too large", attrs.DepthSize)
	case attrs.StencilSize > 0 && attrs.DepthSize > 24:
		return nil, core.Errorf(core.UnsupportedOnPlatform, "depth %d with stencil is not supported", attrs.DepthSize)
	}

	p := slbuf.Param{
		AlphaSize: attrs.AlphaSize,
		RedSize:   attrs.RedSize,
		GreenSize: attrs.GreenSize,
		BlueSize:  attrs.BlueSize,
		Depth:     attrs.DepthSize > 0,
		Stencil:   attrs.StencilSize > 0,
		GBMFlags:  d.mode.FormatFlags(),
	}
	if err := slbuf.ChooseFormat(&p, d.funcs.Alloc, false); err != nil {
		return nil, err
	}
	p.GBMFlags = d.mode.UsageFlags()
	if p.Depth || p.Stencil {
		p.DepthStencilFormat = slbuf.ChooseDepthStencil(attrs.DepthSize, attrs.StencilSize)
	}
	return &Config{dpy: d, attrs: attrs, param: p}, nil
}

// Size reports the display mode when a connector can be driven, otherwise
// the configured window size. ok is false when neither is known.
func (d *Display) Size() (width, height int, ok bool) {
	if d.mode.NeedsDisplay() {
		if drv, err := d.driver(); err == nil {
			if w, h, err := drv.Resolution(); err == nil {
				return int(w), int(h), true
			}
		}
	}
	if d.width > 0 && d.height > 0 {
		return d.width, d.height, true
	}
	return 0, 0, false
}

// driver opens the scanout device on first use.
func (d *Display) driver() (*kms.Driver, error) {
	if d.drv != nil {
		return d.drv, nil
	}
	dev, err := d.native.Display()
	if err != nil {
		return nil, core.Wrap(core.UnsupportedOnPlatform, err, "no display")
	}
	drv := kms.NewDriver(dev)
	if err := drv.Init(); err != nil {
		dev.Close()
		return nil, core.Wrap(core.UnsupportedOnPlatform, err, "no display")
	}
	d.dev, d.drv = dev, drv
	return drv, nil
}

func (d *Display) presenter() (present.Strategy, error) {
	if d.strategy != nil {
		return d.strategy, nil
	}
	deps := present.Deps{
		Alloc:  d.funcs.Alloc,
		Memory: d.native.Tiling(),
		GLCopy: d.copyGL,
	}
	if d.mode.NeedsDisplay() {
		drv, err := d.driver()
		if err != nil {
			return nil, err
		}
		deps.Driver = drv
	}
	s, err := present.New(d.mode, deps)
	if err != nil {
		return nil, err
	}
	d.strategy = s
	return s, nil
}

func (d *Display) copyGL(dst, src *slbuf.Buffer) error {
	if d.current == nil {
		return core.Errorf(core.UnknownError, "copy needs a current context")
	}
	return slbuf.CopyGL(d.current, dst, src)
}

// teardown drops the scanout state once nothing is bound any more.
func (d *Display) teardown() error {
	if !d.tracker.Empty() {
		return nil
	}
	var firstErr error
	if d.strategy != nil {
		if err := d.strategy.Close(); err != nil {
			firstErr = err
		}
		d.strategy = nil
	}
	if d.drv != nil {
		if err := d.drv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.drv = nil
	}
	if d.dev != nil {
		if err := d.dev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.dev = nil
		core.Logger().Debug("surfaceless: scanout released")
	}
	return firstErr
}

// MakeCurrent binds ctx and win. Binding a pair for the first time sizes
// the viewport to the window. If the window's draw buffer cannot be
// prepared the previous binding is restored.
func (d *Display) MakeCurrent(ctx *Context, win *Window) error {
	if win != nil && ctx == nil {
		return core.Errorf(core.BadParameter, "window given without a context")
	}
	if err := d.native.MakeCurrent(nativeOf(ctx)); err != nil {
		return core.Wrap(core.UnknownError, err, "eglMakeCurrent")
	}
	if win != nil {
		if err := win.acquire(ctx, true); err != nil {
			if rerr := d.native.MakeCurrent(nativeOf(d.current)); rerr != nil {
				core.Logger().Warn("surfaceless: restore current context", "err", rerr)
			}
			return err
		}
	}
	d.current, d.currentWin = ctx, win
	d.userFB = false
	if win == nil {
		return nil
	}
	if d.tracker.Record(ctx, win) {
		d.funcs.GL.Viewport(0, 0, int32(win.width), int32(win.height))
	}
	return nil
}

func nativeOf(ctx *Context) NativeContext {
	if ctx == nil {
		return nil
	}
	return ctx.native
}

// BindFramebuffer binds fb on the current context. Framebuffer 0 names the
// current window's draw buffer.
func (d *Display) BindFramebuffer(fb uint32) error {
	if fb != 0 {
		d.userFB = true
		d.funcs.GL.BindFramebuffer(fb)
		return nil
	}
	d.userFB = false
	if d.currentWin == nil {
		d.funcs.GL.BindFramebuffer(0)
		return nil
	}
	return d.currentWin.prepareDrawBuffer()
}

// AttachAllowed reports whether attachments may be changed on the bound
// framebuffer. The window's own framebuffer is not the caller's to modify.
func (d *Display) AttachAllowed() bool {
	if !d.userFB && d.currentWin != nil {
		core.Logger().Warn("surfaceless: attachment to framebuffer 0 ignored")
		return false
	}
	return true
}

func (d *Display) removeWindow(w *Window) {
	for i, x := range d.windows {
		if x == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			return
		}
	}
}

// Disconnect releases the scanout state and the native stack. Contexts and
// windows should be destroyed first.
func (d *Display) Disconnect() error {
	if len(d.windows) > 0 || !d.tracker.Empty() {
		core.Logger().Warn("surfaceless: disconnect with live objects", "windows", len(d.windows), "bindings", d.tracker.Len())
	}
	for _, w := range append([]*Window(nil), d.windows...) {
		if err := w.Destroy(); err != nil {
			core.Logger().Warn("surfaceless: destroy window", "err", err)
		}
	}
	d.tracker = binding.Tracker[*Context, *Window]{}
	err := d.teardown()
	if cerr := d.native.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// retryExhausted calls get, and once more after draining the pending flip
// when every slot was busy.
func (d *Display) retryExhausted(get func() (*slbuf.Buffer, error)) (*slbuf.Buffer, error) {
	b, err := get()
	if errors.Is(err, slbuf.ErrExhausted) && d.drv != nil && d.drv.Pending() != nil {
		if werr := d.drv.WaitPending(); werr != nil {
			return nil, werr
		}
		b, err = get()
	}
	if errors.Is(err, slbuf.ErrExhausted) {
		return nil, core.Wrap(core.UnknownError, err, "get buffer")
	}
	return b, err
}
