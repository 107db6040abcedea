//go:build linux && cgo

package gbmplat

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/richinsley/glplatform/binding"
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/egl"
	"github.com/richinsley/glplatform/gbm"
	"github.com/richinsley/glplatform/gles"
	"github.com/richinsley/glplatform/kms"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/tiling"
)

func init() {
	platform.Register(core.PlatformGBM, func(o *options.Options) (platform.Platform, error) {
		return New(o)
	})
}

type Platform struct {
	opts options.Options
}

func New(opts *options.Options) (*Platform, error) {
	o := *opts
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Platform{opts: o}, nil
}

func (p *Platform) Kind() core.PlatformKind { return core.PlatformGBM }

func (p *Platform) Connect(name string) (platform.Display, error) {
	path := p.opts.Device
	if name != "" {
		path = name
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, core.Wrap(core.UnknownError, err, "open %s", path)
	}
	d := &Display{fd: fd, mode: p.opts.Present, vsync: p.opts.WaitVSync}
	if d.dev, err = gbm.Open(fd); err != nil {
		d.Disconnect()
		return nil, err
	}
	if d.dpy, err = egl.GetDisplay(egl.PlatformGBM, d.dev.Ptr()); err != nil {
		d.Disconnect()
		return nil, err
	}
	d.gl = gles.New(d.dpy)
	if drvName, _ := kms.NewDevice(fd).DriverName(); drvName == "i915" {
		d.mem = tiling.OpenI915(fd)
	}
	core.Logger().Info("gbm: connected", "device", path, "present", d.mode.String())
	return d, nil
}

func (p *Platform) MakeCurrent(d platform.Display, w platform.Window, c platform.Context) error {
	dpy, ok := d.(*Display)
	if !ok {
		return core.Errorf(core.BadParameter, "display is not a gbm display")
	}
	var (
		win *Window
		ctx *Context
	)
	if w != nil {
		win = w.(*Window)
	}
	if c != nil {
		ctx = c.(*Context)
	}
	return dpy.makeCurrent(ctx, win)
}

func (p *Platform) GetProcAddress(name string) unsafe.Pointer { return egl.GetProcAddress(name) }
func (p *Platform) Destroy() error                            { return nil }

type Display struct {
	fd    int
	dev   *gbm.Device
	dpy   *egl.Display
	gl    *gles.GL
	mem   tiling.Memory
	mode  present.Mode
	vsync bool

	drv      *kms.Driver
	strategy present.Strategy
	tracker  binding.Tracker[*Context, *Window]
	current  *Context
}

func (d *Display) Native() any { return d.dev }

func (d *Display) SupportsContextAPI(api core.ContextAPI) bool {
	if api == core.ContextOpenGL {
		return core.IsExtensionInString(d.dpy.ClientAPIs(), "OpenGL")
	}
	return core.IsExtensionInString(d.dpy.ClientAPIs(), "OpenGL_ES")
}

func (d *Display) ChooseConfig(attrs core.ConfigAttrs) (platform.Config, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	norm := attrs
	norm.Normalize()
	p := slbuf.Param{
		AlphaSize: norm.AlphaSize,
		RedSize:   norm.RedSize,
		GreenSize: norm.GreenSize,
		BlueSize:  norm.BlueSize,
		GBMFlags:  d.mode.FormatFlags(),
	}
	if err := slbuf.ChooseFormat(&p, d.dev, true); err != nil {
		return nil, err
	}
	p.GBMFlags = d.mode.UsageFlags()
	cfg, err := d.dpy.ChooseConfig(attrs, egl.WindowBit, p.GBMFormat)
	if err != nil {
		return nil, err
	}
	return &Config{dpy: d, cfg: cfg, attrs: attrs, param: p}, nil
}

func (d *Display) presenter() (present.Strategy, error) {
	if d.strategy != nil {
		return d.strategy, nil
	}
	deps := present.Deps{Alloc: d.dev, Memory: d.mem}
	deps.GLCopy = func(dst, src *slbuf.Buffer) error {
		return slbuf.CopyGL(d.current, dst, src)
	}
	if d.mode.NeedsDisplay() {
		drv := kms.NewDriver(kms.NewDevice(d.fd))
		if err := drv.Init(); err != nil {
			return nil, core.Wrap(core.UnsupportedOnPlatform, err, "no display")
		}
		d.drv = drv
		deps.Driver = drv
	}
	s, err := present.New(d.mode, deps)
	if err != nil {
		return nil, err
	}
	d.strategy = s
	return s, nil
}

// scanout returns the driver as the swap path sees it, nil when none runs.
func (d *Display) scanout() Scanout {
	if d.drv == nil {
		return nil
	}
	return d.drv
}

func (d *Display) makeCurrent(ctx *Context, win *Window) error {
	var (
		surf *egl.Surface
		ec   *egl.Context
	)
	if win != nil {
		surf = win.surf
	}
	if ctx != nil {
		ec = ctx.ctx
	}
	if err := d.dpy.MakeCurrent(surf, ec); err != nil {
		return err
	}
	d.current = ctx
	if ctx == nil {
		return nil
	}
	if win != nil {
		d.tracker.Record(ctx, win)
	}
	return gles.Init()
}

func (d *Display) teardown() error {
	if !d.tracker.Empty() {
		return nil
	}
	var firstErr error
	if d.strategy != nil {
		firstErr = d.strategy.Close()
		d.strategy = nil
	}
	if d.drv != nil {
		if err := d.drv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.drv = nil
	}
	return firstErr
}

func (d *Display) Disconnect() error {
	d.tracker = binding.Tracker[*Context, *Window]{}
	err := d.teardown()
	if d.dpy != nil {
		if terr := d.dpy.Terminate(); terr != nil && err == nil {
			err = terr
		}
		d.dpy = nil
	}
	if d.dev != nil {
		d.dev.Close()
		d.dev = nil
	}
	if d.fd >= 0 {
		unix.Close(d.fd)
		d.fd = -1
	}
	return err
}

type Config struct {
	dpy   *Display
	cfg   *egl.Config
	attrs core.ConfigAttrs
	param slbuf.Param
}

func (c *Config) Attrs() core.ConfigAttrs { return c.attrs }
func (c *Config) Destroy() error          { return nil }

func (c *Config) CreateContext(share platform.Context) (platform.Context, error) {
	var sc *egl.Context
	if share != nil {
		s, ok := share.(*Context)
		if !ok || s.dpy != c.dpy {
			return nil, core.Errorf(core.BadDisplayMatch, "share context belongs to another display")
		}
		sc = s.ctx
	}
	ctx, err := c.dpy.dpy.CreateContext(c.cfg, c.attrs, sc)
	if err != nil {
		return nil, err
	}
	return &Context{dpy: c.dpy, ctx: ctx, api: c.attrs.ContextAPI}, nil
}

func (c *Config) CreateWindow(width, height int) (platform.Window, error) {
	if width <= 0 || height <= 0 {
		return nil, core.Errorf(core.BadParameter, "window size %dx%d", width, height)
	}
	gs, err := c.dpy.dev.CreateSurface(uint32(width), uint32(height), c.param.GBMFormat, c.param.GBMFlags)
	if err != nil {
		return nil, err
	}
	es, err := c.dpy.dpy.CreateWindowSurface(c.cfg, gs.Ptr())
	if err != nil {
		gs.Destroy()
		return nil, err
	}
	w := &Window{dpy: c.dpy, gs: gs, surf: es, width: width, height: height}
	w.chain = swapChain{mode: c.dpy.mode, surf: surfaceAdapter{gs}, gl: c.dpy.gl}
	return w, nil
}

type Context struct {
	dpy *Display
	ctx *egl.Context
	api core.ContextAPI
}

func (c *Context) API() core.ContextAPI { return c.api }

func (c *Context) Destroy() error {
	d := c.dpy
	if d.current == c {
		if err := d.makeCurrent(nil, nil); err != nil {
			return err
		}
		platform.Forget(c, nil)
	}
	err := d.dpy.DestroyContext(c.ctx)
	d.tracker.Forget(c, nil)
	if terr := d.teardown(); terr != nil && err == nil {
		err = terr
	}
	return err
}

type Window struct {
	dpy           *Display
	gs            *gbm.Surface
	surf          *egl.Surface
	chain         swapChain
	width, height int
}

func (w *Window) Show() error               { return nil }
func (w *Window) Size() (width, height int) { return w.width, w.height }

// SwapBuffers swaps the EGL surface, then presents the new front buffer.
func (w *Window) SwapBuffers() error {
	d := w.dpy
	s, err := d.presenter()
	if err != nil {
		return err
	}
	if err := w.chain.beforeSwap(d.scanout()); err != nil {
		return err
	}
	if err := d.dpy.SwapBuffers(w.surf); err != nil {
		return err
	}
	if err := w.chain.afterSwap(s); err != nil {
		return err
	}
	if d.vsync && d.drv != nil {
		return d.drv.WaitPending()
	}
	return nil
}

func (w *Window) Destroy() error {
	d := w.dpy
	firstErr := w.chain.detach(d.scanout())
	platform.Forget(nil, w)
	d.tracker.Forget(nil, w)
	if err := d.teardown(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.dpy.DestroySurface(w.surf); err != nil && firstErr == nil {
		firstErr = err
	}
	w.gs.Destroy()
	return firstErr
}

// surfaceAdapter narrows the locked bo to the buffer interface.
type surfaceAdapter struct {
	*gbm.Surface
}

func (s surfaceAdapter) LockFrontBuffer() (slbuf.BufferObject, error) {
	bo, err := s.Surface.LockFrontBuffer()
	if err != nil {
		return nil, err
	}
	return bo, nil
}
