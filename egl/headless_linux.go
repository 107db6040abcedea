//go:build linux && cgo

package egl

import (
	"strings"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
)

func init() {
	platform.Register(core.PlatformEGL, func(o *options.Options) (platform.Platform, error) {
		return NewHeadless(o), nil
	})
}

// Headless renders into pbuffers on the first usable EGL device, with no
// window system and no display.
type Headless struct {
	opts   options.Options
	glOnce sync.Once
	glErr  error
}

func NewHeadless(opts *options.Options) *Headless {
	return &Headless{opts: *opts}
}

func (h *Headless) Kind() core.PlatformKind { return core.PlatformEGL }

func (h *Headless) Connect(name string) (platform.Display, error) {
	d, err := GetDisplay(PlatformDevice, nil)
	if err != nil {
		return nil, err
	}
	return &headlessDisplay{d: d}, nil
}

func (h *Headless) MakeCurrent(d platform.Display, w platform.Window, c platform.Context) error {
	hd, ok := d.(*headlessDisplay)
	if !ok {
		return core.Errorf(core.BadParameter, "display is not an EGL display")
	}
	var surf *Surface
	if w != nil {
		surf = w.(*headlessWindow).s
	}
	var ctx *Context
	if c != nil {
		ctx = c.(*headlessContext).ctx
	}
	if err := hd.d.MakeCurrent(surf, ctx); err != nil {
		return err
	}
	if c == nil || c.API() != core.ContextOpenGL {
		return nil
	}
	h.glOnce.Do(func() {
		if err := gl.Init(); err != nil {
			h.glErr = core.Wrap(core.UnknownError, err, "initialize OpenGL")
		}
	})
	return h.glErr
}

func (h *Headless) GetProcAddress(name string) unsafe.Pointer { return GetProcAddress(name) }
func (h *Headless) Destroy() error                            { return nil }

type headlessDisplay struct {
	d *Display
}

func (hd *headlessDisplay) Native() any { return hd.d }

func (hd *headlessDisplay) SupportsContextAPI(api core.ContextAPI) bool {
	apis := strings.Fields(hd.d.ClientAPIs())
	want := "OpenGL_ES"
	if api == core.ContextOpenGL {
		want = "OpenGL"
	}
	for _, a := range apis {
		if a == want {
			return true
		}
	}
	return false
}

func (hd *headlessDisplay) ChooseConfig(attrs core.ConfigAttrs) (platform.Config, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	c, err := hd.d.ChooseConfig(attrs, PbufferBit, 0)
	if err != nil {
		return nil, err
	}
	return &headlessConfig{hd: hd, cfg: c, attrs: attrs}, nil
}

func (hd *headlessDisplay) Disconnect() error { return hd.d.Terminate() }

type headlessConfig struct {
	hd    *headlessDisplay
	cfg   *Config
	attrs core.ConfigAttrs
}

func (c *headlessConfig) Attrs() core.ConfigAttrs { return c.attrs }
func (c *headlessConfig) Destroy() error          { return nil }

func (c *headlessConfig) CreateContext(share platform.Context) (platform.Context, error) {
	var sc *Context
	if share != nil {
		hs, ok := share.(*headlessContext)
		if !ok || hs.hd != c.hd {
			return nil, core.Errorf(core.BadDisplayMatch, "share context belongs to another display")
		}
		sc = hs.ctx
	}
	ctx, err := c.hd.d.CreateContext(c.cfg, c.attrs, sc)
	if err != nil {
		return nil, err
	}
	return &headlessContext{hd: c.hd, ctx: ctx, api: c.attrs.ContextAPI}, nil
}

func (c *headlessConfig) CreateWindow(width, height int) (platform.Window, error) {
	if width <= 0 || height <= 0 {
		return nil, core.Errorf(core.BadParameter, "pbuffer size %dx%d", width, height)
	}
	s, err := c.hd.d.CreatePbufferSurface(c.cfg, width, height)
	if err != nil {
		return nil, err
	}
	return &headlessWindow{hd: c.hd, s: s, width: width, height: height}, nil
}

type headlessContext struct {
	hd  *headlessDisplay
	ctx *Context
	api core.ContextAPI
}

func (c *headlessContext) API() core.ContextAPI { return c.api }

func (c *headlessContext) Destroy() error {
	platform.Forget(c, nil)
	return c.hd.d.DestroyContext(c.ctx)
}

type headlessWindow struct {
	hd            *headlessDisplay
	s             *Surface
	width, height int
}

func (w *headlessWindow) Show() error               { return nil }
func (w *headlessWindow) Size() (width, height int) { return w.width, w.height }
func (w *headlessWindow) SwapBuffers() error        { return w.hd.d.SwapBuffers(w.s) }

func (w *headlessWindow) Destroy() error {
	platform.Forget(nil, w)
	return w.hd.d.DestroySurface(w.s)
}
