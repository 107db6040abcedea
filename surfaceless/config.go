package surfaceless

import (
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/slbuf"
)

type Config struct {
	dpy   *Display
	attrs core.ConfigAttrs
	param slbuf.Param
}

var _ platform.Config = (*Config)(nil)

func (c *Config) Attrs() core.ConfigAttrs { return c.attrs }

// Param is the buffer description windows of this config allocate with.
func (c *Config) Param() slbuf.Param { return c.param }

func (c *Config) Destroy() error { return nil }

func (c *Config) CreateContext(share platform.Context) (platform.Context, error) {
	var ns NativeContext
	if share != nil {
		sc, ok := share.(*Context)
		if !ok || sc.dpy != c.dpy {
			return nil, core.Errorf(core.BadDisplayMatch, "share context belongs to another display")
		}
		ns = sc.native
	}
	n, err := c.dpy.native.CreateContext(c.attrs, ns)
	if err != nil {
		return nil, core.Wrap(core.UnknownError, err, "eglCreateContext")
	}
	return &Context{dpy: c.dpy, api: c.attrs.ContextAPI, native: n}, nil
}

// CreateWindow creates a window of the given size. A zero size takes the
// display size.
func (c *Config) CreateWindow(width, height int) (platform.Window, error) {
	d := c.dpy
	if width <= 0 || height <= 0 {
		w, h, ok := d.Size()
		if !ok {
			return nil, core.Errorf(core.BadParameter, "window size %dx%d with no display to size from", width, height)
		}
		width, height = w, h
	}
	p := c.param
	p.Width, p.Height = uint32(width), uint32(height)
	w := &Window{
		dpy:    d,
		cfg:    c,
		width:  width,
		height: height,
		param:  p,
		slots:  make([]*slbuf.Buffer, d.slots),
	}
	d.windows = append(d.windows, w)
	core.Logger().Debug("surfaceless: window created", "width", width, "height", height, "slots", d.slots)
	return w, nil
}
