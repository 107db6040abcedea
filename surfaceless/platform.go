// Package surfaceless renders into GBM buffers through EGL without a
// window system, and optionally scans the results out on a DRM display.
package surfaceless

import (
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
)

func init() {
	platform.Register(core.PlatformSurfaceless, func(o *options.Options) (platform.Platform, error) {
		return New(o)
	})
}

// Platform connects surfaceless displays.
type Platform struct {
	kind core.PlatformKind
	opts options.Options
	open Opener

	last Native
}

// New returns the surfaceless platform backed by the system's GBM and EGL.
func New(opts *options.Options) (*Platform, error) {
	return NewPlatform(core.PlatformSurfaceless, opts, OpenNative)
}

// NewPlatform returns a platform of the given kind that connects through
// open. Other buffer-backed platforms reuse the engine this way.
func NewPlatform(kind core.PlatformKind, opts *options.Options, open Opener) (*Platform, error) {
	if open == nil {
		return nil, core.Errorf(core.BuiltWithoutSupport, "%s platform needs cgo and linux", kind)
	}
	o := *opts
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Platform{kind: kind, opts: o, open: open}, nil
}

func (p *Platform) Kind() core.PlatformKind { return p.kind }

// Connect opens a display. A non-empty name overrides the configured
// device node.
func (p *Platform) Connect(name string) (platform.Display, error) {
	o := p.opts
	if name != "" {
		o.Device = name
	}
	n, err := p.open(&o)
	if err != nil {
		return nil, err
	}
	p.last = n
	core.Logger().Info("surfaceless: connected", "device", o.Device, "present", o.Present.String())
	return NewDisplay(n, &o), nil
}

func (p *Platform) MakeCurrent(d platform.Display, w platform.Window, c platform.Context) error {
	dpy, ok := d.(*Display)
	if !ok || dpy == nil {
		return core.Errorf(core.BadParameter, "display is not a %s display", p.kind)
	}
	var (
		win *Window
		ctx *Context
	)
	if w != nil {
		if win, ok = w.(*Window); !ok || win.dpy != dpy {
			return core.Errorf(core.BadDisplayMatch, "window belongs to another display")
		}
	}
	if c != nil {
		if ctx, ok = c.(*Context); !ok || ctx.dpy != dpy {
			return core.Errorf(core.BadDisplayMatch, "context belongs to another display")
		}
	}
	return dpy.MakeCurrent(ctx, win)
}

func (p *Platform) GetProcAddress(name string) unsafe.Pointer {
	if p.last == nil {
		return nil
	}
	return p.last.GetProcAddress(name)
}

func (p *Platform) Destroy() error {
	p.last = nil
	return nil
}
