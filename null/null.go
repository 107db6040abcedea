// Package null renders into buffers on a render node and never displays
// them.
package null

import (
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/surfaceless"
)

func init() {
	platform.Register(core.PlatformNull, func(o *options.Options) (platform.Platform, error) {
		return New(o)
	})
}

// New returns the null platform. Presentation is forced to None, and the
// render node is used unless a device is configured.
func New(opts *options.Options) (*surfaceless.Platform, error) {
	return NewWithOpener(opts, surfaceless.OpenNative)
}

// NewWithOpener is New with a custom native stack.
func NewWithOpener(opts *options.Options, open surfaceless.Opener) (*surfaceless.Platform, error) {
	o := *opts
	o.Platform = core.PlatformNull
	if o.Present != present.None {
		core.Logger().Warn("null: presentation mode ignored", "present", o.Present.String())
		o.Present = present.None
	}
	if o.Device == options.DefaultCardDevice {
		o.Device = ""
	}
	return surfaceless.NewPlatform(core.PlatformNull, &o, open)
}
