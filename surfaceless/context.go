package surfaceless

import (
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/platform"
)

type Context struct {
	dpy    *Display
	api    core.ContextAPI
	native NativeContext
}

var _ platform.Context = (*Context)(nil)

func (c *Context) API() core.ContextAPI { return c.api }

// Destroy unbinds the context if it is current, drops the framebuffers
// made in it and releases the scanout once nothing is bound.
func (c *Context) Destroy() error {
	d := c.dpy
	if d.current == c {
		if err := d.MakeCurrent(nil, nil); err != nil {
			return err
		}
		platform.Forget(c, nil)
	}
	for _, w := range d.windows {
		for _, b := range w.slots {
			if b != nil && b.GLOwner() == any(c) {
				b.ForgetGLResources()
			}
		}
	}
	err := d.native.DestroyContext(c.native)
	if err != nil {
		err = core.Wrap(core.UnknownError, err, "eglDestroyContext")
	}
	d.tracker.Forget(c, nil)
	if terr := d.teardown(); terr != nil && err == nil {
		err = terr
	}
	return err
}
