//go:build linux && cgo

package surfaceless

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/egl"
	"github.com/richinsley/glplatform/gbm"
	"github.com/richinsley/glplatform/gles"
	"github.com/richinsley/glplatform/kms"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/tiling"
)

// OpenNative connects GBM and EGL on the configured DRM node.
var OpenNative Opener = openNative

type native struct {
	fd  int
	dev *gbm.Device
	dpy *egl.Display
	gl  *gles.GL
	mem tiling.Memory
}

func openNative(o *options.Options) (Native, error) {
	fd, err := unix.Open(o.Device, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, core.Wrap(core.UnknownError, err, "open %s", o.Device)
	}
	n := &native{fd: fd}
	if err := n.init(); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *native) init() error {
	var err error
	if n.dev, err = gbm.Open(n.fd); err != nil {
		return err
	}
	if n.dpy, err = egl.GetDisplay(egl.PlatformGBM, n.dev.Ptr()); err != nil {
		return err
	}
	for _, ext := range []string{"EGL_KHR_surfaceless_context", "EGL_KHR_image_base"} {
		if !n.dpy.HasExtension(ext) {
			return core.Errorf(core.UnsupportedOnPlatform, "EGL display lacks %s", ext)
		}
	}
	n.gl = gles.New(n.dpy)

	name, err := kms.NewDevice(n.fd).DriverName()
	if err != nil {
		core.Logger().Debug("surfaceless: driver name unknown", "err", err)
	}
	if name == "i915" {
		n.mem = tiling.OpenI915(n.fd)
	}
	return nil
}

func (n *native) Allocator() slbuf.Allocator { return n.dev }
func (n *native) GL() slbuf.GL               { return n.gl }

// Tiling is nil unless the node is driven by i915.
func (n *native) Tiling() tiling.Memory { return n.mem }

func (n *native) CreateContext(attrs core.ConfigAttrs, share NativeContext) (NativeContext, error) {
	var cfg *egl.Config
	if !n.dpy.HasExtension("EGL_KHR_no_config_context") {
		c, err := n.dpy.ChooseConfig(attrs, 0, 0)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	var sc *egl.Context
	if share != nil {
		sc = share.(*egl.Context)
	}
	return n.dpy.CreateContext(cfg, attrs, sc)
}

func (n *native) DestroyContext(c NativeContext) error {
	return n.dpy.DestroyContext(c.(*egl.Context))
}

func (n *native) MakeCurrent(c NativeContext) error {
	if c == nil {
		return n.dpy.MakeCurrent(nil, nil)
	}
	if err := n.dpy.MakeCurrent(nil, c.(*egl.Context)); err != nil {
		return err
	}
	return gles.Init()
}

func (n *native) GetProcAddress(name string) unsafe.Pointer { return egl.GetProcAddress(name) }

// Display shares the node's descriptor; closing it leaves the node open.
func (n *native) Display() (kms.Device, error) {
	dev := kms.NewDevice(n.fd)
	if _, err := dev.Resources(); err != nil {
		return nil, err
	}
	return dev, nil
}

func (n *native) Close() error {
	var firstErr error
	if n.dpy != nil {
		firstErr = n.dpy.Terminate()
		n.dpy = nil
	}
	if n.dev != nil {
		n.dev.Close()
		n.dev = nil
	}
	if n.fd >= 0 {
		if err := unix.Close(n.fd); err != nil && firstErr == nil {
			firstErr = err
		}
		n.fd = -1
	}
	return firstErr
}
