//go:build linux && cgo

package egl

/*
#cgo LDFLAGS: -lEGL
#include <stdint.h>
#include <stdlib.h>
#include <EGL/egl.h>
#include <EGL/eglext.h>

// Extension entry points are resolved once and called through wrappers,
// since Go cannot call C function pointers directly.
static PFNEGLQUERYDEVICESEXTPROC query_devices_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC get_platform_display_ptr = NULL;
static PFNEGLCREATEIMAGEKHRPROC create_image_ptr = NULL;
static PFNEGLDESTROYIMAGEKHRPROC destroy_image_ptr = NULL;
static void (*image_target_rb_ptr)(unsigned int, void *) = NULL;

static void load_extension_pointers(void) {
    query_devices_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    get_platform_display_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
    create_image_ptr = (PFNEGLCREATEIMAGEKHRPROC) eglGetProcAddress("eglCreateImageKHR");
    destroy_image_ptr = (PFNEGLDESTROYIMAGEKHRPROC) eglGetProcAddress("eglDestroyImageKHR");
    image_target_rb_ptr = (void (*)(unsigned int, void *)) eglGetProcAddress("glEGLImageTargetRenderbufferStorageOES");
}

static EGLDisplay get_platform_display(EGLenum platform, void *native_display) {
    if (get_platform_display_ptr) {
        return get_platform_display_ptr(platform, native_display, NULL);
    }
    return EGL_NO_DISPLAY;
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (query_devices_ptr) {
        return query_devices_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}

static uintptr_t create_pixmap_image(EGLDisplay dpy, void *pixmap) {
    if (!create_image_ptr) {
        return 0;
    }
    return (uintptr_t)create_image_ptr(dpy, EGL_NO_CONTEXT, EGL_NATIVE_PIXMAP_KHR, (EGLClientBuffer)pixmap, NULL);
}

static EGLBoolean destroy_image(EGLDisplay dpy, uintptr_t img) {
    if (!destroy_image_ptr) {
        return EGL_FALSE;
    }
    return destroy_image_ptr(dpy, (EGLImageKHR)img);
}

static int image_target_renderbuffer(uintptr_t img) {
    if (!image_target_rb_ptr) {
        return 0;
    }
    image_target_rb_ptr(0x8D41, (void *)img);
    return 1;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/richinsley/glplatform/core"
)

var loadOnce sync.Once

func loadExtensions() { loadOnce.Do(func() { C.load_extension_pointers() }) }

func lastError(call string) error {
	return core.Errorf(core.UnknownError, "%s failed: egl error %#x", call, int(C.eglGetError()))
}

type Display struct {
	dpy          C.EGLDisplay
	major, minor int
	exts         string
}

type Config struct {
	cfg C.EGLConfig
}

type Context struct {
	ctx C.EGLContext
}

type Surface struct {
	s C.EGLSurface
}

// GetDisplay returns an initialized display on platform for the native
// display handle. For PlatformDevice with a nil handle the first usable
// device is picked, falling back to the default display.
func GetDisplay(platform int, native unsafe.Pointer) (*Display, error) {
	loadExtensions()

	var dpy C.EGLDisplay
	var err error
	if platform == PlatformDevice && native == nil {
		dpy, err = deviceDisplay()
	} else {
		dpy = C.get_platform_display(C.EGLenum(platform), native)
		if dpy == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			err = lastError(fmt.Sprintf("eglGetPlatformDisplay(%#x)", platform))
		}
	}
	if err != nil {
		return nil, err
	}

	d := &Display{dpy: dpy}
	var major, minor C.EGLint
	if C.eglInitialize(dpy, &major, &minor) == C.EGL_FALSE {
		return nil, lastError("eglInitialize")
	}
	d.major, d.minor = int(major), int(minor)
	d.exts = C.GoString(C.eglQueryString(dpy, C.EGL_EXTENSIONS))
	core.Logger().Info("egl: initialized", "version", fmt.Sprintf("%d.%d", d.major, d.minor),
		"vendor", C.GoString(C.eglQueryString(dpy, C.EGL_VENDOR)))
	return d, nil
}

// deviceDisplay tries the device enumeration extension first, falling back
// to the default display.
func deviceDisplay() (C.EGLDisplay, error) {
	var n C.EGLint
	if C.query_devices(0, nil, &n) == C.EGL_FALSE || n == 0 {
		core.Logger().Warn("egl: EGL_EXT_device_query not supported or no devices found, using EGL_DEFAULT_DISPLAY")
		dpy := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if dpy == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			return dpy, core.Errorf(core.UnknownError, "eglGetDisplay(EGL_DEFAULT_DISPLAY) failed")
		}
		return dpy, nil
	}

	devices := make([]C.EGLDeviceEXT, n)
	if C.query_devices(n, &devices[0], &n) == C.EGL_FALSE {
		return C.EGLDisplay(C.EGL_NO_DISPLAY), lastError("eglQueryDevicesEXT")
	}
	for i := 0; i < int(n); i++ {
		dpy := C.get_platform_display(C.EGL_PLATFORM_DEVICE_EXT, unsafe.Pointer(devices[i]))
		if dpy != C.EGLDisplay(C.EGL_NO_DISPLAY) {
			core.Logger().Debug("egl: display from device", "index", i, "devices", int(n))
			return dpy, nil
		}
	}
	return C.EGLDisplay(C.EGL_NO_DISPLAY), core.Errorf(core.UnknownError, "no usable display on %d EGL device(s)", int(n))
}

func (d *Display) Version() (major, minor int) { return d.major, d.minor }
func (d *Display) Extensions() string          { return d.exts }

// ClientAPIs is the space separated EGL_CLIENT_APIS string.
func (d *Display) ClientAPIs() string {
	return C.GoString(C.eglQueryString(d.dpy, C.EGL_CLIENT_APIS))
}

func (d *Display) HasExtension(name string) bool {
	return core.IsExtensionInString(d.exts, name)
}

// BindAPI selects the client API for the calling thread.
func (d *Display) BindAPI(api core.ContextAPI) error {
	if C.eglBindAPI(C.EGLenum(BindAPIFor(api))) == C.EGL_FALSE {
		return lastError("eglBindAPI")
	}
	return nil
}

// ChooseConfig returns a config matching attrs. A non-zero visual also
// requires EGL_NATIVE_VISUAL_ID to equal it, as GBM surfaces need.
func (d *Display) ChooseConfig(attrs core.ConfigAttrs, surface int32, visual uint32) (*Config, error) {
	list := toEGL(ConfigAttribs(attrs, surface))
	var n C.EGLint
	if C.eglChooseConfig(d.dpy, &list[0], nil, 0, &n) == C.EGL_FALSE {
		return nil, lastError("eglChooseConfig")
	}
	if n == 0 {
		return nil, core.Errorf(core.UnsupportedOnPlatform, "no EGL config matches the requested attributes")
	}
	configs := make([]C.EGLConfig, n)
	if C.eglChooseConfig(d.dpy, &list[0], &configs[0], n, &n) == C.EGL_FALSE {
		return nil, lastError("eglChooseConfig")
	}
	for _, c := range configs[:n] {
		cfg := &Config{cfg: c}
		if visual == 0 || d.NativeVisualID(cfg) == visual {
			return cfg, nil
		}
	}
	return nil, core.Errorf(core.UnsupportedOnPlatform, "no EGL config with native visual %#x", visual)
}

func (d *Display) NativeVisualID(c *Config) uint32 {
	var v C.EGLint
	C.eglGetConfigAttrib(d.dpy, c.cfg, nativeVisual, &v)
	return uint32(v)
}

// CreateContext creates a context for attrs. A nil config needs
// EGL_KHR_no_config_context.
func (d *Display) CreateContext(c *Config, attrs core.ConfigAttrs, share *Context) (*Context, error) {
	list, err := ContextAttribs(attrs, d.HasExtension("EGL_KHR_create_context"))
	if err != nil {
		return nil, err
	}
	if err := d.BindAPI(attrs.ContextAPI); err != nil {
		return nil, err
	}
	shareCtx := C.EGLContext(C.EGL_NO_CONTEXT)
	if share != nil {
		shareCtx = share.ctx
	}
	cfg := C.EGLConfig(nil)
	if c != nil {
		cfg = c.cfg
	}
	el := toEGL(list)
	ctx := C.eglCreateContext(d.dpy, cfg, shareCtx, &el[0])
	if ctx == C.EGLContext(C.EGL_NO_CONTEXT) {
		return nil, lastError("eglCreateContext")
	}
	return &Context{ctx: ctx}, nil
}

func (d *Display) DestroyContext(c *Context) error {
	if C.eglDestroyContext(d.dpy, c.ctx) == C.EGL_FALSE {
		return lastError("eglDestroyContext")
	}
	return nil
}

// MakeCurrent binds ctx with s as draw and read surface. A nil surface
// binds surfaceless; a nil context releases the thread.
func (d *Display) MakeCurrent(s *Surface, ctx *Context) error {
	surf := C.EGLSurface(C.EGL_NO_SURFACE)
	if s != nil {
		surf = s.s
	}
	c := C.EGLContext(C.EGL_NO_CONTEXT)
	if ctx != nil {
		c = ctx.ctx
	}
	if C.eglMakeCurrent(d.dpy, surf, surf, c) == C.EGL_FALSE {
		return lastError("eglMakeCurrent")
	}
	return nil
}

// CreateWindowSurface creates a surface on a native window such as a
// gbm_surface.
func (d *Display) CreateWindowSurface(c *Config, window unsafe.Pointer) (*Surface, error) {
	s := C.eglCreateWindowSurface(d.dpy, c.cfg, C.EGLNativeWindowType(uintptr(window)), nil)
	if s == C.EGLSurface(C.EGL_NO_SURFACE) {
		return nil, lastError("eglCreateWindowSurface")
	}
	return &Surface{s: s}, nil
}

func (d *Display) CreatePbufferSurface(c *Config, width, height int) (*Surface, error) {
	attribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(width),
		C.EGL_HEIGHT, C.EGLint(height),
		C.EGL_NONE,
	}
	s := C.eglCreatePbufferSurface(d.dpy, c.cfg, &attribs[0])
	if s == C.EGLSurface(C.EGL_NO_SURFACE) {
		return nil, lastError("eglCreatePbufferSurface")
	}
	return &Surface{s: s}, nil
}

func (d *Display) DestroySurface(s *Surface) error {
	if C.eglDestroySurface(d.dpy, s.s) == C.EGL_FALSE {
		return lastError("eglDestroySurface")
	}
	return nil
}

func (d *Display) SwapBuffers(s *Surface) error {
	if C.eglSwapBuffers(d.dpy, s.s) == C.EGL_FALSE {
		return lastError("eglSwapBuffers")
	}
	return nil
}

// CreateImage wraps a native pixmap, such as a gbm_bo, in an EGLImage.
func (d *Display) CreateImage(pixmap unsafe.Pointer) (uintptr, error) {
	img := C.create_pixmap_image(d.dpy, pixmap)
	if img == 0 {
		return 0, lastError("eglCreateImageKHR")
	}
	return uintptr(img), nil
}

func (d *Display) DestroyImage(img uintptr) {
	C.destroy_image(d.dpy, C.uintptr_t(img))
}

// ImageTargetRenderbufferStorage backs the bound renderbuffer with img.
func ImageTargetRenderbufferStorage(img uintptr) error {
	loadExtensions()
	if C.image_target_renderbuffer(C.uintptr_t(img)) == 0 {
		return core.Errorf(core.UnsupportedOnPlatform, "glEGLImageTargetRenderbufferStorageOES is not available")
	}
	return nil
}

func GetProcAddress(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return unsafe.Pointer(C.eglGetProcAddress(cname))
}

// Terminate releases the display. Contexts and surfaces must be gone.
func (d *Display) Terminate() error {
	C.eglMakeCurrent(d.dpy, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
	if C.eglTerminate(d.dpy) == C.EGL_FALSE {
		return lastError("eglTerminate")
	}
	return nil
}

func toEGL(l []int32) []C.EGLint {
	out := make([]C.EGLint, len(l))
	for i, v := range l {
		out[i] = C.EGLint(v)
	}
	return out
}
