//go:build cgo

// Package glfwcontext is the X11/GLX platform, built on GLFW windows.
//
// GLFW couples every context to a window. A context is therefore a hidden
// window, and all windows and contexts of a display share objects with a
// hidden root window. Binding a window makes the window's own context
// current.
package glfwcontext

import (
	"runtime"
	"unsafe"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
)

func init() {
	platform.Register(core.PlatformGLX, func(o *options.Options) (platform.Platform, error) {
		return New(o), nil
	})
}

type hint struct {
	target glfw.Hint
	value  int
}

// hints maps config attributes to GLFW window hints.
func hints(a core.ConfigAttrs) ([]hint, error) {
	bit := func(b bool) int {
		if b {
			return glfw.True
		}
		return glfw.False
	}
	size := func(v int) int {
		if v == core.DontCare {
			return glfw.DontCare
		}
		return v
	}

	var h []hint
	switch a.ContextAPI {
	case core.ContextOpenGL:
		h = append(h, hint{glfw.ClientAPI, glfw.OpenGLAPI})
	case core.ContextOpenGLES1, core.ContextOpenGLES2, core.ContextOpenGLES3:
		h = append(h, hint{glfw.ClientAPI, glfw.OpenGLESAPI})
	default:
		return nil, core.Errorf(core.BadAttribute, "context api is required")
	}
	h = append(h,
		hint{glfw.ContextVersionMajor, a.ContextMajor},
		hint{glfw.ContextVersionMinor, a.ContextMinor},
	)
	if a.ContextAPI == core.ContextOpenGL {
		profile := glfw.OpenGLAnyProfile
		if a.Version() >= 32 {
			switch a.Profile {
			case core.ProfileCore:
				profile = glfw.OpenGLCoreProfile
			case core.ProfileCompatibility:
				profile = glfw.OpenGLCompatProfile
			}
		}
		h = append(h,
			hint{glfw.OpenGLProfile, profile},
			hint{glfw.OpenGLForwardCompatible, bit(a.ForwardCompatible)},
		)
	}
	robust := glfw.NoRobustness
	if a.Robust {
		robust = glfw.LoseContextOnReset
	}
	h = append(h,
		hint{glfw.OpenGLDebugContext, bit(a.Debug)},
		hint{glfw.ContextRobustness, robust},
		hint{glfw.RedBits, size(a.RedSize)},
		hint{glfw.GreenBits, size(a.GreenSize)},
		hint{glfw.BlueBits, size(a.BlueSize)},
		hint{glfw.AlphaBits, size(a.AlphaSize)},
		hint{glfw.DepthBits, size(a.DepthSize)},
		hint{glfw.StencilBits, size(a.StencilSize)},
		hint{glfw.DoubleBuffer, bit(a.DoubleBuffered)},
	)
	samples := 0
	if a.SampleBuffers {
		samples = size(a.Samples)
	}
	return append(h, hint{glfw.Samples, samples}), nil
}

func applyHints(h []hint, visible bool) {
	glfw.DefaultWindowHints()
	for _, x := range h {
		glfw.WindowHint(x.target, x.value)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	}
}

type Platform struct {
	opts options.Options
}

func New(opts *options.Options) *Platform { return &Platform{opts: *opts} }

func (p *Platform) Kind() core.PlatformKind { return core.PlatformGLX }

// Connect initializes GLFW on the calling thread, which stays locked to
// it. All later calls must come from the same goroutine.
func (p *Platform) Connect(name string) (platform.Display, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, core.Wrap(core.UnknownError, err, "glfw init")
	}
	core.Logger().Info("glfw: initialized", "version", glfw.GetVersionString())
	return &Display{}, nil
}

func (p *Platform) MakeCurrent(d platform.Display, w platform.Window, c platform.Context) error {
	switch {
	case w != nil:
		w.(*Window).win.MakeContextCurrent()
	case c != nil:
		c.(*Context).win.MakeContextCurrent()
	default:
		glfw.DetachCurrentContext()
	}
	return nil
}

func (p *Platform) GetProcAddress(name string) unsafe.Pointer { return glfw.GetProcAddress(name) }
func (p *Platform) Destroy() error                            { return nil }

type Display struct {
	root *glfw.Window
}

func (d *Display) Native() any { return d.root }

func (d *Display) SupportsContextAPI(api core.ContextAPI) bool {
	return api != core.ContextOpenGLES1
}

func (d *Display) ChooseConfig(attrs core.ConfigAttrs) (platform.Config, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	h, err := hints(attrs)
	if err != nil {
		return nil, err
	}
	if d.root == nil {
		applyHints(h, false)
		root, err := glfw.CreateWindow(1, 1, "glplatform", nil, nil)
		if err != nil {
			return nil, core.Wrap(core.UnsupportedOnPlatform, err, "no GLFW context for the requested attributes")
		}
		d.root = root
	}
	return &Config{dpy: d, attrs: attrs, hints: h}, nil
}

// Disconnect terminates GLFW, destroying any remaining window.
func (d *Display) Disconnect() error {
	d.root = nil
	glfw.Terminate()
	core.Logger().Info("glfw: terminated")
	return nil
}

type Config struct {
	dpy   *Display
	attrs core.ConfigAttrs
	hints []hint
}

func (c *Config) Attrs() core.ConfigAttrs { return c.attrs }
func (c *Config) Destroy() error          { return nil }

func (c *Config) create(width, height int, visible bool, title string) (*glfw.Window, error) {
	applyHints(c.hints, visible)
	win, err := glfw.CreateWindow(width, height, title, nil, c.dpy.root)
	if err != nil {
		return nil, core.Wrap(core.UnknownError, err, "glfw create window")
	}
	return win, nil
}

// CreateContext creates a hidden window whose context shares objects with
// every other context on the display. share is implied.
func (c *Config) CreateContext(share platform.Context) (platform.Context, error) {
	win, err := c.create(1, 1, false, "glplatform context")
	if err != nil {
		return nil, err
	}
	return &Context{win: win, api: c.attrs.ContextAPI}, nil
}

func (c *Config) CreateWindow(width, height int) (platform.Window, error) {
	win, err := c.create(width, height, true, "glplatform")
	if err != nil {
		return nil, err
	}
	w := &Window{win: win, keyCallbacks: make(map[glfw.Key]func())}
	win.SetKeyCallback(w.glfwKeyCallback)
	return w, nil
}

type Context struct {
	win *glfw.Window
	api core.ContextAPI
}

func (c *Context) API() core.ContextAPI { return c.api }

func (c *Context) Destroy() error {
	platform.Forget(c, nil)
	c.win.Destroy()
	return nil
}

type Window struct {
	win *glfw.Window
	// functions called on key presses
	keyCallbacks map[glfw.Key]func()
}

func (w *Window) Show() error {
	w.win.Show()
	return nil
}

func (w *Window) Size() (width, height int) { return w.win.GetFramebufferSize() }

// SwapBuffers swaps and processes pending window events.
func (w *Window) SwapBuffers() error {
	w.win.SwapBuffers()
	glfw.PollEvents()
	return nil
}

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// RegisterKeyCallback calls f whenever key is pressed in the window.
func (w *Window) RegisterKeyCallback(key glfw.Key, f func()) {
	w.keyCallbacks[key] = f
}

// glfwKeyCallback closes the window on Escape and dispatches registered
// callbacks.
func (w *Window) glfwKeyCallback(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		win.SetShouldClose(true)
	}
	if callback, ok := w.keyCallbacks[key]; ok {
		callback()
	}
}

func (w *Window) Destroy() error {
	platform.Forget(nil, w)
	w.win.Destroy()
	return nil
}
