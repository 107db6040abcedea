package core

// DontCare leaves a size attribute for the platform to pick.
const DontCare = -1

// ConfigAttrs are the framebuffer and context attributes a caller asks for
// when choosing a config.
type ConfigAttrs struct {
	ContextAPI        ContextAPI
	ContextMajor      int
	ContextMinor      int
	Profile           Profile
	ForwardCompatible bool
	Debug             bool
	Robust            bool

	RedSize     int
	GreenSize   int
	BlueSize    int
	AlphaSize   int
	DepthSize   int
	StencilSize int
	AccumSize   int

	SampleBuffers  bool
	Samples        int
	DoubleBuffered bool
}

// DefaultConfigAttrs returns attributes for api with every size left to
// the platform and the lowest context version the API allows.
func DefaultConfigAttrs(api ContextAPI) ConfigAttrs {
	a := ConfigAttrs{
		ContextAPI:     api,
		RedSize:        DontCare,
		GreenSize:      DontCare,
		BlueSize:       DontCare,
		AlphaSize:      DontCare,
		DepthSize:      DontCare,
		StencilSize:    DontCare,
		AccumSize:      DontCare,
		DoubleBuffered: true,
	}
	switch api {
	case ContextOpenGL, ContextOpenGLES1:
		a.ContextMajor, a.ContextMinor = 1, 0
	case ContextOpenGLES2:
		a.ContextMajor, a.ContextMinor = 2, 0
	case ContextOpenGLES3:
		a.ContextMajor, a.ContextMinor = 3, 0
	}
	return a
}

// Version returns major*10+minor.
func (a *ConfigAttrs) Version() int {
	return a.ContextMajor*10 + a.ContextMinor
}

// Validate checks that the context version, profile and flags make sense
// for the requested API.
func (a *ConfigAttrs) Validate() error {
	v := a.Version()
	switch a.ContextAPI {
	case ContextOpenGL:
		if a.ContextMajor < 1 || a.ContextMinor < 0 || a.ContextMinor > 9 {
			return Errorf(BadAttribute, "invalid OpenGL version %d.%d", a.ContextMajor, a.ContextMinor)
		}
		if a.Profile != ProfileNone && v < 32 {
			return Errorf(BadAttribute, "context profile requires OpenGL 3.2 or later")
		}
		if a.ForwardCompatible && v < 30 {
			return Errorf(BadAttribute, "forward compatible context requires OpenGL 3.0 or later")
		}
	case ContextOpenGLES1:
		if v != 10 && v != 11 {
			return Errorf(BadAttribute, "OpenGL ES1 version must be 1.0 or 1.1")
		}
	case ContextOpenGLES2:
		if v != 20 {
			return Errorf(BadAttribute, "OpenGL ES2 version must be 2.0")
		}
	case ContextOpenGLES3:
		if a.ContextMajor != 3 {
			return Errorf(BadAttribute, "OpenGL ES3 major version must be 3")
		}
	default:
		return Errorf(BadAttribute, "context api is required")
	}
	if a.ContextAPI != ContextOpenGL && (a.Profile != ProfileNone || a.ForwardCompatible) {
		return Errorf(BadAttribute, "profile and forward compatibility apply to OpenGL only")
	}
	if a.Samples > 0 && !a.SampleBuffers {
		return Errorf(BadAttribute, "samples requested without sample buffers")
	}
	return nil
}

// Normalize replaces DontCare sizes with the defaults used by the
// buffer-backed platforms: rgb 8, alpha, depth and stencil 0.
func (a *ConfigAttrs) Normalize() {
	def := func(p *int, v int) {
		if *p == DontCare {
			*p = v
		}
	}
	def(&a.RedSize, 8)
	def(&a.GreenSize, 8)
	def(&a.BlueSize, 8)
	def(&a.AlphaSize, 0)
	def(&a.DepthSize, 0)
	def(&a.StencilSize, 0)
	def(&a.AccumSize, 0)
	def(&a.Samples, 0)
}
