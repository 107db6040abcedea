// Package egl drives libEGL: displays on the GBM, surfaceless and device
// platforms, contexts, surfaces and images.
package egl

import (
	"github.com/richinsley/glplatform/core"
)

// EGL enum values used by this package.
const (
	none          = 0x3038
	dontCare      = -1
	alphaSize     = 0x3021
	blueSize      = 0x3022
	greenSize     = 0x3023
	redSize       = 0x3024
	depthSize     = 0x3025
	stencilSize   = 0x3026
	samples       = 0x3031
	sampleBuffers = 0x3032
	surfaceType   = 0x3033
	nativeVisual  = 0x302E
	renderable    = 0x3040

	openGLESBit  = 0x0001
	openGLBit    = 0x0008
	openGLES2Bit = 0x0004
	openGLES3Bit = 0x0040

	contextMajor   = 0x3098
	contextMinor   = 0x30FB
	contextFlags   = 0x30FC
	contextProfile = 0x30FD

	coreProfileBit   = 0x1
	compatProfileBit = 0x2
	debugBit         = 0x1
	forwardCompatBit = 0x2
	robustBit        = 0x4

	openGLESAPI = 0x30A0
	openGLAPI   = 0x30A2
)

// Surface type bits for ConfigAttribs.
const (
	PbufferBit = 0x0001
	WindowBit  = 0x0004
)

// Native platforms for GetPlatformDisplay.
const (
	PlatformGBM         = 0x31D7
	PlatformSurfaceless = 0x31DD
	PlatformDevice      = 0x313F
)

// ConfigAttribs builds the eglChooseConfig list for attrs.
func ConfigAttribs(a core.ConfigAttrs, surface int32) []int32 {
	size := func(v int) int32 {
		if v == core.DontCare {
			return dontCare
		}
		return int32(v)
	}
	l := []int32{
		redSize, size(a.RedSize),
		greenSize, size(a.GreenSize),
		blueSize, size(a.BlueSize),
		alphaSize, size(a.AlphaSize),
		depthSize, size(a.DepthSize),
		stencilSize, size(a.StencilSize),
		renderable, renderableBit(a.ContextAPI),
		surfaceType, surface,
	}
	if a.SampleBuffers {
		l = append(l, sampleBuffers, 1, samples, size(a.Samples))
	}
	return append(l, none)
}

func renderableBit(api core.ContextAPI) int32 {
	switch api {
	case core.ContextOpenGL:
		return openGLBit
	case core.ContextOpenGLES1:
		return openGLESBit
	case core.ContextOpenGLES2:
		return openGLES2Bit
	case core.ContextOpenGLES3:
		return openGLES3Bit
	}
	return 0
}

// BindAPIFor returns the eglBindAPI value for api.
func BindAPIFor(api core.ContextAPI) uint32 {
	if api == core.ContextOpenGL {
		return openGLAPI
	}
	return openGLESAPI
}

// ContextAttribs builds the eglCreateContext list. createContext reports
// EGL_KHR_create_context; without it only a bare client version can be
// requested.
func ContextAttribs(a core.ConfigAttrs, createContext bool) ([]int32, error) {
	var l []int32
	var flags int32
	switch a.ContextAPI {
	case core.ContextOpenGL:
		if a.Version() != 10 {
			if !createContext {
				return nil, core.Errorf(core.UnsupportedOnPlatform, "OpenGL %d.%d needs EGL_KHR_create_context", a.ContextMajor, a.ContextMinor)
			}
			l = append(l, contextMajor, int32(a.ContextMajor), contextMinor, int32(a.ContextMinor))
		}
		if a.Version() >= 32 {
			profile := int32(coreProfileBit)
			if a.Profile == core.ProfileCompatibility {
				profile = compatProfileBit
			}
			l = append(l, contextProfile, profile)
		}
		if a.ForwardCompatible {
			flags |= forwardCompatBit
		}
	case core.ContextOpenGLES1, core.ContextOpenGLES2, core.ContextOpenGLES3:
		l = append(l, contextMajor, int32(a.ContextMajor))
		if a.ContextMinor != 0 {
			if !createContext {
				return nil, core.Errorf(core.UnsupportedOnPlatform, "ES minor version needs EGL_KHR_create_context")
			}
			l = append(l, contextMinor, int32(a.ContextMinor))
		}
	default:
		return nil, core.Errorf(core.BadAttribute, "context api is required")
	}
	if a.Debug {
		flags |= debugBit
	}
	if a.Robust {
		flags |= robustBit
	}
	if flags != 0 {
		if !createContext {
			return nil, core.Errorf(core.UnsupportedOnPlatform, "context flags need EGL_KHR_create_context")
		}
		l = append(l, contextFlags, flags)
	}
	return append(l, none), nil
}
