//go:build cgo

package glfwcontext

import (
	"testing"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
)

func hintMap(t *testing.T, a core.ConfigAttrs) map[glfw.Hint]int {
	t.Helper()
	h, err := hints(a)
	require.NoError(t, err)
	m := make(map[glfw.Hint]int, len(h))
	for _, x := range h {
		m[x.target] = x.value
	}
	return m
}

func TestHintsDesktopCore(t *testing.T) {
	a := core.DefaultConfigAttrs(core.ContextOpenGL)
	a.ContextMajor, a.ContextMinor = 4, 1
	a.Profile = core.ProfileCore
	a.ForwardCompatible = true
	a.DepthSize = 24

	m := hintMap(t, a)
	assert.Equal(t, glfw.OpenGLAPI, m[glfw.ClientAPI])
	assert.Equal(t, 4, m[glfw.ContextVersionMajor])
	assert.Equal(t, 1, m[glfw.ContextVersionMinor])
	assert.Equal(t, glfw.OpenGLCoreProfile, m[glfw.OpenGLProfile])
	assert.Equal(t, glfw.True, m[glfw.OpenGLForwardCompatible])
	assert.Equal(t, 24, m[glfw.DepthBits])
	assert.Equal(t, glfw.DontCare, m[glfw.RedBits])
	assert.Equal(t, 0, m[glfw.Samples])
}

func TestHintsOldDesktopIgnoresProfile(t *testing.T) {
	a := core.DefaultConfigAttrs(core.ContextOpenGL)
	a.ContextMajor, a.ContextMinor = 2, 1
	m := hintMap(t, a)
	assert.Equal(t, glfw.OpenGLAnyProfile, m[glfw.OpenGLProfile])
	assert.Equal(t, glfw.False, m[glfw.OpenGLForwardCompatible])
}

func TestHintsES(t *testing.T) {
	a := core.DefaultConfigAttrs(core.ContextOpenGLES3)
	a.SampleBuffers, a.Samples = true, 4
	a.Debug = true
	m := hintMap(t, a)
	assert.Equal(t, glfw.OpenGLESAPI, m[glfw.ClientAPI])
	assert.Equal(t, 3, m[glfw.ContextVersionMajor])
	assert.Equal(t, 4, m[glfw.Samples])
	assert.Equal(t, glfw.True, m[glfw.OpenGLDebugContext])
	_, hasProfile := m[glfw.OpenGLProfile]
	assert.False(t, hasProfile)
}

func TestHintsRequireAPI(t *testing.T) {
	_, err := hints(core.ConfigAttrs{})
	assert.ErrorIs(t, err, core.ErrBadAttribute)
}
