package info

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
)

type fakeGL struct {
	strings map[uint32]string
	ints    map[uint32]int32
	indexed []string
	errs    []uint32 // returned by successive GetError calls
	failOn  uint32
	pending uint32
}

func (f *fakeGL) GetString(name uint32) string {
	if name == f.failOn {
		f.pending = 0x0500
		return ""
	}
	return f.strings[name]
}

func (f *fakeGL) GetStringi(name, index uint32) string {
	if int(index) >= len(f.indexed) {
		f.pending = 0x0501
		return ""
	}
	return f.indexed[index]
}

func (f *fakeGL) GetInteger(name uint32) int32 { return f.ints[name] }

func (f *fakeGL) GetError() uint32 {
	if len(f.errs) > 0 {
		e := f.errs[0]
		f.errs = f.errs[1:]
		return e
	}
	e := f.pending
	f.pending = 0
	return e
}

func desktop(version string) *fakeGL {
	return &fakeGL{
		strings: map[uint32]string{
			glVendor:                 "Mesa",
			glRenderer:               "llvmpipe",
			glVersion:                version,
			glShadingLanguageVersion: "4.50",
			glExtensions:             "GL_ARB_one GL_ARB_two",
		},
		ints: map[uint32]int32{
			glNumExtensions:      2,
			glContextFlags:       flagForwardCompatible | flagDebug,
			glContextProfileMask: profileCore,
		},
		indexed: []string{"GL_ARB_one", "GL_ARB_two"},
	}
}

func TestQueryCoreContext(t *testing.T) {
	in, err := Query(desktop("4.5 (Core Profile) Mesa 23.0"), core.ContextOpenGL)
	require.NoError(t, err)
	assert.Equal(t, "Mesa", in.Vendor)
	assert.Equal(t, "4.50", in.ShadingLanguage)
	assert.Equal(t, "core", in.Profile)
	assert.Equal(t, "GL_CONTEXT_FLAG_FORWARD_COMPATIBLE_BIT | GL_CONTEXT_FLAG_DEBUG_BIT", in.ContextFlags)
	assert.Equal(t, []string{"GL_ARB_one", "GL_ARB_two"}, in.Extensions)
}

func TestQueryOldDesktop(t *testing.T) {
	g := desktop("1.4 Mesa")
	g.strings[glExtensions] = "GL_EXT_a  GL_EXT_b"
	in, err := Query(g, core.ContextOpenGL)
	require.NoError(t, err)
	assert.Equal(t, "None", in.ShadingLanguage)
	assert.Empty(t, in.ContextFlags)
	assert.Empty(t, in.Profile)
	assert.Equal(t, []string{"GL_EXT_a", "GL_EXT_b"}, in.Extensions)
}

func TestQueryES(t *testing.T) {
	g := desktop("OpenGL ES 3.2 Mesa")
	in, err := Query(g, core.ContextOpenGLES3)
	require.NoError(t, err)
	assert.Empty(t, in.ContextFlags)
	assert.Equal(t, "4.50", in.ShadingLanguage)
	assert.Len(t, in.Extensions, 2)

	in, err = Query(desktop("OpenGL ES-CM 1.1"), core.ContextOpenGLES1)
	require.NoError(t, err)
	assert.Equal(t, "None", in.ShadingLanguage)
}

func TestQueryReportsGLErrors(t *testing.T) {
	g := desktop("2.1 Mesa")
	g.failOn = glRenderer
	g.errs = []uint32{0x0502} // stale error from before the query
	in, err := Query(g, core.ContextOpenGL)
	require.NoError(t, err)
	assert.Equal(t, GLError, in.Renderer)
	assert.Equal(t, "Mesa", in.Vendor)

	g = desktop("2.1 Mesa")
	g.failOn = glVersion
	_, err = Query(g, core.ContextOpenGL)
	assert.ErrorIs(t, err, core.ErrUnknown)
}

func TestFlagNames(t *testing.T) {
	assert.Equal(t, "0", flagNames(0))
	assert.Equal(t, "GL_CONTEXT_FLAG_ROBUST_ACCESS_BIT_ARB | 0x10", flagNames(flagRobustAccess|0x10))
}

func TestWrite(t *testing.T) {
	in, err := Query(desktop("4.5 (Core Profile) Mesa 23.0"), core.ContextOpenGL)
	require.NoError(t, err)
	var b strings.Builder
	in.Write(&b, true)
	out := b.String()
	assert.Contains(t, out, "OpenGL renderer string: llvmpipe\n")
	assert.Contains(t, out, "OpenGL context profile: core\n")
	assert.Contains(t, out, "OpenGL extensions: GL_ARB_one GL_ARB_two\n")
}
