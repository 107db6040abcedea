// Package info reports the strings and limits of the current GL context.
package info

import (
	"fmt"
	"io"
	"strings"

	"github.com/richinsley/glplatform/core"
)

// GL enums queried by Query.
const (
	glNoError                = 0
	glInvalidOperation       = 0x0502
	glVendor                 = 0x1F00
	glRenderer               = 0x1F01
	glVersion                = 0x1F02
	glExtensions             = 0x1F03
	glShadingLanguageVersion = 0x8B8C
	glNumExtensions          = 0x821D
	glContextFlags           = 0x821E
	glContextProfileMask     = 0x9126

	flagForwardCompatible = 0x1
	flagDebug             = 0x2
	flagRobustAccess      = 0x4
	profileCore           = 0x1
	profileCompat         = 0x2
)

// GLError stands in for a string that could not be queried.
const GLError = "WFLINFO_GL_ERROR"

// GL is the subset of GL the query needs. A context must be current.
type GL interface {
	GetString(name uint32) string
	GetStringi(name, index uint32) string
	GetInteger(name uint32) int32
	GetError() uint32
}

type Info struct {
	Vendor          string
	Renderer        string
	Version         string
	ShadingLanguage string
	// Profile and ContextFlags are empty unless the context reports them.
	Profile      string
	ContextFlags string
	Extensions   []string
}

func getString(g GL, name uint32) string {
	s := g.GetString(name)
	if g.GetError() != glNoError || s == "" {
		return GLError
	}
	return s
}

// Query reads the context information for api from the current context.
func Query(g GL, api core.ContextAPI) (*Info, error) {
	// drain errors left by earlier calls
	for i := 0; i < 8 && g.GetError() != glNoError; i++ {
	}
	in := &Info{
		Vendor:   getString(g, glVendor),
		Renderer: getString(g, glRenderer),
		Version:  getString(g, glVersion),
	}
	if in.Version == GLError {
		return nil, core.Errorf(core.UnknownError, "glGetString(GL_VERSION) failed")
	}
	version := core.ParseVersion(in.Version)
	desktop := api == core.ContextOpenGL

	if api == core.ContextOpenGLES1 || (desktop && version < 20) {
		in.ShadingLanguage = "None"
	} else {
		in.ShadingLanguage = getString(g, glShadingLanguageVersion)
	}
	if desktop && version >= 31 {
		in.ContextFlags = flagNames(g.GetInteger(glContextFlags))
	}
	if desktop && version >= 32 {
		switch g.GetInteger(glContextProfileMask) {
		case profileCore:
			in.Profile = "core"
		case profileCompat:
			in.Profile = "compat"
		default:
			in.Profile = "unknown"
		}
	}
	in.Extensions = extensions(g, version)
	return in, nil
}

func flagNames(flags int32) string {
	if flags == 0 {
		return "0"
	}
	var names []string
	for _, f := range []struct {
		bit  int32
		name string
	}{
		{flagForwardCompatible, "GL_CONTEXT_FLAG_FORWARD_COMPATIBLE_BIT"},
		{flagDebug, "GL_CONTEXT_FLAG_DEBUG_BIT"},
		{flagRobustAccess, "GL_CONTEXT_FLAG_ROBUST_ACCESS_BIT_ARB"},
	} {
		if flags&f.bit != 0 {
			names = append(names, f.name)
			flags &^= f.bit
		}
	}
	if flags != 0 {
		names = append(names, fmt.Sprintf("%#x", flags))
	}
	return strings.Join(names, " | ")
}

// extensions uses the indexed query from GL/ES 3.0 on, where the single
// string is deprecated.
func extensions(g GL, version int) []string {
	if version >= 30 {
		n := g.GetInteger(glNumExtensions)
		if g.GetError() == glNoError {
			out := make([]string, 0, n)
			for i := int32(0); i < n; i++ {
				s := g.GetStringi(glExtensions, uint32(i))
				if g.GetError() != glNoError {
					s = GLError
				}
				out = append(out, s)
			}
			return out
		}
	}
	s := getString(g, glExtensions)
	if s == GLError {
		return []string{GLError}
	}
	return strings.Fields(s)
}

// Write prints the information in the classic wflinfo layout.
func (in *Info) Write(w io.Writer, verbose bool) {
	fmt.Fprintf(w, "OpenGL vendor string: %s\n", in.Vendor)
	fmt.Fprintf(w, "OpenGL renderer string: %s\n", in.Renderer)
	fmt.Fprintf(w, "OpenGL version string: %s\n", in.Version)
	if in.Profile != "" {
		fmt.Fprintf(w, "OpenGL context profile: %s\n", in.Profile)
	}
	if in.ContextFlags != "" {
		fmt.Fprintf(w, "OpenGL context flags: %s\n", in.ContextFlags)
	}
	fmt.Fprintf(w, "OpenGL shading language version string: %s\n", in.ShadingLanguage)
	if verbose {
		fmt.Fprintf(w, "OpenGL extensions: %s\n", strings.Join(in.Extensions, " "))
	}
}
