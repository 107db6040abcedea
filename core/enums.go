package core

import (
	"fmt"
	"sort"
	"strings"
)

// ContextAPI selects the client API a context is created for.
type ContextAPI int

const (
	ContextOpenGL ContextAPI = iota + 1
	ContextOpenGLES1
	ContextOpenGLES2
	ContextOpenGLES3
)

// Profile is the desktop GL context profile.
type Profile int

const (
	ProfileNone Profile = iota
	ProfileCore
	ProfileCompatibility
)

// PlatformKind names a native windowing backend.
type PlatformKind int

const (
	PlatformGLX PlatformKind = iota + 1
	PlatformX11EGL
	PlatformGBM
	PlatformSurfaceless
	PlatformNull
	PlatformEGL
)

type nameEntry struct {
	name  string
	value int
}

// nameTable is built once at init and sorted by name. Nothing mutates it
// afterwards.
type nameTable struct {
	byName  []nameEntry
	byValue map[int]string
}

func newNameTable(canonical []nameEntry, aliases ...nameEntry) nameTable {
	t := nameTable{byValue: make(map[int]string, len(canonical))}
	for _, e := range canonical {
		t.byValue[e.value] = e.name
	}
	t.byName = append(append(t.byName, canonical...), aliases...)
	sort.Slice(t.byName, func(i, j int) bool { return t.byName[i].name < t.byName[j].name })
	return t
}

func (t nameTable) lookup(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := sort.Search(len(t.byName), func(i int) bool { return t.byName[i].name >= s })
	if i < len(t.byName) && t.byName[i].name == s {
		return t.byName[i].value, true
	}
	return 0, false
}

func (t nameTable) name(v int) (string, bool) {
	s, ok := t.byValue[v]
	return s, ok
}

var (
	apiNames = newNameTable([]nameEntry{
		{"opengl", int(ContextOpenGL)},
		{"opengl_es1", int(ContextOpenGLES1)},
		{"opengl_es2", int(ContextOpenGLES2)},
		{"opengl_es3", int(ContextOpenGLES3)},
	},
		nameEntry{"gl", int(ContextOpenGL)},
		nameEntry{"gles1", int(ContextOpenGLES1)},
		nameEntry{"gles2", int(ContextOpenGLES2)},
		nameEntry{"gles3", int(ContextOpenGLES3)},
	)
	profileNames = newNameTable([]nameEntry{
		{"none", int(ProfileNone)},
		{"core", int(ProfileCore)},
		{"compat", int(ProfileCompatibility)},
	},
		nameEntry{"compatibility", int(ProfileCompatibility)},
	)
	platformNames = newNameTable([]nameEntry{
		{"glx", int(PlatformGLX)},
		{"x11_egl", int(PlatformX11EGL)},
		{"gbm", int(PlatformGBM)},
		{"surfaceless", int(PlatformSurfaceless)},
		{"null", int(PlatformNull)},
		{"egl", int(PlatformEGL)},
	},
		nameEntry{"x11egl", int(PlatformX11EGL)},
		nameEntry{"surfaceless_egl", int(PlatformSurfaceless)},
	)
)

func (a ContextAPI) String() string {
	if s, ok := apiNames.name(int(a)); ok {
		return s
	}
	return fmt.Sprintf("ContextAPI(%d)", int(a))
}

// IsES reports whether a is one of the OpenGL ES APIs.
func (a ContextAPI) IsES() bool {
	return a == ContextOpenGLES1 || a == ContextOpenGLES2 || a == ContextOpenGLES3
}

// ParseContextAPI accepts the canonical names and the short gl/glesN forms.
func ParseContextAPI(s string) (ContextAPI, error) {
	if v, ok := apiNames.lookup(s); ok {
		return ContextAPI(v), nil
	}
	return 0, Errorf(BadParameter, "unknown context api %q", s)
}

func (p Profile) String() string {
	if s, ok := profileNames.name(int(p)); ok {
		return s
	}
	return fmt.Sprintf("Profile(%d)", int(p))
}

func ParseProfile(s string) (Profile, error) {
	if v, ok := profileNames.lookup(s); ok {
		return Profile(v), nil
	}
	return 0, Errorf(BadParameter, "unknown profile %q", s)
}

func (k PlatformKind) String() string {
	if s, ok := platformNames.name(int(k)); ok {
		return s
	}
	return fmt.Sprintf("PlatformKind(%d)", int(k))
}

func ParsePlatform(s string) (PlatformKind, error) {
	if v, ok := platformNames.lookup(s); ok {
		return PlatformKind(v), nil
	}
	return 0, Errorf(BadParameter, "unknown platform %q", s)
}

// MarshalText and UnmarshalText let the kinds live in TOML config files.
func (k PlatformKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PlatformKind) UnmarshalText(b []byte) error {
	v, err := ParsePlatform(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (a ContextAPI) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ContextAPI) UnmarshalText(b []byte) error {
	v, err := ParseContextAPI(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
