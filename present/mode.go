// Package present puts rendered buffers on screen: by page flip, by copy
// into a scanout pair then flip, or not at all.
package present

import (
	"fmt"
	"strings"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
)

// Mode selects a presentation strategy.
type Mode int

const (
	// None renders only; buffers are released straight after the swap.
	None Mode = iota
	// Flip scans the rendered buffer out directly.
	Flip
	// Copy copies the rendered buffer into a scanout pair and flips that.
	Copy
	// Legacy neither locks nor releases surface buffers.
	Legacy
)

var modeNames = [...]string{
	None:   "none",
	Flip:   "flip",
	Copy:   "copy",
	Legacy: "legacy",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts the mode names and the single letters O, F and C.
// The empty string selects None.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n":
		return None, nil
	case "flip", "f":
		return Flip, nil
	case "copy", "c":
		return Copy, nil
	case "legacy", "o":
		return Legacy, nil
	}
	return None, core.Errorf(core.BadParameter, "unknown presentation mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// UsageFlags are the allocation flags for rendering surfaces. Only Flip
// scans rendered buffers out directly.
func (m Mode) UsageFlags() uint32 {
	if m == Flip {
		return slbuf.UseRendering | slbuf.UseScanout
	}
	return slbuf.UseRendering
}

// FormatFlags are the flags a buffer format is chosen against. Copy
// allocates its scanout pair in the rendered format, so every mode that
// drives an output needs a scanout format.
func (m Mode) FormatFlags() uint32 {
	if m.NeedsDisplay() {
		return m.UsageFlags() | slbuf.UseScanout
	}
	return m.UsageFlags()
}

// LocksBuffers reports whether swaps lock the surface's front buffer.
func (m Mode) LocksBuffers() bool { return m != Legacy }

// NeedsDisplay reports whether the mode drives a DRM output.
func (m Mode) NeedsDisplay() bool { return m == Flip || m == Copy }
