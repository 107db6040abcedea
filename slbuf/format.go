package slbuf

import (
	"github.com/richinsley/glplatform/core"
)

func fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// Pixel formats shared by GBM and DRM (both use fourcc codes).
var (
	FormatXRGB8888    = fourcc('X', 'R', '2', '4')
	FormatARGB8888    = fourcc('A', 'R', '2', '4')
	FormatXBGR8888    = fourcc('X', 'B', '2', '4')
	FormatABGR8888    = fourcc('A', 'B', '2', '4')
	FormatRGB565      = fourcc('R', 'G', '1', '6')
	FormatXRGB2101010 = fourcc('X', 'R', '3', '0')
	FormatARGB2101010 = fourcc('A', 'R', '3', '0')
)

// Legacy GBM format enums that predate fourcc codes.
const (
	gbmBOFormatXRGB8888 = 0
	gbmBOFormatARGB8888 = 1
)

// GBM buffer usage flags.
const (
	UseScanout   uint32 = 1 << 0
	UseCursor    uint32 = 1 << 1
	UseRendering uint32 = 1 << 2
	UseWrite     uint32 = 1 << 3
	UseLinear    uint32 = 1 << 4
)

// GL depth/stencil renderbuffer formats.
const (
	DepthComponent16 uint32 = 0x81A5
	DepthComponent24 uint32 = 0x81A6
	DepthComponent32 uint32 = 0x81A7
	Depth24Stencil8  uint32 = 0x88F0
)

// DRMFormat maps a GBM format to the DRM fourcc the kernel expects.
func DRMFormat(gbmFormat uint32) uint32 {
	switch gbmFormat {
	case gbmBOFormatXRGB8888:
		return FormatXRGB8888
	case gbmBOFormatARGB8888:
		return FormatARGB8888
	}
	return gbmFormat
}

// Param describes the buffers a window draws into.
type Param struct {
	Width  uint32
	Height uint32

	AlphaSize int
	RedSize   int
	GreenSize int
	BlueSize  int

	Depth   bool
	Stencil bool

	DepthStencilFormat uint32

	GBMFormat uint32
	GBMFlags  uint32
	DRMFormat uint32
}

// FormatChecker reports whether the allocator can create buffers of a
// format with the given usage flags.
type FormatChecker interface {
	IsFormatSupported(format, flags uint32) bool
}

// ScanoutFormat reports whether a buffer of format f can be registered as
// a kernel framebuffer.
func ScanoutFormat(f uint32) bool {
	return f == FormatXRGB8888 || f == FormatABGR8888
}

// ChooseFormat picks p.GBMFormat and p.DRMFormat from the channel sizes.
// Larger channels are never silently narrowed; smallerOK permits RGB565
// for 5/6/5 requests. With UseScanout set only ScanoutFormat formats are
// candidates.
func ChooseFormat(p *Param, dev FormatChecker, smallerOK bool) error {
	var candidates []uint32
	switch {
	case p.RedSize <= 8 && p.GreenSize <= 8 && p.BlueSize <= 8 && p.AlphaSize == 0:
		if smallerOK && p.RedSize <= 5 && p.GreenSize <= 6 && p.BlueSize <= 5 {
			candidates = append(candidates, FormatRGB565)
		}
		candidates = append(candidates, FormatXRGB8888, FormatXBGR8888)
	case p.RedSize <= 8 && p.GreenSize <= 8 && p.BlueSize <= 8 && p.AlphaSize <= 8:
		candidates = append(candidates, FormatARGB8888, FormatABGR8888)
	case p.RedSize <= 10 && p.GreenSize <= 10 && p.BlueSize <= 10 && p.AlphaSize == 0:
		candidates = append(candidates, FormatXRGB2101010)
	case p.RedSize <= 10 && p.GreenSize <= 10 && p.BlueSize <= 10 && p.AlphaSize <= 2:
		candidates = append(candidates, FormatARGB2101010)
	}
	for _, f := range candidates {
		if p.GBMFlags&UseScanout != 0 && !ScanoutFormat(f) {
			continue
		}
		if dev == nil || dev.IsFormatSupported(f, p.GBMFlags) {
			p.GBMFormat = f
			p.DRMFormat = DRMFormat(f)
			return nil
		}
	}
	return core.Errorf(core.UnsupportedOnPlatform,
		"no buffer format for r%d g%d b%d a%d", p.RedSize, p.GreenSize, p.BlueSize, p.AlphaSize)
}

// ChooseDepthStencil returns the renderbuffer format for a depth/stencil
// request. Any stencil forces a packed depth24/stencil8 buffer.
func ChooseDepthStencil(depth, stencil int) uint32 {
	switch {
	case stencil > 0:
		return Depth24Stencil8
	case depth <= 16:
		return DepthComponent16
	case depth <= 24:
		return DepthComponent24
	}
	return DepthComponent32
}
