// Package tiling copies pixel data between GEM buffers with the GPU's
// pread/pwrite interface, honouring the buffers' tiling layout.
package tiling

import (
	"fmt"

	"github.com/richinsley/glplatform/core"
)

// Mode is an i915 tiling layout.
type Mode uint32

const (
	None Mode = 0
	X    Mode = 1
	Y    Mode = 2
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case X:
		return "x"
	case Y:
		return "y"
	}
	return fmt.Sprintf("Mode(%d)", uint32(m))
}

// Memory is the kernel interface for reading and writing GEM objects.
type Memory interface {
	Tiling(handle uint32) (Mode, error)
	Pread(handle uint32, offset uint64, p []byte) error
	Pwrite(handle uint32, offset uint64, p []byte) error
}

// Surface is a GEM object with a row layout.
type Surface interface {
	Handle() uint32
	Stride() uint32
	Height() uint32
}

// RowsPerChunk is the number of rows that form one contiguous block in
// layout m.
func RowsPerChunk(m Mode) (uint32, error) {
	switch m {
	case None:
		return 1, nil
	case X:
		return 8, nil
	}
	return 0, core.Errorf(core.UnknownError, "unsupported tiling mode %s", m)
}

// Copy copies the overlapping rows of src into dst a row group at a time.
// Both objects must share a supported tiling mode; otherwise nothing is
// read or written.
func Copy(mem Memory, dst, src Surface) error {
	srcMode, err := mem.Tiling(src.Handle())
	if err != nil {
		return core.Wrap(core.UnknownError, err, "get source tiling")
	}
	dstMode, err := mem.Tiling(dst.Handle())
	if err != nil {
		return core.Wrap(core.UnknownError, err, "get destination tiling")
	}
	if srcMode != dstMode {
		return core.Errorf(core.UnknownError, "tiling mismatch: source %s, destination %s", srcMode, dstMode)
	}
	rows, err := RowsPerChunk(srcMode)
	if err != nil {
		return err
	}

	srcStride, dstStride := uint64(src.Stride()), uint64(dst.Stride())
	chunk := min(srcStride, dstStride) * uint64(rows)
	height := min(src.Height(), dst.Height())
	count := (height + rows - 1) / rows

	buf := make([]byte, chunk)
	for i := uint64(0); i < uint64(count); i++ {
		if err := mem.Pread(src.Handle(), i*srcStride*uint64(rows), buf); err != nil {
			core.Logger().Warn("tiling: pread", "handle", src.Handle(), "err", err)
			return core.Wrap(core.UnknownError, err, "gem pread")
		}
		if err := mem.Pwrite(dst.Handle(), i*dstStride*uint64(rows), buf); err != nil {
			core.Logger().Warn("tiling: pwrite", "handle", dst.Handle(), "err", err)
			return core.Wrap(core.UnknownError, err, "gem pwrite")
		}
	}
	return nil
}
