//go:build cgo

package capture

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/glplatform/core"
)

// Reader copies the bound read framebuffer into a ring of pixel pack
// buffers and hands back frames a few swaps late. It needs GL 3.0 or
// GLES 3.0 and a current context with go-gl initialised.
type Reader struct {
	width  int
	height int
	pbos   []uint32
	ring   ring
	pts    int64
}

// NewReader allocates numPBOs buffers, at least two.
func NewReader(width, height, numPBOs int) (*Reader, error) {
	if width <= 0 || height <= 0 {
		return nil, core.Errorf(core.BadParameter, "reader size %dx%d", width, height)
	}
	if numPBOs < 2 {
		numPBOs = 2
	}
	r := &Reader{
		width:  width,
		height: height,
		pbos:   make([]uint32, numPBOs),
		ring:   ring{n: numPBOs},
	}
	size := r.frameSize()
	gl.GenBuffers(int32(len(r.pbos)), &r.pbos[0])
	for _, pbo := range r.pbos {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, pbo)
		gl.BufferData(gl.PIXEL_PACK_BUFFER, size, nil, gl.STREAM_READ)
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		r.Destroy()
		return nil, core.Errorf(core.UnknownError, "allocating pixel buffers: GL error 0x%x", e)
	}
	return r, nil
}

func (r *Reader) frameSize() int { return r.width * r.height * 4 }

// Read starts reading the current frame and returns the oldest frame
// in flight, or nil while the ring is still filling.
func (r *Reader) Read() (*Frame, error) {
	write, read, ok := r.ring.advance()

	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, r.pbos[write])
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, nil)
	cur := r.pts
	r.pts++
	if !ok {
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
		return nil, nil
	}
	f, err := r.mapFrame(read, cur-int64(r.ring.n-1))
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	return f, err
}

// Drain returns the frames still held in the ring, oldest first.
func (r *Reader) Drain() ([]*Frame, error) {
	pending := r.ring.pending()
	frames := make([]*Frame, 0, len(pending))
	for i, idx := range pending {
		f, err := r.mapFrame(idx, r.pts-int64(len(pending)-i))
		if err != nil {
			gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
			return frames, err
		}
		frames = append(frames, f)
	}
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	r.ring.filled = 0
	return frames, nil
}

func (r *Reader) mapFrame(idx int, pts int64) (*Frame, error) {
	size := r.frameSize()
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, r.pbos[idx])
	ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, size, gl.MAP_READ_BIT)
	if ptr == nil {
		return nil, fmt.Errorf("failed to map pixel buffer %d", idx)
	}
	pixels := make([]byte, size)
	copy(pixels, unsafe.Slice((*byte)(ptr), size))
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	return &Frame{Pixels: pixels, PTS: pts}, nil
}

// Destroy releases the pixel buffers.
func (r *Reader) Destroy() {
	if len(r.pbos) == 0 {
		return
	}
	gl.DeleteBuffers(int32(len(r.pbos)), &r.pbos[0])
	r.pbos = nil
}
