package capture

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/sharedmemory"
)

// Shared frame layout:
//
//	0  magic "GLPF"
//	4  width
//	8  height
//	12 reserved
//	16 sequence, odd while a frame is being written
//	24 pts
//	32 RGBA pixels
const (
	frameMagic     = "GLPF"
	frameHeader    = 32
	offSequence    = 16
	offPTS         = 24
	publishRetries = 4
)

// SharedFrameSize is the region size needed for width x height frames.
func SharedFrameSize(width, height int) int {
	return frameHeader + width*height*4
}

// Publisher exposes the latest frame in a shared memory region.
type Publisher struct {
	mem    *sharedmemory.Memory
	width  int
	height int
	seq    uint64
}

func NewPublisher(mem *sharedmemory.Memory, width, height int) (*Publisher, error) {
	if mem.Size() < SharedFrameSize(width, height) {
		return nil, core.Errorf(core.BadParameter, "shared region of %d bytes is too small for %dx%d", mem.Size(), width, height)
	}
	b := mem.Bytes()
	copy(b[0:4], frameMagic)
	binary.LittleEndian.PutUint32(b[4:], uint32(width))
	binary.LittleEndian.PutUint32(b[8:], uint32(height))
	atomic.StoreUint64(sequence(b), 0)
	return &Publisher{mem: mem, width: width, height: height}, nil
}

func sequence(b []byte) *uint64 {
	return (*uint64)(unsafe.Pointer(&b[offSequence]))
}

// Publish copies f into the region.
func (p *Publisher) Publish(f *Frame) error {
	size := p.width * p.height * 4
	if len(f.Pixels) != size {
		return core.Errorf(core.BadParameter, "frame %d: %d bytes, want %d", f.PTS, len(f.Pixels), size)
	}
	b := p.mem.Bytes()
	seq := sequence(b)
	atomic.StoreUint64(seq, p.seq+1)
	binary.LittleEndian.PutUint64(b[offPTS:], uint64(f.PTS))
	copy(b[frameHeader:], f.Pixels)
	p.seq += 2
	atomic.StoreUint64(seq, p.seq)
	return nil
}

// ReadShared copies the latest complete frame out of a region written
// by a Publisher. It returns nil when nothing has been published yet.
func ReadShared(mem *sharedmemory.Memory) (*Frame, error) {
	b := mem.Bytes()
	if len(b) < frameHeader || string(b[0:4]) != frameMagic {
		return nil, core.Errorf(core.BadParameter, "not a shared frame region")
	}
	width := int(binary.LittleEndian.Uint32(b[4:]))
	height := int(binary.LittleEndian.Uint32(b[8:]))
	if len(b) < SharedFrameSize(width, height) {
		return nil, core.Errorf(core.BadParameter, "shared region truncated for %dx%d", width, height)
	}
	seq := sequence(b)
	pixels := make([]byte, width*height*4)
	for i := 0; i < publishRetries; i++ {
		before := atomic.LoadUint64(seq)
		if before == 0 {
			return nil, nil
		}
		if before&1 != 0 {
			continue
		}
		pts := int64(binary.LittleEndian.Uint64(b[offPTS:]))
		copy(pixels, b[frameHeader:])
		if atomic.LoadUint64(seq) == before {
			return &Frame{Pixels: pixels, PTS: pts}, nil
		}
	}
	return nil, core.Errorf(core.UnknownError, "shared frame kept changing while read")
}
