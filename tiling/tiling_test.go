package tiling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
)

type object struct {
	handle, stride, height uint32
	mode                   Mode
	data                   []byte
}

func (o *object) Handle() uint32 { return o.handle }
func (o *object) Stride() uint32 { return o.stride }
func (o *object) Height() uint32 { return o.height }

type memory struct {
	objects map[uint32]*object
	reads   int
	writes  int
}

func newMemory(objs ...*object) *memory {
	m := &memory{objects: map[uint32]*object{}}
	for _, o := range objs {
		m.objects[o.handle] = o
	}
	return m
}

func (m *memory) Tiling(handle uint32) (Mode, error) {
	o, ok := m.objects[handle]
	if !ok {
		return 0, errors.New("no such object")
	}
	return o.mode, nil
}

func (m *memory) Pread(handle uint32, off uint64, p []byte) error {
	m.reads++
	o := m.objects[handle]
	// reads past the end of the object see zeros, as a GEM object padded
	// to a whole tile would
	for i := range p {
		if int(off)+i < len(o.data) {
			p[i] = o.data[int(off)+i]
		} else {
			p[i] = 0
		}
	}
	return nil
}

func (m *memory) Pwrite(handle uint32, off uint64, p []byte) error {
	m.writes++
	o := m.objects[handle]
	for i := range p {
		if int(off)+i < len(o.data) {
			o.data[int(off)+i] = p[i]
		}
	}
	return nil
}

func newObject(handle, stride, height uint32, mode Mode, fill bool) *object {
	o := &object{handle: handle, stride: stride, height: height, mode: mode, data: make([]byte, stride*height)}
	if fill {
		for i := range o.data {
			o.data[i] = byte(i%251 + 1)
		}
	}
	return o
}

func TestCopyUntiled(t *testing.T) {
	src := newObject(1, 16, 5, None, true)
	dst := newObject(2, 16, 5, None, false)
	mem := newMemory(src, dst)

	require.NoError(t, Copy(mem, dst, src))
	assert.Equal(t, src.data, dst.data)
	assert.Equal(t, 5, mem.reads)
	assert.Equal(t, 5, mem.writes)
}

func TestCopyXTiledRoundsUp(t *testing.T) {
	// 20 rows in 8-row groups: three chunks, the last one partial
	src := newObject(1, 32, 20, X, true)
	dst := newObject(2, 32, 20, X, false)
	mem := newMemory(src, dst)

	require.NoError(t, Copy(mem, dst, src))
	assert.Equal(t, 3, mem.reads)
	assert.Equal(t, src.data, dst.data)
}

func TestCopyUsesNarrowerStride(t *testing.T) {
	src := newObject(1, 16, 4, None, true)
	dst := newObject(2, 8, 3, None, false)
	mem := newMemory(src, dst)

	require.NoError(t, Copy(mem, dst, src))
	assert.Equal(t, 3, mem.writes)
	for row := 0; row < 3; row++ {
		assert.Equal(t, src.data[row*16:row*16+8], dst.data[row*8:row*8+8], "row %d", row)
	}
}

func TestCopyTilingMismatch(t *testing.T) {
	src := newObject(1, 16, 8, X, true)
	dst := newObject(2, 16, 8, Y, false)
	mem := newMemory(src, dst)

	err := Copy(mem, dst, src)
	assert.ErrorIs(t, err, core.ErrUnknown)
	assert.Zero(t, mem.reads)
	assert.Zero(t, mem.writes)
}

func TestCopyUnsupportedTiling(t *testing.T) {
	src := newObject(1, 16, 8, Y, true)
	dst := newObject(2, 16, 8, Y, false)
	mem := newMemory(src, dst)

	assert.Error(t, Copy(mem, dst, src))
	assert.Zero(t, mem.reads)
}

func TestRowsPerChunk(t *testing.T) {
	n, err := RowsPerChunk(None)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)
	n, err = RowsPerChunk(X)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), n)
	_, err = RowsPerChunk(Mode(7))
	assert.Error(t, err)
}
