package present_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/kms"
	"github.com/richinsley/glplatform/kms/kmstest"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/slbuf/slbuftest"
	"github.com/richinsley/glplatform/tiling"
)

func rendered(surf slbuf.Surface, w, h uint32) *slbuf.Buffer {
	b := slbuf.Wrap(slbuftest.NewBO(w, h, slbuf.FormatXRGB8888), surf)
	b.Lock()
	return b
}

func TestNoneReleasesImmediately(t *testing.T) {
	surf := &slbuftest.Surface{}
	s, err := present.New(present.None, present.Deps{})
	require.NoError(t, err)
	b := rendered(surf, 8, 8)
	require.NoError(t, s.Present(b))
	assert.False(t, b.Busy())
	assert.Len(t, surf.Released, 1)
}

func TestFlipReleasesOnCompletion(t *testing.T) {
	dev := kmstest.NewDevice(32, 32)
	drv := kms.NewDriver(dev)
	surf := &slbuftest.Surface{}
	s, err := present.New(present.Flip, present.Deps{Driver: drv})
	require.NoError(t, err)

	a, b := rendered(surf, 32, 32), rendered(surf, 32, 32)
	require.NoError(t, s.Present(a))
	assert.Empty(t, surf.Released)
	require.NoError(t, s.Present(b))
	assert.Empty(t, surf.Released)
	require.NoError(t, drv.WaitPending())
	assert.Equal(t, []slbuf.BufferObject{a.BO()}, surf.Released)
	assert.True(t, b.Busy())
}

func TestFlipFailureReleases(t *testing.T) {
	dev := kmstest.NewDevice(32, 32)
	surf := &slbuftest.Surface{}
	s := present.NewFlip(kms.NewDriver(dev))

	small := rendered(surf, 16, 16)
	assert.Error(t, s.Present(small))
	assert.False(t, small.Busy())
	assert.Len(t, surf.Released, 1)
}

func TestFlipNeedsDriver(t *testing.T) {
	_, err := present.New(present.Flip, present.Deps{})
	assert.Error(t, err)
	_, err = present.New(present.Copy, present.Deps{})
	assert.Error(t, err)
}

type recordingCopy struct {
	pairs [][2]*slbuf.Buffer
	fail  bool
}

func (r *recordingCopy) copy(dst, src *slbuf.Buffer) error {
	if r.fail {
		return errors.New("copy failed")
	}
	r.pairs = append(r.pairs, [2]*slbuf.Buffer{dst, src})
	return nil
}

func TestCopyFlipsScanoutPair(t *testing.T) {
	dev := kmstest.NewDevice(64, 32)
	drv := kms.NewDriver(dev)
	alloc := &slbuftest.Allocator{}
	rc := &recordingCopy{}
	s, err := present.New(present.Copy, present.Deps{Driver: drv, Alloc: alloc, GLCopy: rc.copy})
	require.NoError(t, err)

	surf := &slbuftest.Surface{}
	// rendered buffers may be smaller than the mode
	for i := 0; i < 4; i++ {
		b := rendered(surf, 16, 16)
		require.NoError(t, s.Present(b))
		assert.False(t, b.Busy(), "frame %d", i)
	}
	assert.Len(t, surf.Released, 4)

	require.Len(t, alloc.Created, 2)
	for _, bo := range alloc.Created {
		assert.Equal(t, uint32(64), bo.W)
		assert.Equal(t, uint32(32), bo.H)
		assert.Equal(t, slbuf.FormatXRGB8888, bo.Fourcc)
	}
	assert.Equal(t, slbuf.UseScanout|slbuf.UseRendering, alloc.LastFlags)

	require.Len(t, rc.pairs, 4)
	assert.NotSame(t, rc.pairs[0][0], rc.pairs[1][0])
	assert.Same(t, rc.pairs[0][0], rc.pairs[2][0])
	// a copy never targets the buffer on screen
	assert.NotSame(t, drv.OnScreen(), drv.Pending())

	require.NoError(t, s.Close())
	assert.True(t, alloc.Created[0].Destroyed)
	assert.True(t, alloc.Created[1].Destroyed)
	assert.Nil(t, drv.Pending())
}

func TestCopyFailureReleasesSource(t *testing.T) {
	dev := kmstest.NewDevice(64, 32)
	drv := kms.NewDriver(dev)
	rc := &recordingCopy{fail: true}
	s := present.NewCopy(drv, &slbuftest.Allocator{}, rc.copy)

	surf := &slbuftest.Surface{}
	b := rendered(surf, 64, 32)
	assert.Error(t, s.Present(b))
	assert.False(t, b.Busy())
	assert.Nil(t, drv.Pending())
}

func TestCopyAllocationFailure(t *testing.T) {
	drv := kms.NewDriver(kmstest.NewDevice(64, 32))
	s := present.NewCopy(drv, &slbuftest.Allocator{Fail: true}, (&recordingCopy{}).copy)
	b := rendered(&slbuftest.Surface{}, 64, 32)
	assert.Error(t, s.Present(b))
	assert.False(t, b.Busy())
}

type tiledMemory struct {
	modes map[uint32]tiling.Mode
	reads int
}

func (m *tiledMemory) Tiling(h uint32) (tiling.Mode, error) { return m.modes[h], nil }

func (m *tiledMemory) Pread(h uint32, off uint64, p []byte) error {
	m.reads++
	return nil
}

func (m *tiledMemory) Pwrite(h uint32, off uint64, p []byte) error { return nil }

func TestCopyUsesTiledMemory(t *testing.T) {
	drv := kms.NewDriver(kmstest.NewDevice(64, 32))
	mem := &tiledMemory{modes: map[uint32]tiling.Mode{}}
	glCopy := &recordingCopy{}
	s, err := present.New(present.Copy, present.Deps{
		Driver: drv, Alloc: &slbuftest.Allocator{}, Memory: mem, GLCopy: glCopy.copy,
	})
	require.NoError(t, err)

	b := rendered(&slbuftest.Surface{}, 64, 32)
	require.NoError(t, s.Present(b))
	assert.Equal(t, 32, mem.reads)
	assert.Empty(t, glCopy.pairs)
}
