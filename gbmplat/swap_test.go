package gbmplat

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
)

// ring hands out its buffers in turn, like a GBM surface after each swap.
type ring struct {
	bos      []*slbuftest.BO
	next     int
	locked   map[slbuf.BufferObject]bool
	released []slbuf.BufferObject
	fail     bool
}

func newRing(n int, w, h uint32) *ring {
	r := &ring{locked: map[slbuf.BufferObject]bool{}}
	for i := 0; i < n; i++ {
		r.bos = append(r.bos, slbuftest.NewBO(w, h, slbuf.FormatXRGB8888))
	}
	return r
}

func (r *ring) LockFrontBuffer() (slbuf.BufferObject, error) {
	if r.fail {
		return nil, errors.New("no front buffer")
	}
	bo := r.bos[r.next%len(r.bos)]
	r.next++
	r.locked[bo] = true
	return bo, nil
}

func (r *ring) ReleaseBuffer(bo slbuf.BufferObject) {
	delete(r.locked, bo)
	r.released = append(r.released, bo)
}

func (r *ring) HasFreeBuffers() bool { return len(r.locked) < len(r.bos) }

func TestSwapNoneReleasesImmediately(t *testing.T) {
	r := newRing(2, 16, 16)
	c := &swapChain{mode: present.None, surf: r, gl: &slbuftest.GL{}}
	require.NoError(t, c.afterSwap(present.NewNone()))
	require.NoError(t, c.afterSwap(present.NewNone()))
	assert.Empty(t, r.locked)
	assert.Len(t, r.released, 2)
}

func TestSwapLegacyLeavesSurfaceAlone(t *testing.T) {
	r := newRing(2, 16, 16)
	r.fail = true
	c := &swapChain{mode: present.Legacy, surf: r}
	require.NoError(t, c.afterSwap(present.NewNone()))
	assert.Zero(t, r.next)
}

func TestSwapFlipReleasesWhenReplaced(t *testing.T) {
	dev := kmstest.NewDevice(16, 16)
	drv := kms.NewDriver(dev)
	r := newRing(3, 16, 16)
	c := &swapChain{mode: present.Flip, surf: r, gl: &slbuftest.GL{}}
	s := present.NewFlip(drv)

	require.NoError(t, c.afterSwap(s))
	require.NoError(t, c.afterSwap(s))
	// the first flip completed before the second was queued
	assert.Same(t, r.bos[0], drv.OnScreen().BO())
	assert.True(t, r.locked[r.bos[0]])

	require.NoError(t, c.afterSwap(s))
	assert.Equal(t, []slbuf.BufferObject{r.bos[0]}, r.released)
}

func TestSwapFlipFailureReleases(t *testing.T) {
	dev := kmstest.NewDevice(16, 16)
	dev.FailPageFlip = true
	r := newRing(2, 16, 16)
	c := &swapChain{mode: present.Flip, surf: r, gl: &slbuftest.GL{}}
	assert.Error(t, c.afterSwap(present.NewFlip(kms.NewDriver(dev))))
	assert.Empty(t, r.locked)
}

func TestSwapLockFailure(t *testing.T) {
	r := newRing(2, 16, 16)
	r.fail = true
	c := &swapChain{mode: present.None, surf: r}
	assert.Error(t, c.afterSwap(present.NewNone()))
}

func TestBeforeSwapWaitsWhenSurfaceIsFull(t *testing.T) {
	dev := kmstest.NewDevice(16, 16)
	drv := kms.NewDriver(dev)
	r := newRing(2, 16, 16)
	c := &swapChain{mode: present.Flip, surf: r, gl: &slbuftest.GL{}}
	s := present.NewFlip(drv)

	require.NoError(t, c.beforeSwap(drv))
	require.NoError(t, c.afterSwap(s))
	require.NoError(t, c.afterSwap(s))
	require.False(t, r.HasFreeBuffers())
	require.NotNil(t, drv.Pending())

	require.NoError(t, c.beforeSwap(drv))
	assert.Nil(t, drv.Pending())
	assert.True(t, r.HasFreeBuffers())
}

func TestDetachForgetsSurfaceBuffers(t *testing.T) {
	dev := kmstest.NewDevice(16, 16)
	drv := kms.NewDriver(dev)
	r := newRing(3, 16, 16)
	c := &swapChain{mode: present.Flip, surf: r, gl: &slbuftest.GL{}}
	s := present.NewFlip(drv)
	require.NoError(t, c.afterSwap(s))
	require.NoError(t, c.afterSwap(s))

	other := &swapChain{surf: newRing(1, 16, 16)}
	require.NoError(t, other.detach(drv))
	assert.NotNil(t, drv.OnScreen())

	require.NoError(t, c.detach(drv))
	assert.Nil(t, drv.Pending())
	assert.Nil(t, drv.OnScreen())
	assert.Equal(t, 0, dev.Queued())
}
