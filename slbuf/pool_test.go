package slbuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/slbuf/slbuftest"
)

func newFuncs() (*slbuf.Funcs, *slbuftest.Allocator) {
	alloc := &slbuftest.Allocator{}
	return &slbuf.Funcs{Alloc: alloc, GL: &slbuftest.GL{}}, alloc
}

func testParam() *slbuf.Param {
	return &slbuf.Param{
		Width: 32, Height: 16,
		GBMFormat: slbuf.FormatXRGB8888,
		GBMFlags:  slbuf.UseRendering,
	}
}

func TestGetBufferExhaustion(t *testing.T) {
	fn, alloc := newFuncs()
	slots := make([]*slbuf.Buffer, 2)

	a, err := slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)
	assert.Same(t, a, slots[0])

	b, err := slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)
	assert.Same(t, b, slots[1])
	assert.NotSame(t, a, b)

	_, err = slbuf.GetBuffer(slots, testParam(), fn)
	assert.ErrorIs(t, err, slbuf.ErrExhausted)
	assert.ErrorIs(t, err, core.ErrUnknown)
	assert.Equal(t, core.UnknownError, core.CodeOf(err))
	assert.Len(t, alloc.Created, 2)
}

func TestGetBufferReusesReleased(t *testing.T) {
	fn, alloc := newFuncs()
	slots := make([]*slbuf.Buffer, 3)

	a, err := slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)
	b, err := slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)

	b.Release()
	again, err := slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)
	assert.Same(t, b, again)

	a.Release()
	again, err = slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Len(t, alloc.Created, 2)
	assert.Nil(t, slots[2])
}

func TestGetBufferNeverExceedsCapacity(t *testing.T) {
	fn, alloc := newFuncs()
	slots := make([]*slbuf.Buffer, 3)
	var held []*slbuf.Buffer
	for i := 0; i < 20; i++ {
		b, err := slbuf.GetBuffer(slots, testParam(), fn)
		if err != nil {
			require.ErrorIs(t, err, slbuf.ErrExhausted)
			require.Len(t, held, 3)
			held[i%3].Release()
			continue
		}
		if i%4 == 0 {
			b.Release()
		} else {
			held = appendUnique(held, b)
		}
	}
	assert.LessOrEqual(t, len(alloc.Created), 3)
}

func appendUnique(s []*slbuf.Buffer, b *slbuf.Buffer) []*slbuf.Buffer {
	for _, x := range s {
		if x == b {
			return s
		}
	}
	return append(s, b)
}

func TestGetBufferAllocFailure(t *testing.T) {
	fn, alloc := newFuncs()
	alloc.Fail = true
	slots := make([]*slbuf.Buffer, 2)
	_, err := slbuf.GetBuffer(slots, testParam(), fn)
	assert.ErrorIs(t, err, core.ErrBadAlloc)
	assert.Nil(t, slots[0])
}

func TestForgetAndDestroyAll(t *testing.T) {
	fn, alloc := newFuncs()
	slots := make([]*slbuf.Buffer, 2)
	a, err := slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)
	_, err = slbuf.GetBuffer(slots, testParam(), fn)
	require.NoError(t, err)

	assert.True(t, slbuf.Forget(slots, a))
	assert.Nil(t, slots[0])
	assert.False(t, slbuf.Forget(slots, a))

	slbuf.DestroyAll(slots)
	assert.Nil(t, slots[1])
	assert.False(t, alloc.Created[0].Destroyed)
	assert.True(t, alloc.Created[1].Destroyed)
}
