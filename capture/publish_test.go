package capture

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/sharedmemory"
)

func TestPublishRoundTrip(t *testing.T) {
	mem := sharedmemory.Anonymous(SharedFrameSize(2, 2))
	p, err := NewPublisher(mem, 2, 2)
	require.NoError(t, err)

	f, err := ReadShared(mem)
	require.NoError(t, err)
	assert.Nil(t, f, "nothing published yet")

	require.NoError(t, p.Publish(&Frame{Pixels: bytes.Repeat([]byte{7}, 16), PTS: 41}))
	require.NoError(t, p.Publish(&Frame{Pixels: bytes.Repeat([]byte{9}, 16), PTS: 42}))

	f, err = ReadShared(mem)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, int64(42), f.PTS)
	assert.Equal(t, bytes.Repeat([]byte{9}, 16), f.Pixels)
	assert.Equal(t, uint64(4), *sequence(mem.Bytes()))
}

func TestPublishRejects(t *testing.T) {
	_, err := NewPublisher(sharedmemory.Anonymous(16), 2, 2)
	assert.Error(t, err)

	mem := sharedmemory.Anonymous(SharedFrameSize(2, 2))
	p, err := NewPublisher(mem, 2, 2)
	require.NoError(t, err)
	assert.Error(t, p.Publish(&Frame{Pixels: make([]byte, 4)}))

	_, err = ReadShared(sharedmemory.Anonymous(64))
	assert.Error(t, err, "missing magic")
}

func TestReadSharedTornWrite(t *testing.T) {
	mem := sharedmemory.Anonymous(SharedFrameSize(1, 1))
	_, err := NewPublisher(mem, 1, 1)
	require.NoError(t, err)
	*sequence(mem.Bytes()) = 3
	_, err = ReadShared(mem)
	assert.Error(t, err)
}
