//go:build linux

package sharedmemory

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOpen(t *testing.T) {
	if _, err := os.Stat(shmDir); err != nil {
		t.Skip("no /dev/shm")
	}
	name := fmt.Sprintf("glplatform-test-%d", os.Getpid())
	owner, err := Create(name, 4096)
	require.NoError(t, err)

	client, err := Open("/"+name, 4096)
	require.NoError(t, err)

	_, err = owner.WriteAt([]byte{1, 2, 3}, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, client.Bytes()[100:103])

	_, err = Open(name, 8192)
	assert.Error(t, err)

	require.NoError(t, client.Close())
	_, err = os.Stat(shmDir + name)
	assert.NoError(t, err, "client close keeps the region")

	require.NoError(t, owner.Close())
	_, err = os.Stat(shmDir + name)
	assert.True(t, os.IsNotExist(err))
}

func TestBadNames(t *testing.T) {
	for _, name := range []string{"", "/", "a/b"} {
		_, err := Create(name, 16)
		assert.Error(t, err, name)
	}
	_, err := Create("glplatform-zero", 0)
	assert.Error(t, err)
}
