package null

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/surfaceless"
)

func TestNewForcesRenderOnly(t *testing.T) {
	o := options.Default()
	o.Present = present.Flip
	o.Device = options.DefaultCardDevice

	var got *options.Options
	p, err := NewWithOpener(o, func(o *options.Options) (surfaceless.Native, error) {
		got = o
		return nil, core.Errorf(core.UnknownError, "no device in tests")
	})
	require.NoError(t, err)
	assert.Equal(t, core.PlatformNull, p.Kind())

	_, err = p.Connect("")
	assert.ErrorIs(t, err, core.ErrUnknown)
	require.NotNil(t, got)
	assert.Equal(t, present.None, got.Present)
	assert.Equal(t, options.DefaultRenderDevice, got.Device)

	// caller options are untouched
	assert.Equal(t, present.Flip, o.Present)
}

func TestNewWithoutNative(t *testing.T) {
	_, err := NewWithOpener(options.Default(), nil)
	assert.ErrorIs(t, err, core.ErrBuiltWithout)
}
