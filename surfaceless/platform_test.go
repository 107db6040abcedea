package surfaceless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/present"
)

func fakeOpener(opened *[]string) Opener {
	return func(o *options.Options) (Native, error) {
		*opened = append(*opened, o.Device)
		return newFakeNative(nil), nil
	}
}

func TestNewPlatformWithoutNative(t *testing.T) {
	_, err := NewPlatform(core.PlatformSurfaceless, options.Default(), nil)
	assert.ErrorIs(t, err, core.ErrBuiltWithout)
}

func TestConnectDeviceOverride(t *testing.T) {
	var opened []string
	p, err := NewPlatform(core.PlatformSurfaceless, options.Default(), fakeOpener(&opened))
	require.NoError(t, err)
	assert.Equal(t, core.PlatformSurfaceless, p.Kind())

	_, err = p.Connect("")
	require.NoError(t, err)
	_, err = p.Connect("/dev/dri/renderD129")
	require.NoError(t, err)
	assert.Equal(t, []string{options.DefaultRenderDevice, "/dev/dri/renderD129"}, opened)
}

func TestPlatformMakeCurrentChecksDisplay(t *testing.T) {
	var opened []string
	p, err := NewPlatform(core.PlatformSurfaceless, options.Default(), fakeOpener(&opened))
	require.NoError(t, err)
	d1, err := p.Connect("")
	require.NoError(t, err)
	d2, err := p.Connect("")
	require.NoError(t, err)

	cfg, err := d1.ChooseConfig(core.DefaultConfigAttrs(core.ContextOpenGLES2))
	require.NoError(t, err)
	ctx, err := cfg.CreateContext(nil)
	require.NoError(t, err)
	win, err := cfg.CreateWindow(8, 8)
	require.NoError(t, err)

	assert.ErrorIs(t, p.MakeCurrent(d2, win, ctx), core.ErrBadDisplayMatch)
	require.NoError(t, platform.MakeCurrent(p, d1, win, ctx))
	cur := platform.GetCurrent()
	assert.Same(t, ctx, cur.Context)
	assert.Equal(t, present.None, d1.(*Display).Mode())

	require.NoError(t, ctx.Destroy())
	assert.Nil(t, platform.GetCurrent().Context)
}
