package cliflags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/present"
)

func parse(t *testing.T, args ...string) (*options.Options, error) {
	t.Helper()
	var (
		got    *options.Options
		optErr error
	)
	app := &cli.App{
		Name:  "test",
		Flags: Common,
		Action: func(ctx *cli.Context) error {
			got, optErr = Options(ctx)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return got, optErr
}

func TestOptionsDefaults(t *testing.T) {
	o, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, core.PlatformSurfaceless, o.Platform)
	assert.Equal(t, present.None, o.Present)
	assert.Equal(t, options.DefaultRenderDevice, o.Device)
	assert.True(t, o.WaitVSync)
}

func TestOptionsFlags(t *testing.T) {
	o, err := parse(t, "-p", "gbm", "-a", "gles3", "--present", "F", "--slots", "4", "--no-vsync")
	require.NoError(t, err)
	assert.Equal(t, core.PlatformGBM, o.Platform)
	assert.Equal(t, core.ContextOpenGLES3, o.API)
	assert.Equal(t, present.Flip, o.Present)
	assert.Equal(t, options.DefaultCardDevice, o.Device)
	assert.Equal(t, 4, o.Slots)
	assert.False(t, o.WaitVSync)
}

func TestOptionsRejects(t *testing.T) {
	for _, args := range [][]string{
		{"--platform", "wayland"},
		{"--api", "vulkan"},
		{"--present", "X"},
		{"--slots", "1"},
		{"--platform", "null", "--present", "flip"},
	} {
		_, err := parse(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestOptionsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glplatform.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
platform = "surfaceless"
present = "copy"
device = "/dev/dri/card1"
`), 0o644))

	o, err := parse(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, present.Copy, o.Present)
	assert.Equal(t, "/dev/dri/card1", o.Device)

	// an explicit device survives a mode change
	o, err = parse(t, "--config", path, "--present", "none")
	require.NoError(t, err)
	assert.Equal(t, present.None, o.Present)
	assert.Equal(t, "/dev/dri/card1", o.Device)
}

func TestOptionsDerivedDeviceFollowsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glplatform.toml")
	require.NoError(t, os.WriteFile(path, []byte(`present = "flip"`), 0o644))

	o, err := parse(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, options.DefaultCardDevice, o.Device)

	o, err = parse(t, "--config", path, "--present", "none")
	require.NoError(t, err)
	assert.Equal(t, options.DefaultRenderDevice, o.Device)
}
