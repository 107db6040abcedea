package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/present"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glplatform.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
platform = "gbm"
api = "gles2"
present = "F"
slots = 4
width = 640
height = 480

[record]
output = "out.mp4"
`)
	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.PlatformGBM, o.Platform)
	assert.Equal(t, core.ContextOpenGLES2, o.API)
	assert.Equal(t, present.Flip, o.Present)
	assert.Equal(t, 4, o.Slots)
	assert.Equal(t, DefaultCardDevice, o.Device)
	assert.True(t, o.WaitVSync)
	require.NotNil(t, o.Record)
	assert.Equal(t, 60, o.Record.FPS)
	assert.Equal(t, 3, o.Record.NumPBOs)
	assert.Equal(t, "h264", o.Record.Codec)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":      "colour = 1\n",
		"bad mode":         "present = \"Z\"\n",
		"too few slots":    "slots = 1\n",
		"null with flip":   "platform = \"null\"\npresent = \"flip\"\n",
		"record no output": "[record]\nfps = 30\n",
	}
	for name, body := range tests {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestDefaultDevice(t *testing.T) {
	o := Default()
	require.NoError(t, o.Validate())
	assert.Equal(t, DefaultRenderDevice, o.Device)

	o = Default()
	o.Present = present.Copy
	require.NoError(t, o.Validate())
	assert.Equal(t, DefaultCardDevice, o.Device)
}

func TestSaveRoundTrip(t *testing.T) {
	o := Default()
	o.Present = present.Copy
	o.Width, o.Height = 320, 200
	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, o.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, present.Copy, back.Present)
	assert.Equal(t, 320, back.Width)
	assert.Equal(t, DefaultCardDevice, back.Device)
}
