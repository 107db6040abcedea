package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", None},
		{"none", None},
		{"F", Flip},
		{"flip", Flip},
		{"C", Copy},
		{"Copy", Copy},
		{"O", Legacy},
		{"legacy", Legacy},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseMode("X")
	assert.ErrorIs(t, err, core.ErrBadParameter)
}

func TestModeText(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("copy")))
	assert.Equal(t, Copy, m)
	b, err := Flip.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "flip", string(b))
}

func TestUsageFlags(t *testing.T) {
	assert.Equal(t, slbuf.UseRendering|slbuf.UseScanout, Flip.UsageFlags())
	for _, m := range []Mode{None, Copy, Legacy} {
		assert.Equal(t, slbuf.UseRendering, m.UsageFlags(), m.String())
	}
	assert.False(t, Legacy.LocksBuffers())
	assert.True(t, Copy.LocksBuffers())
	assert.True(t, Copy.NeedsDisplay())
	assert.False(t, None.NeedsDisplay())
}

func TestFormatFlags(t *testing.T) {
	assert.Equal(t, slbuf.UseRendering|slbuf.UseScanout, Flip.FormatFlags())
	assert.Equal(t, slbuf.UseRendering|slbuf.UseScanout, Copy.FormatFlags())
	assert.Equal(t, slbuf.UseRendering, None.FormatFlags())
	assert.Equal(t, slbuf.UseRendering, Legacy.FormatFlags())
}
