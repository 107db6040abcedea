package capture

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
)

func newTestEncoder(t *testing.T, rec options.RecordOptions) *Encoder {
	t.Helper()
	e, err := NewEncoder(rec, 2, 2)
	require.NoError(t, err)
	return e
}

func TestNewEncoderValidates(t *testing.T) {
	_, err := NewEncoder(options.RecordOptions{Output: "out.mp4"}, 0, 4)
	assert.ErrorIs(t, err, core.ErrBadParameter)

	_, err = NewEncoder(options.RecordOptions{}, 4, 4)
	assert.ErrorIs(t, err, core.ErrBadParameter)

	e, err := NewEncoder(options.RecordOptions{Output: "out.mp4", Codec: "h264"}, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 60, e.opts.FPS)
	assert.Equal(t, 3, e.opts.NumPBOs)
}

func TestEncoderArgs(t *testing.T) {
	tests := []struct {
		name   string
		rec    options.RecordOptions
		goos   string
		codec  string
		tag    bool
		format string
	}{
		{"h264 linux", options.RecordOptions{Output: "a.mp4", Codec: "h264"}, "linux", "libx264", false, ""},
		{"hevc linux mp4", options.RecordOptions{Output: "a.mp4", Codec: "hevc"}, "linux", "libx265", true, ""},
		{"hevc darwin", options.RecordOptions{Output: "a.mkv", Codec: "hevc"}, "darwin", "hevc_videotoolbox", false, ""},
		{"h264 darwin", options.RecordOptions{Output: "a.mp4", Codec: "h264"}, "darwin", "h264_videotoolbox", false, ""},
		{"explicit encoder", options.RecordOptions{Output: "a.ts", Codec: "h264_nvenc"}, "linux", "h264_nvenc", false, "mpegts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEncoder(t, tt.rec)
			in, out := e.Args(tt.goos)
			assert.Equal(t, "rawvideo", in["f"])
			assert.Equal(t, "rgba", in["pix_fmt"])
			assert.Equal(t, "2x2", in["s"])
			assert.Equal(t, tt.codec, out["c:v"])
			assert.Equal(t, "vflip", out["vf"])
			_, tagged := out["tag:v"]
			assert.Equal(t, tt.tag, tagged)
			if tt.format == "" {
				assert.NotContains(t, out, "f")
			} else {
				assert.Equal(t, tt.format, out["f"])
			}
		})
	}
}

func TestEncoderCommandLine(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264", FPS: 30})
	args := strings.Join(e.command("linux").GetArgs(), " ")
	assert.Contains(t, args, "-i pipe:")
	assert.Contains(t, args, "-framerate 30")
	assert.Contains(t, args, "clip.mp4")
	assert.Contains(t, args, "-y")
}

func TestEncoderWritesFrames(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264"})
	var got bytes.Buffer
	e.run = func(_ *ffmpeg.Stream, r io.Reader) error {
		_, err := io.Copy(&got, r)
		return err
	}
	require.NoError(t, e.Start("linux"))
	for i := 0; i < 3; i++ {
		assert.True(t, e.Send(&Frame{Pixels: bytes.Repeat([]byte{byte(i)}, 16), PTS: int64(i)}))
	}
	require.NoError(t, e.Close())
	assert.Equal(t, 48, got.Len())
	assert.Equal(t, byte(2), got.Bytes()[47])
	require.NoError(t, e.Close())
}

func TestEncoderStartTwice(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264"})
	e.run = func(_ *ffmpeg.Stream, r io.Reader) error {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	require.NoError(t, e.Start("linux"))
	assert.Equal(t, core.AlreadyInitialized, core.CodeOf(e.Start("linux")))
	require.NoError(t, e.Close())
}

func TestEncoderSendWhenNotRunning(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264"})
	e.run = func(_ *ffmpeg.Stream, r io.Reader) error {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	assert.False(t, e.Send(&Frame{Pixels: make([]byte, 16)}))

	require.NoError(t, e.Start("linux"))
	assert.True(t, e.Send(&Frame{Pixels: make([]byte, 16)}))
	require.NoError(t, e.Close())

	assert.NotPanics(t, func() {
		assert.False(t, e.Send(&Frame{Pixels: make([]byte, 16), PTS: 1}))
	})
	assert.Equal(t, 0, e.Dropped())
	require.NoError(t, e.Close())
}

func TestEncoderStartAfterClose(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264"})
	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Start("linux"), core.ErrBadParameter)
	assert.False(t, e.Send(&Frame{Pixels: make([]byte, 16)}))
}

func TestEncoderBadFrameSize(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264"})
	e.run = func(_ *ffmpeg.Stream, r io.Reader) error {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	require.NoError(t, e.Start("linux"))
	e.Send(&Frame{Pixels: make([]byte, 3)})
	assert.ErrorContains(t, e.Close(), "want 16")
}

func TestEncoderFFmpegFailure(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.mp4", Codec: "h264"})
	e.run = func(*ffmpeg.Stream, io.Reader) error { return errors.New("exit status 1") }
	require.NoError(t, e.Start("linux"))
	e.Send(&Frame{Pixels: make([]byte, 16)})
	assert.ErrorContains(t, e.Close(), "exit status 1")
}

func TestEncoderDropsWhenFull(t *testing.T) {
	e := newTestEncoder(t, options.RecordOptions{Output: "clip.ts", Codec: "h264", NumPBOs: 2})
	e.Drop = true
	release := make(chan struct{})
	e.run = func(_ *ffmpeg.Stream, r io.Reader) error {
		<-release
		_, err := io.Copy(io.Discard, r)
		return err
	}
	require.NoError(t, e.Start("linux"))

	// one frame blocks in the pipe write, two fill the queue
	sent := 0
	for i := 0; i < 8; i++ {
		if e.Send(&Frame{Pixels: make([]byte, 16), PTS: int64(i)}) {
			sent++
		}
	}
	assert.LessOrEqual(t, sent, 3)
	assert.Equal(t, 8-sent, e.Dropped())
	close(release)
	require.NoError(t, e.Close())
}
