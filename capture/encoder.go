// Package capture reads presented frames back from GL and encodes them to
// video through ffmpeg.
package capture

import (
	"fmt"
	"io"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
)

// Frame is one frame of RGBA pixels, bottom row first as GL reads them.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// runFunc runs the ffmpeg command with r as its standard input.
type runFunc func(s *ffmpeg.Stream, r io.Reader) error

func runFFmpeg(s *ffmpeg.Stream, r io.Reader) error {
	return s.WithInput(r).ErrorToStdOut().Run()
}

// Encoder feeds frames to an ffmpeg process from its own goroutine.
type Encoder struct {
	opts   options.RecordOptions
	width  int
	height int
	// Drop discards frames when the encoder falls behind instead of
	// blocking the renderer.
	Drop   bool

	run     runFunc
	frames  chan *Frame
	done    chan error
	dropped int
	once    sync.Once
	closed  bool
	err     error
}

// NewEncoder returns an encoder for width x height frames. Queue depth
// follows the PBO count.
func NewEncoder(opts options.RecordOptions, width, height int) (*Encoder, error) {
	if width <= 0 || height <= 0 {
		return nil, core.Errorf(core.BadParameter, "capture size %dx%d", width, height)
	}
	if opts.Output == "" {
		return nil, core.Errorf(core.BadParameter, "capture output is required")
	}
	if opts.Codec == "" {
		opts.Codec = "h264"
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.NumPBOs < 2 {
		opts.NumPBOs = 3
	}
	return &Encoder{opts: opts, width: width, height: height, run: runFFmpeg}, nil
}

// Args returns the ffmpeg input and output arguments for goos.
func (e *Encoder) Args(goos string) (in, out ffmpeg.KwArgs) {
	in = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", e.width, e.height),
		"framerate": e.opts.FPS,
	}
	out = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}
	hevc := e.opts.Codec == "hevc"
	switch {
	case e.opts.Codec != "h264" && !hevc:
		out["c:v"] = e.opts.Codec
	case goos == "darwin" && hevc:
		out["c:v"] = "hevc_videotoolbox"
	case goos == "darwin":
		out["c:v"] = "h264_videotoolbox"
	case hevc:
		out["c:v"] = "libx265"
	default:
		out["c:v"] = "libx264"
	}
	if hevc && strings.HasSuffix(e.opts.Output, ".mp4") {
		out["tag:v"] = "hvc1"
	}
	if strings.HasSuffix(e.opts.Output, ".ts") {
		out["f"] = "mpegts"
	}
	return in, out
}

func (e *Encoder) command(goos string) *ffmpeg.Stream {
	in, out := e.Args(goos)
	s := ffmpeg.Input("pipe:", in).Output(e.opts.Output, out).OverWriteOutput()
	if e.opts.FFMPEGPath != "" {
		s = s.SetFfmpegPath(e.opts.FFMPEGPath)
	}
	return s
}

// Start launches ffmpeg and the goroutine writing frames to it.
func (e *Encoder) Start(goos string) error {
	if e.frames != nil {
		return core.Errorf(core.AlreadyInitialized, "encoder already started")
	}
	if e.closed {
		return core.Errorf(core.BadParameter, "encoder is closed")
	}
	e.frames = make(chan *Frame, e.opts.NumPBOs)
	e.done = make(chan error, 1)

	pr, pw := io.Pipe()
	cmd := e.command(goos)
	core.Logger().Info("capture: encoding", "output", e.opts.Output, "size", fmt.Sprintf("%dx%d", e.width, e.height), "fps", e.opts.FPS)

	errc := make(chan error, 1)
	go func() {
		err := e.run(cmd, pr)
		// unblock the writer if ffmpeg exits early
		pr.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()
	go e.consume(pw, errc)
	return nil
}

func (e *Encoder) consume(pw *io.PipeWriter, errc <-chan error) {
	frameSize := e.width * e.height * 4
	var werr error
	for f := range e.frames {
		if werr != nil {
			continue
		}
		if len(f.Pixels) != frameSize {
			werr = fmt.Errorf("frame %d: %d bytes, want %d", f.PTS, len(f.Pixels), frameSize)
			continue
		}
		if _, err := pw.Write(f.Pixels); err != nil {
			werr = fmt.Errorf("write frame %d: %w", f.PTS, err)
		}
	}
	pw.Close()
	err := <-errc
	if err == nil {
		err = werr
	}
	e.done <- err
}

// Send queues a frame. With Drop set a full queue drops the frame and
// reports false. Frames sent before Start or after Close are discarded.
func (e *Encoder) Send(f *Frame) bool {
	if e.frames == nil || e.closed {
		core.Logger().Warn("capture: encoder not running, frame discarded", "pts", f.PTS)
		return false
	}
	if e.Drop {
		select {
		case e.frames <- f:
			return true
		default:
			e.dropped++
			core.Logger().Warn("capture: queue full, frame dropped", "pts", f.PTS)
			return false
		}
	}
	e.frames <- f
	return true
}

// Dropped is the number of frames Send discarded.
func (e *Encoder) Dropped() int { return e.dropped }

// Close flushes the queue and waits for ffmpeg to exit.
func (e *Encoder) Close() error {
	e.once.Do(func() {
		e.closed = true
		if e.frames == nil {
			return
		}
		close(e.frames)
		if err := <-e.done; err != nil {
			e.err = fmt.Errorf("ffmpeg: %w", err)
		}
		core.Logger().Info("capture: finished", "output", e.opts.Output, "dropped", e.dropped)
	})
	return e.err
}
