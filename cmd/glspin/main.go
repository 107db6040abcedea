//go:build cgo

// Command glspin renders a stream of frames through a platform and
// presentation mode and optionally records them.
package main

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/urfave/cli/v2"

	"github.com/richinsley/glplatform/capture"
	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/info"
	"github.com/richinsley/glplatform/internal/cliflags"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/platform"
	"github.com/richinsley/glplatform/sharedmemory"

	_ "github.com/richinsley/glplatform/egl"
	_ "github.com/richinsley/glplatform/gbmplat"
	_ "github.com/richinsley/glplatform/glfwcontext"
	_ "github.com/richinsley/glplatform/null"
	_ "github.com/richinsley/glplatform/surfaceless"
)

var (
	framesFlag = &cli.IntFlag{
		Name:  "frames",
		Value: 300,
		Usage: "number of frames to render",
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "window width; 0 uses the display size",
	}
	heightFlag = &cli.IntFlag{
		Name:  "height",
		Usage: "window height; 0 uses the display size",
	}
	recordFlag = &cli.StringFlag{
		Name:  "record",
		Usage: "encode the frames to this file",
	}
	codecFlag = &cli.StringFlag{
		Name:  "codec",
		Value: "h264",
		Usage: "h264, hevc or an ffmpeg encoder name",
	}
	fpsFlag = &cli.IntFlag{
		Name:  "fps",
		Value: 60,
		Usage: "frame rate of the recording",
	}
	ffmpegFlag = &cli.StringFlag{
		Name:  "ffmpeg",
		Usage: "path to the ffmpeg executable",
	}
	shmFlag = &cli.StringFlag{
		Name:  "shm",
		Usage: "publish the latest frame in this shared memory region",
	}
	streamFlag = &cli.BoolFlag{
		Name:  "stream",
		Usage: "drop frames instead of stalling when the encoder falls behind",
	}
)

func init() {
	runtime.LockOSThread()
}

func main() {
	app := &cli.App{
		Name:  "glspin",
		Usage: "render and present frames through a GL platform",
		Flags: append(append([]cli.Flag{}, cliflags.Common...),
			framesFlag, widthFlag, heightFlag, recordFlag, codecFlag, fpsFlag, ffmpegFlag, shmFlag, streamFlag),
		Action: glspin,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "glspin:", err)
		os.Exit(1)
	}
}

func loadOptions(ctx *cli.Context) (*options.Options, error) {
	opts, err := cliflags.Options(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(widthFlag.Name) || ctx.IsSet(heightFlag.Name) {
		opts.Width, opts.Height = ctx.Int(widthFlag.Name), ctx.Int(heightFlag.Name)
	}
	if !opts.Present.NeedsDisplay() && (opts.Width == 0 || opts.Height == 0) {
		opts.Width, opts.Height = 640, 480
	}
	readback := ctx.String(recordFlag.Name) != "" || ctx.String(shmFlag.Name) != ""
	if readback && (opts.API == core.ContextOpenGLES1 || opts.API == core.ContextOpenGLES2) {
		return nil, core.Errorf(core.BadParameter, "frame readback uses pixel buffers and needs gl or gles3")
	}
	if out := ctx.String(recordFlag.Name); out != "" {
		opts.Record = &options.RecordOptions{
			Output:     out,
			Codec:      ctx.String(codecFlag.Name),
			FPS:        ctx.Int(fpsFlag.Name),
			FFMPEGPath: ctx.String(ffmpegFlag.Name),
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// clearColor cycles smoothly through hues, one turn every 120 frames.
func clearColor(frame int) (r, g, b float32) {
	t := 2 * math.Pi * float64(frame) / 120
	r = float32(0.5 + 0.5*math.Sin(t))
	g = float32(0.5 + 0.5*math.Sin(t+2*math.Pi/3))
	b = float32(0.5 + 0.5*math.Sin(t+4*math.Pi/3))
	return r, g, b
}

// recorder feeds read back frames to the encoder and the shared region.
// Either may be absent.
type recorder struct {
	reader *capture.Reader
	enc    *capture.Encoder
	shm    *sharedmemory.Memory
	pub    *capture.Publisher
}

func newRecorder(ctx *cli.Context, rec *options.RecordOptions, width, height int) (*recorder, error) {
	numPBOs := 3
	if rec != nil {
		numPBOs = rec.NumPBOs
	}
	r := &recorder{}
	fail := func(err error) (*recorder, error) {
		r.close()
		return nil, err
	}
	if name := ctx.String(shmFlag.Name); name != "" {
		var err error
		if r.shm, err = sharedmemory.Create(name, capture.SharedFrameSize(width, height)); err != nil {
			return fail(err)
		}
		if r.pub, err = capture.NewPublisher(r.shm, width, height); err != nil {
			return fail(err)
		}
	}
	if rec != nil {
		enc, err := capture.NewEncoder(*rec, width, height)
		if err != nil {
			return fail(err)
		}
		enc.Drop = ctx.Bool(streamFlag.Name)
		if err := enc.Start(runtime.GOOS); err != nil {
			return fail(err)
		}
		r.enc = enc
	}
	reader, err := capture.NewReader(width, height, numPBOs)
	if err != nil {
		return fail(err)
	}
	r.reader = reader
	return r, nil
}

func (r *recorder) send(f *capture.Frame) error {
	if r.enc != nil {
		r.enc.Send(f)
	}
	if r.pub != nil {
		return r.pub.Publish(f)
	}
	return nil
}

func (r *recorder) frame() error {
	f, err := r.reader.Read()
	if err != nil || f == nil {
		return err
	}
	return r.send(f)
}

func (r *recorder) close() error {
	var err error
	if r.reader != nil {
		var frames []*capture.Frame
		frames, err = r.reader.Drain()
		for _, f := range frames {
			if serr := r.send(f); err == nil {
				err = serr
			}
		}
		r.reader.Destroy()
	}
	if r.enc != nil {
		if cerr := r.enc.Close(); err == nil {
			err = cerr
		}
	}
	if r.shm != nil {
		if cerr := r.shm.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func glspin(ctx *cli.Context) error {
	cliflags.SetupLogging(ctx)
	opts, err := loadOptions(ctx)
	if err != nil {
		return err
	}
	log := core.Logger()

	p, err := platform.Open(opts)
	if err != nil {
		return err
	}
	defer p.Destroy()

	dpy, err := p.Connect("")
	if err != nil {
		return err
	}
	defer dpy.Disconnect()

	cfg, err := dpy.ChooseConfig(core.DefaultConfigAttrs(opts.API))
	if err != nil {
		return fmt.Errorf("choose config: %w", err)
	}
	defer cfg.Destroy()

	glctx, err := cfg.CreateContext(nil)
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	defer glctx.Destroy()

	win, err := cfg.CreateWindow(opts.Width, opts.Height)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()
	if err := win.Show(); err != nil {
		return err
	}

	if err := platform.MakeCurrent(p, dpy, win, glctx); err != nil {
		return fmt.Errorf("make current: %w", err)
	}
	defer platform.MakeCurrent(p, dpy, nil, nil)
	if err := info.Init(); err != nil {
		return err
	}

	width, height := win.Size()
	var rec *recorder
	if opts.Record != nil || ctx.String(shmFlag.Name) != "" {
		if rec, err = newRecorder(ctx, opts.Record, width, height); err != nil {
			return err
		}
	}

	frames := ctx.Int(framesFlag.Name)
	log.Info("glspin: rendering", "platform", opts.Platform.String(), "present", opts.Present.String(),
		"size", fmt.Sprintf("%dx%d", width, height), "frames", frames)

	start := time.Now()
	for i := 0; i < frames; i++ {
		r, g, b := clearColor(i)
		gl.ClearColor(r, g, b, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		if rec != nil {
			if err := rec.frame(); err != nil {
				rec.close()
				return fmt.Errorf("read frame %d: %w", i, err)
			}
		}
		if err := win.SwapBuffers(); err != nil {
			if rec != nil {
				rec.close()
			}
			return fmt.Errorf("swap frame %d: %w", i, err)
		}
	}
	elapsed := time.Since(start)
	if rec != nil {
		if err := rec.close(); err != nil {
			return err
		}
		if rec.enc != nil {
			log.Info("glspin: recorded", "output", opts.Record.Output, "dropped", rec.enc.Dropped())
		}
	}
	fmt.Printf("%d frames in %v (%.1f fps)\n", frames, elapsed.Round(time.Millisecond), float64(frames)/elapsed.Seconds())
	return nil
}
