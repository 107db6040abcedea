// Package cliflags holds the flags shared by the command line tools and
// turns them into platform options.
package cliflags

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/present"
)

var (
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML options file; flags override its values",
	}
	PlatformFlag = &cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "glx, x11_egl, gbm, surfaceless, null or egl",
	}
	APIFlag = &cli.StringFlag{
		Name:    "api",
		Aliases: []string{"a"},
		Usage:   "gl, gles1, gles2 or gles3",
	}
	PresentFlag = &cli.StringFlag{
		Name:  "present",
		Usage: "none, flip, copy or legacy (O, F and C are accepted)",
	}
	DeviceFlag = &cli.StringFlag{
		Name:  "device",
		Usage: "DRM node to open",
	}
	SlotsFlag = &cli.IntFlag{
		Name:  "slots",
		Usage: "buffers per window",
	}
	NoVSyncFlag = &cli.BoolFlag{
		Name:  "no-vsync",
		Usage: "do not wait for the flip after each swap",
	}
	DebugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "log buffer and flip state transitions",
	}
)

// Common are the flags every tool accepts.
var Common = []cli.Flag{
	ConfigFlag,
	PlatformFlag,
	APIFlag,
	PresentFlag,
	DeviceFlag,
	SlotsFlag,
	NoVSyncFlag,
	DebugFlag,
}

// Options loads --config, if any, and applies the other flags over it.
func Options(ctx *cli.Context) (*options.Options, error) {
	o := options.Default()
	if path := ctx.String(ConfigFlag.Name); path != "" {
		var err error
		if o, err = options.Load(path); err != nil {
			return nil, err
		}
	}
	// a device derived from the old platform and mode is derived again
	derived := o.Device == "" || o.Device == o.DefaultDevice()
	if ctx.IsSet(PlatformFlag.Name) {
		k, err := core.ParsePlatform(ctx.String(PlatformFlag.Name))
		if err != nil {
			return nil, err
		}
		o.Platform = k
	}
	if ctx.IsSet(APIFlag.Name) {
		a, err := core.ParseContextAPI(ctx.String(APIFlag.Name))
		if err != nil {
			return nil, err
		}
		o.API = a
	}
	if ctx.IsSet(PresentFlag.Name) {
		m, err := present.ParseMode(ctx.String(PresentFlag.Name))
		if err != nil {
			return nil, err
		}
		o.Present = m
	}
	if ctx.IsSet(DeviceFlag.Name) {
		o.Device = ctx.String(DeviceFlag.Name)
	} else if derived {
		o.Device = ""
	}
	if ctx.IsSet(SlotsFlag.Name) {
		o.Slots = ctx.Int(SlotsFlag.Name)
	}
	if ctx.Bool(NoVSyncFlag.Name) {
		o.WaitVSync = false
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// SetupLogging sends module logs to stderr.
func SetupLogging(ctx *cli.Context) {
	level := slog.LevelInfo
	if ctx.Bool(DebugFlag.Name) {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
