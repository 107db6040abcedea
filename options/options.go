package options

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/present"
)

// Options configure a platform connection and its presentation path.
type Options struct {
	Platform  core.PlatformKind `toml:"platform"`
	API       core.ContextAPI   `toml:"api"`
	Present   present.Mode      `toml:"present"`
	Device    string            `toml:"device"`    // DRM node; card for display, render node otherwise
	Slots     int               `toml:"slots"`     // buffers per window
	Width     int               `toml:"width"`     // 0 uses the display size
	Height    int               `toml:"height"`
	WaitVSync bool              `toml:"wait_vsync"`
	Record    *RecordOptions    `toml:"record"`
}

// RecordOptions enable capture of presented frames to a video file.
type RecordOptions struct {
	Output     string `toml:"output"`
	Codec      string `toml:"codec"`
	FPS        int    `toml:"fps"`
	NumPBOs    int    `toml:"num_pbos"`
	FFMPEGPath string `toml:"ffmpeg_path"`
}

const (
	DefaultCardDevice   = "/dev/dri/card0"
	DefaultRenderDevice = "/dev/dri/renderD128"
	DefaultSlots        = 3
	MinSlots            = 2
)

func Default() *Options {
	return &Options{
		Platform:  core.PlatformSurfaceless,
		API:       core.ContextOpenGLES2,
		Present:   present.None,
		Slots:     DefaultSlots,
		WaitVSync: true,
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Options, error) {
	o := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), o)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, core.Errorf(core.BadParameter, "config %s: unknown key %q", path, undec[0].String())
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate fills derived defaults and rejects inconsistent settings.
func (o *Options) Validate() error {
	if o.Slots == 0 {
		o.Slots = DefaultSlots
	}
	if o.Slots < MinSlots {
		return core.Errorf(core.BadParameter, "slots must be at least %d, got %d", MinSlots, o.Slots)
	}
	if o.Width < 0 || o.Height < 0 {
		return core.Errorf(core.BadParameter, "negative window size %dx%d", o.Width, o.Height)
	}
	if o.Device == "" {
		o.Device = o.DefaultDevice()
	}
	if o.Platform == core.PlatformNull && o.Present.NeedsDisplay() {
		return core.Errorf(core.BadParameter, "platform null cannot present with %s", o.Present)
	}
	if r := o.Record; r != nil {
		if r.Output == "" {
			return core.Errorf(core.BadParameter, "record output is required")
		}
		if r.FPS == 0 {
			r.FPS = 60
		}
		if r.NumPBOs == 0 {
			r.NumPBOs = 3
		}
		if r.NumPBOs < 2 {
			return core.Errorf(core.BadParameter, "record needs at least 2 PBOs")
		}
		if r.Codec == "" {
			r.Codec = "h264"
		}
	}
	return nil
}

// DefaultDevice is the card node when the presentation mode scans out and
// the render node otherwise.
func (o *Options) DefaultDevice() string {
	if o.Present.NeedsDisplay() || o.Platform == core.PlatformGBM {
		return DefaultCardDevice
	}
	return DefaultRenderDevice
}

// Save writes the options as TOML.
func (o *Options) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(o); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
