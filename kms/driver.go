package kms

import (
	"fmt"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/slbuf"
)

// State of a display driver.
type State int

const (
	Uninitialized State = iota
	ModeUnset
	ModeSet
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ModeUnset:
		return "mode-unset"
	case ModeSet:
		return "mode-set"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// flipToken tags page flips issued by this package.
const flipToken = 0x676c706c

// Driver presents buffers on one DRM output. At most one flip is pending;
// a second flip waits for the first to complete. A Driver is not safe for
// concurrent use.
type Driver struct {
	dev     Device
	state   State
	out     *Output
	initErr error
	// set once the mode has been changed; the saved CRTC is restored on Close
	touched bool

	pending  *slbuf.Buffer
	onScreen *slbuf.Buffer
}

func NewDriver(dev Device) *Driver {
	return &Driver{dev: dev}
}

func (d *Driver) Device() Device          { return d.dev }
func (d *Driver) State() State            { return d.state }
func (d *Driver) Pending() *slbuf.Buffer  { return d.pending }
func (d *Driver) OnScreen() *slbuf.Buffer { return d.onScreen }

// Init selects the output on first use. The outcome, success or failure,
// is cached.
func (d *Driver) Init() error {
	if d.state != Uninitialized {
		return nil
	}
	if d.initErr != nil {
		return d.initErr
	}
	out, err := SelectOutput(d.dev)
	if err != nil {
		d.initErr = err
		return err
	}
	d.out = out
	d.state = ModeUnset
	core.Logger().Info("kms: output selected",
		"connector", out.Connector.ID, "crtc", out.Crtc.ID,
		"mode", out.Mode.String(), "width", out.Mode.HDisplay, "height", out.Mode.VDisplay)
	return nil
}

// Output returns the selected output, initializing the driver if needed.
func (d *Driver) Output() (*Output, error) {
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d.out, nil
}

// Mode is the mode the output is or will be driven at.
func (d *Driver) Mode() (ModeInfo, error) {
	out, err := d.Output()
	if err != nil {
		return ModeInfo{}, err
	}
	return out.Mode, nil
}

// Resolution is the size of the selected mode.
func (d *Driver) Resolution() (width, height uint32, err error) {
	out, err := d.Output()
	if err != nil {
		return 0, 0, err
	}
	return uint32(out.Mode.HDisplay), uint32(out.Mode.VDisplay), nil
}

// Flip schedules b for scanout. The first successful flip also sets the
// mode. On failure no state changes and b is not pending.
func (d *Driver) Flip(b *slbuf.Buffer) error {
	if err := d.Init(); err != nil {
		return err
	}
	mode := &d.out.Mode
	if b.Width() < uint32(mode.HDisplay) || b.Height() < uint32(mode.VDisplay) {
		return core.Errorf(core.UnknownError, "buffer %dx%d smaller than mode %dx%d",
			b.Width(), b.Height(), mode.HDisplay, mode.VDisplay)
	}
	fb, err := b.Framebuffer(d.dev, uint32(mode.HDisplay), uint32(mode.VDisplay))
	if err != nil {
		return err
	}

	if d.state == ModeUnset {
		err := d.dev.SetCrtc(d.out.Crtc.ID, fb, 0, 0, []uint32{d.out.Connector.ID}, mode)
		if err != nil {
			core.Logger().Warn("kms: set crtc", "crtc", d.out.Crtc.ID, "err", err)
			return core.Wrap(core.UnknownError, err, "drmModeSetCrtc")
		}
		d.state = ModeSet
		d.touched = true
	}

	if err := d.WaitPending(); err != nil {
		return err
	}

	if err := d.dev.PageFlip(d.out.Crtc.ID, fb, flipToken); err != nil {
		core.Logger().Warn("kms: page flip", "crtc", d.out.Crtc.ID, "fb", fb, "err", err)
		return core.Wrap(core.UnknownError, err, "drmModePageFlip")
	}
	d.pending = b
	core.Logger().Debug("kms: flip pending", "fb", fb)
	return nil
}

// WaitPending blocks on device events until no flip is pending.
func (d *Driver) WaitPending() error {
	for d.pending != nil {
		events, err := d.dev.ReadEvents()
		if err != nil {
			core.Logger().Warn("kms: read events", "err", err)
			return core.Wrap(core.UnknownError, err, "drmHandleEvent")
		}
		for _, ev := range events {
			if ev.Type == EventFlipComplete && ev.UserData == flipToken {
				d.flipComplete()
			}
		}
	}
	return nil
}

// flipComplete releases the buffer leaving the screen and promotes the
// pending one.
func (d *Driver) flipComplete() {
	if d.pending == nil {
		return
	}
	if d.onScreen != nil && d.onScreen != d.pending {
		d.onScreen.Release()
	}
	d.onScreen = d.pending
	d.pending = nil
	core.Logger().Debug("kms: flip complete")
}

// Forget drops any reference the driver holds to b, waiting for b's flip
// if it is pending. Call it before destroying b. Forgetting the on-screen
// buffer returns the driver to ModeUnset.
func (d *Driver) Forget(b *slbuf.Buffer) error {
	if b == nil {
		return nil
	}
	if d.pending == b {
		if err := d.WaitPending(); err != nil {
			d.pending = nil
			return err
		}
	}
	if d.onScreen == b {
		// Removing the scanned-out framebuffer disables the CRTC, so the
		// next flip has to set the mode again.
		d.onScreen = nil
		if d.state == ModeSet {
			d.state = ModeUnset
		}
	}
	return nil
}

// Close waits for the pending flip, restores the CRTC found at selection
// time and drops the on-screen buffer. The device stays open.
func (d *Driver) Close() error {
	var firstErr error
	if err := d.WaitPending(); err != nil {
		firstErr = err
		d.pending = nil
	}
	if d.touched && d.out != nil {
		saved := d.out.Crtc
		var mode *ModeInfo
		if saved.ModeValid {
			mode = &saved.Mode
		}
		if saved.FBID != 0 {
			err := d.dev.SetCrtc(saved.ID, saved.FBID, saved.X, saved.Y, []uint32{d.out.Connector.ID}, mode)
			if err != nil && firstErr == nil {
				firstErr = core.Wrap(core.UnknownError, err, "restore crtc")
			}
		}
	}
	if d.onScreen != nil {
		d.onScreen.Release()
		d.onScreen = nil
	}
	d.state = Uninitialized
	d.touched = false
	d.out = nil
	d.initErr = nil
	return firstErr
}
