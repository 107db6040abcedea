package kms

import (
	"fmt"

	"github.com/richinsley/glplatform/core"
)

// Output is the connector, mode and CRTC a display scans out through.
type Output struct {
	Connector *Connector
	Mode      ModeInfo
	Crtc      *Crtc
	CrtcIndex int
}

// chooseMode returns the connector's preferred mode.
func chooseMode(c *Connector) (ModeInfo, bool) {
	for _, m := range c.Modes {
		if m.Preferred() {
			return m, true
		}
	}
	return ModeInfo{}, false
}

// chooseCrtc returns the index into res.Crtcs of the first CRTC that one
// of the connector's encoders can drive.
func chooseCrtc(dev Device, res *Resources, c *Connector) (int, error) {
	for _, id := range c.Encoders {
		enc, err := dev.Encoder(id)
		if err != nil {
			return -1, fmt.Errorf("get encoder %d: %w", id, err)
		}
		for j := range res.Crtcs {
			if enc.PossibleCrtcs&(1<<uint(j)) != 0 {
				return j, nil
			}
		}
	}
	return -1, nil
}

// SelectOutput walks the connectors in order and returns the first
// connected one with a preferred mode and a usable CRTC.
func SelectOutput(dev Device) (*Output, error) {
	res, err := dev.Resources()
	if err != nil {
		return nil, core.Wrap(core.UnknownError, err, "drmModeGetResources")
	}
	for _, id := range res.Connectors {
		conn, err := dev.Connector(id)
		if err != nil {
			return nil, core.Wrap(core.UnknownError, err, "drmModeGetConnector")
		}
		if conn.Connection != Connected {
			continue
		}
		mode, ok := chooseMode(conn)
		if !ok {
			continue
		}
		idx, err := chooseCrtc(dev, res, conn)
		if err != nil {
			return nil, core.Wrap(core.UnknownError, err, "drmModeGetEncoder")
		}
		if idx < 0 {
			continue
		}
		crtc, err := dev.Crtc(res.Crtcs[idx])
		if err != nil {
			return nil, core.Wrap(core.UnknownError, err, "drmModeGetCrtc")
		}
		return &Output{Connector: conn, Mode: mode, Crtc: crtc, CrtcIndex: idx}, nil
	}
	return nil, core.Errorf(core.UnknownError, "no connected output with a preferred mode and usable crtc")
}
