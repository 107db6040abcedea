// Package kmstest provides an in-memory DRM device for testing code built
// on kms.
package kmstest

import (
	"errors"
	"fmt"

	"github.com/richinsley/glplatform/kms"
)

// Device simulates one connector, encoder and CRTC. Page flips complete
// in order, one per ReadEvents call.
type Device struct {
	Res        kms.Resources
	Connectors map[uint32]*kms.Connector
	EncoderMap map[uint32]*kms.Encoder
	Crtcs      map[uint32]*kms.Crtc

	FailAddFB    bool
	FailSetCrtc  bool
	FailPageFlip bool
	FailRead     bool

	// Calls records every mutating request in order.
	Calls   []string
	Removed []uint32
	Closed  bool

	queued []uint64
	nextFB uint32
}

// Mode returns a preferred mode of the given size.
func Mode(w, h uint16) kms.ModeInfo {
	m := kms.ModeInfo{HDisplay: w, VDisplay: h, VRefresh: 60, Type: kms.ModeTypePreferred | kms.ModeTypeDriver}
	copy(m.Name[:], fmt.Sprintf("%dx%d", w, h))
	return m
}

// NewDevice returns a device with one connected output at w x h driven by
// CRTC 30 through encoder 20.
func NewDevice(w, h uint16) *Device {
	return &Device{
		Res: kms.Resources{
			Crtcs:      []uint32{30},
			Connectors: []uint32{10},
			Encoders:   []uint32{20},
		},
		Connectors: map[uint32]*kms.Connector{
			10: {ID: 10, EncoderID: 20, Connection: kms.Connected, Modes: []kms.ModeInfo{Mode(w, h)}, Encoders: []uint32{20}},
		},
		EncoderMap: map[uint32]*kms.Encoder{
			20: {ID: 20, CrtcID: 30, PossibleCrtcs: 1},
		},
		Crtcs: map[uint32]*kms.Crtc{
			30: {ID: 30, FBID: 7, ModeValid: true, Mode: Mode(w, h)},
		},
	}
}

func (d *Device) Resources() (*kms.Resources, error) {
	r := d.Res
	return &r, nil
}

func (d *Device) Connector(id uint32) (*kms.Connector, error) {
	c, ok := d.Connectors[id]
	if !ok {
		return nil, fmt.Errorf("connector %d: no such device", id)
	}
	return c, nil
}

func (d *Device) Encoder(id uint32) (*kms.Encoder, error) {
	e, ok := d.EncoderMap[id]
	if !ok {
		return nil, fmt.Errorf("encoder %d: no such device", id)
	}
	return e, nil
}

func (d *Device) Crtc(id uint32) (*kms.Crtc, error) {
	c, ok := d.Crtcs[id]
	if !ok {
		return nil, fmt.Errorf("crtc %d: no such device", id)
	}
	cp := *c
	return &cp, nil
}

func (d *Device) SetCrtc(crtcID, fbID, x, y uint32, connectors []uint32, mode *kms.ModeInfo) error {
	d.Calls = append(d.Calls, fmt.Sprintf("setcrtc %d fb %d", crtcID, fbID))
	if d.FailSetCrtc {
		return errors.New("set crtc: permission denied")
	}
	return nil
}

func (d *Device) AddFramebuffer(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	d.Calls = append(d.Calls, fmt.Sprintf("addfb %dx%d", width, height))
	if d.FailAddFB {
		return 0, errors.New("add framebuffer: invalid argument")
	}
	d.nextFB++
	return 100 + d.nextFB, nil
}

func (d *Device) RemoveFramebuffer(id uint32) error {
	d.Removed = append(d.Removed, id)
	return nil
}

func (d *Device) PageFlip(crtcID, fbID uint32, userData uint64) error {
	d.Calls = append(d.Calls, fmt.Sprintf("flip fb %d", fbID))
	if d.FailPageFlip {
		return errors.New("page flip: device or resource busy")
	}
	d.queued = append(d.queued, userData)
	return nil
}

// Queued is the number of flips whose completion has not been read.
func (d *Device) Queued() int { return len(d.queued) }

func (d *Device) ReadEvents() ([]kms.Event, error) {
	if d.FailRead {
		return nil, errors.New("read: input/output error")
	}
	if len(d.queued) == 0 {
		return nil, errors.New("read would block with no flip queued")
	}
	d.Calls = append(d.Calls, "event")
	ud := d.queued[0]
	d.queued = d.queued[1:]
	buf := kms.AppendEvent(nil, kms.Event{Type: kms.EventFlipComplete, UserData: ud, CrtcID: d.Res.Crtcs[0]})
	return kms.ParseEvents(buf)
}

func (d *Device) Close() error {
	d.Closed = true
	return nil
}
