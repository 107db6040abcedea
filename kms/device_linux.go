//go:build linux

package kms

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/richinsley/glplatform/internal/ioctl"
)

type sysResources struct {
	fbIDPtr         uint64
	crtcIDPtr       uint64
	connectorIDPtr  uint64
	encoderIDPtr    uint64
	countFbs        uint32
	countCrtcs      uint32
	countConnectors uint32
	countEncoders   uint32
	minWidth        uint32
	maxWidth        uint32
	minHeight       uint32
	maxHeight       uint32
}

type sysCrtc struct {
	setConnectorsPtr uint64
	countConnectors  uint32
	crtcID           uint32
	fbID             uint32
	x, y             uint32
	gammaSize        uint32
	modeValid        uint32
	mode             ModeInfo
}

type sysGetEncoder struct {
	encoderID      uint32
	encoderType    uint32
	crtcID         uint32
	possibleCrtcs  uint32
	possibleClones uint32
}

type sysGetConnector struct {
	encodersPtr     uint64
	modesPtr        uint64
	propsPtr        uint64
	propValuesPtr   uint64
	countModes      uint32
	countProps      uint32
	countEncoders   uint32
	encoderID       uint32
	connectorID     uint32
	connectorType   uint32
	connectorTypeID uint32
	connection      uint32
	mmWidth         uint32
	mmHeight        uint32
	subpixel        uint32
	pad             uint32
}

type sysFBCmd struct {
	fbID   uint32
	width  uint32
	height uint32
	pitch  uint32
	bpp    uint32
	depth  uint32
	handle uint32
}

type sysPageFlip struct {
	crtcID   uint32
	fbID     uint32
	flags    uint32
	reserved uint32
	userData uint64
}

type sysVersion struct {
	major, minor, patch int32
	nameLen             uint64
	name                uint64
	dateLen             uint64
	date                uint64
	descLen             uint64
	desc                uint64
}

var (
	ioctlVersion          = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysVersion{})), ioctl.DRMBase, 0x00)
	ioctlModeResources    = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysResources{})), ioctl.DRMBase, 0xA0)
	ioctlModeGetCrtc      = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysCrtc{})), ioctl.DRMBase, 0xA1)
	ioctlModeSetCrtc      = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysCrtc{})), ioctl.DRMBase, 0xA2)
	ioctlModeGetEncoder   = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysGetEncoder{})), ioctl.DRMBase, 0xA6)
	ioctlModeGetConnector = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysGetConnector{})), ioctl.DRMBase, 0xA7)
	ioctlModeAddFB        = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysFBCmd{})), ioctl.DRMBase, 0xAE)
	ioctlModeRmFB         = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(uint32(0))), ioctl.DRMBase, 0xAF)
	ioctlModePageFlip     = ioctl.NewCode(ioctl.Read|ioctl.Write, uint32(unsafe.Sizeof(sysPageFlip{})), ioctl.DRMBase, 0xB0)
)

// FileDevice is a DRM device node.
type FileDevice struct {
	fd    int
	owned bool
	buf   []byte
}

// OpenDevice opens a DRM device node such as /dev/dri/card0.
func OpenDevice(path string) (*FileDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open drm device %s: %w", path, err)
	}
	return &FileDevice{fd: fd, owned: true}, nil
}

// NewDevice uses an already open descriptor, for example the one backing a
// GBM device. Close leaves fd open.
func NewDevice(fd int) *FileDevice {
	return &FileDevice{fd: fd}
}

func (d *FileDevice) Fd() int { return d.fd }

func (d *FileDevice) do(cmd uint32, arg unsafe.Pointer) error {
	return ioctl.Do(uintptr(d.fd), uintptr(cmd), uintptr(arg))
}

func ptr[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

// DriverName returns the kernel driver bound to the node, such as "i915".
func (d *FileDevice) DriverName() (string, error) {
	var v sysVersion
	if err := d.do(ioctlVersion, unsafe.Pointer(&v)); err != nil {
		return "", fmt.Errorf("drm version: %w", err)
	}
	name := make([]byte, v.nameLen)
	v.name = ptr(name)
	v.dateLen, v.descLen = 0, 0
	err := d.do(ioctlVersion, unsafe.Pointer(&v))
	runtime.KeepAlive(name)
	if err != nil {
		return "", fmt.Errorf("drm version: %w", err)
	}
	return string(name[:v.nameLen]), nil
}

func (d *FileDevice) Resources() (*Resources, error) {
	for {
		var r sysResources
		if err := d.do(ioctlModeResources, unsafe.Pointer(&r)); err != nil {
			return nil, fmt.Errorf("get resources: %w", err)
		}
		counts := r
		fbs := make([]uint32, r.countFbs)
		crtcs := make([]uint32, r.countCrtcs)
		conns := make([]uint32, r.countConnectors)
		encs := make([]uint32, r.countEncoders)
		r.fbIDPtr, r.crtcIDPtr = ptr(fbs), ptr(crtcs)
		r.connectorIDPtr, r.encoderIDPtr = ptr(conns), ptr(encs)
		err := d.do(ioctlModeResources, unsafe.Pointer(&r))
		runtime.KeepAlive(fbs)
		runtime.KeepAlive(crtcs)
		runtime.KeepAlive(conns)
		runtime.KeepAlive(encs)
		if err != nil {
			return nil, fmt.Errorf("get resources: %w", err)
		}
		if r.countFbs > counts.countFbs || r.countCrtcs > counts.countCrtcs ||
			r.countConnectors > counts.countConnectors || r.countEncoders > counts.countEncoders {
			// hotplug between the two calls
			continue
		}
		return &Resources{
			Framebuffers: fbs[:r.countFbs],
			Crtcs:        crtcs[:r.countCrtcs],
			Connectors:   conns[:r.countConnectors],
			Encoders:     encs[:r.countEncoders],
			MinWidth:     r.minWidth,
			MaxWidth:     r.maxWidth,
			MinHeight:    r.minHeight,
			MaxHeight:    r.maxHeight,
		}, nil
	}
}

func (d *FileDevice) Connector(id uint32) (*Connector, error) {
	for {
		c := sysGetConnector{connectorID: id}
		if err := d.do(ioctlModeGetConnector, unsafe.Pointer(&c)); err != nil {
			return nil, fmt.Errorf("get connector %d: %w", id, err)
		}
		counts := c
		modes := make([]ModeInfo, c.countModes)
		encs := make([]uint32, c.countEncoders)
		props := make([]uint32, c.countProps)
		values := make([]uint64, c.countProps)
		c.modesPtr, c.encodersPtr = ptr(modes), ptr(encs)
		c.propsPtr, c.propValuesPtr = ptr(props), ptr(values)
		err := d.do(ioctlModeGetConnector, unsafe.Pointer(&c))
		runtime.KeepAlive(modes)
		runtime.KeepAlive(encs)
		runtime.KeepAlive(props)
		runtime.KeepAlive(values)
		if err != nil {
			return nil, fmt.Errorf("get connector %d: %w", id, err)
		}
		if c.countModes > counts.countModes || c.countEncoders > counts.countEncoders ||
			c.countProps > counts.countProps {
			continue
		}
		return &Connector{
			ID:         c.connectorID,
			EncoderID:  c.encoderID,
			Type:       c.connectorType,
			TypeID:     c.connectorTypeID,
			Connection: Connection(c.connection),
			MMWidth:    c.mmWidth,
			MMHeight:   c.mmHeight,
			Modes:      modes[:c.countModes],
			Encoders:   encs[:c.countEncoders],
		}, nil
	}
}

func (d *FileDevice) Encoder(id uint32) (*Encoder, error) {
	e := sysGetEncoder{encoderID: id}
	if err := d.do(ioctlModeGetEncoder, unsafe.Pointer(&e)); err != nil {
		return nil, fmt.Errorf("get encoder %d: %w", id, err)
	}
	return &Encoder{
		ID:             e.encoderID,
		Type:           e.encoderType,
		CrtcID:         e.crtcID,
		PossibleCrtcs:  e.possibleCrtcs,
		PossibleClones: e.possibleClones,
	}, nil
}

func (d *FileDevice) Crtc(id uint32) (*Crtc, error) {
	c := sysCrtc{crtcID: id}
	if err := d.do(ioctlModeGetCrtc, unsafe.Pointer(&c)); err != nil {
		return nil, fmt.Errorf("get crtc %d: %w", id, err)
	}
	return &Crtc{
		ID:        c.crtcID,
		FBID:      c.fbID,
		X:         c.x,
		Y:         c.y,
		GammaSize: c.gammaSize,
		ModeValid: c.modeValid != 0,
		Mode:      c.mode,
	}, nil
}

func (d *FileDevice) SetCrtc(crtcID, fbID, x, y uint32, connectors []uint32, mode *ModeInfo) error {
	c := sysCrtc{
		setConnectorsPtr: ptr(connectors),
		countConnectors:  uint32(len(connectors)),
		crtcID:           crtcID,
		fbID:             fbID,
		x:                x,
		y:                y,
	}
	if mode != nil {
		c.mode = *mode
		c.modeValid = 1
	}
	err := d.do(ioctlModeSetCrtc, unsafe.Pointer(&c))
	runtime.KeepAlive(connectors)
	if err != nil {
		return fmt.Errorf("set crtc %d: %w", crtcID, err)
	}
	return nil
}

func (d *FileDevice) AddFramebuffer(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	f := sysFBCmd{
		width:  width,
		height: height,
		pitch:  pitch,
		bpp:    uint32(bpp),
		depth:  uint32(depth),
		handle: handle,
	}
	if err := d.do(ioctlModeAddFB, unsafe.Pointer(&f)); err != nil {
		return 0, fmt.Errorf("add framebuffer: %w", err)
	}
	return f.fbID, nil
}

func (d *FileDevice) RemoveFramebuffer(id uint32) error {
	if err := d.do(ioctlModeRmFB, unsafe.Pointer(&id)); err != nil {
		return fmt.Errorf("remove framebuffer %d: %w", id, err)
	}
	return nil
}

func (d *FileDevice) PageFlip(crtcID, fbID uint32, userData uint64) error {
	f := sysPageFlip{
		crtcID:   crtcID,
		fbID:     fbID,
		flags:    PageFlipEventFlag,
		userData: userData,
	}
	if err := d.do(ioctlModePageFlip, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("page flip: %w", err)
	}
	return nil
}

func (d *FileDevice) ReadEvents() ([]Event, error) {
	if d.buf == nil {
		d.buf = make([]byte, 1024)
	}
	for {
		n, err := unix.Read(d.fd, d.buf)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read drm events: %w", err)
		}
		return ParseEvents(d.buf[:n])
	}
}

func (d *FileDevice) Close() error {
	if !d.owned || d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
