// Package kms drives a DRM display: connector, mode and CRTC selection, the
// one-time mode set, and page flips paced by the kernel's completion events.
package kms

// ModeInfo mirrors struct drm_mode_modeinfo.
type ModeInfo struct {
	Clock                                         uint32
	HDisplay, HSyncStart, HSyncEnd, HTotal, HSkew uint16
	VDisplay, VSyncStart, VSyncEnd, VTotal, VScan uint16
	VRefresh                                      uint32
	Flags                                         uint32
	Type                                          uint32
	Name                                          [32]byte
}

// Mode type bits.
const (
	ModeTypeBuiltin   = 1 << 0
	ModeTypePreferred = 1 << 3
	ModeTypeDefault   = 1 << 4
	ModeTypeUserdef   = 1 << 5
	ModeTypeDriver    = 1 << 6
)

func (m *ModeInfo) Preferred() bool { return m.Type&ModeTypePreferred != 0 }

func (m *ModeInfo) String() string {
	n := 0
	for n < len(m.Name) && m.Name[n] != 0 {
		n++
	}
	return string(m.Name[:n])
}

// Connection is a connector's link status.
type Connection uint32

const (
	Connected         Connection = 1
	Disconnected      Connection = 2
	UnknownConnection Connection = 3
)

type Resources struct {
	Framebuffers []uint32
	Crtcs        []uint32
	Connectors   []uint32
	Encoders     []uint32

	MinWidth, MaxWidth   uint32
	MinHeight, MaxHeight uint32
}

type Connector struct {
	ID         uint32
	EncoderID  uint32
	Type       uint32
	TypeID     uint32
	Connection Connection
	MMWidth    uint32
	MMHeight   uint32
	Modes      []ModeInfo
	Encoders   []uint32
}

type Encoder struct {
	ID             uint32
	Type           uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

type Crtc struct {
	ID        uint32
	FBID      uint32
	X, Y      uint32
	GammaSize uint32
	ModeValid bool
	Mode      ModeInfo
}

// PageFlipEventFlag asks the kernel for a completion event.
const PageFlipEventFlag = 0x01

// Event kinds read from the device.
const (
	EventVBlank       = 0x01
	EventFlipComplete = 0x02
)

// Event is one drm_event_vblank record.
type Event struct {
	Type     uint32
	UserData uint64
	Sec      uint32
	Usec     uint32
	Sequence uint32
	CrtcID   uint32
}

// Device is the kernel side of a DRM display.
type Device interface {
	Resources() (*Resources, error)
	Connector(id uint32) (*Connector, error)
	Encoder(id uint32) (*Encoder, error)
	Crtc(id uint32) (*Crtc, error)
	SetCrtc(crtcID, fbID, x, y uint32, connectors []uint32, mode *ModeInfo) error
	AddFramebuffer(width, height uint32, depth, bpp uint8, pitch, handle uint32) (uint32, error)
	RemoveFramebuffer(id uint32) error
	// PageFlip queues an asynchronous flip that reports completion as an
	// EventFlipComplete carrying userData.
	PageFlip(crtcID, fbID uint32, userData uint64) error
	// ReadEvents blocks until at least one event is available.
	ReadEvents() ([]Event, error)
	Close() error
}
