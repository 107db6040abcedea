package kms

import (
	"encoding/binary"

	"github.com/richinsley/glplatform/core"
)

const (
	eventHeaderSize = 8
	vblankEventSize = 32
)

// ParseEvents decodes a buffer read from a DRM device into events. Event
// kinds other than vblank and flip completion are skipped.
func ParseEvents(buf []byte) ([]Event, error) {
	var events []Event
	for len(buf) > 0 {
		if len(buf) < eventHeaderSize {
			return events, core.Errorf(core.InternalError, "short drm event header: %d bytes", len(buf))
		}
		typ := binary.NativeEndian.Uint32(buf[0:])
		length := binary.NativeEndian.Uint32(buf[4:])
		if length < eventHeaderSize || int(length) > len(buf) {
			return events, core.Errorf(core.InternalError, "bad drm event length %d", length)
		}
		rec := buf[:length]
		buf = buf[length:]

		if typ != EventVBlank && typ != EventFlipComplete {
			continue
		}
		if len(rec) < vblankEventSize {
			return events, core.Errorf(core.InternalError, "short drm vblank event: %d bytes", len(rec))
		}
		events = append(events, Event{
			Type:     typ,
			UserData: binary.NativeEndian.Uint64(rec[8:]),
			Sec:      binary.NativeEndian.Uint32(rec[16:]),
			Usec:     binary.NativeEndian.Uint32(rec[20:]),
			Sequence: binary.NativeEndian.Uint32(rec[24:]),
			CrtcID:   binary.NativeEndian.Uint32(rec[28:]),
		})
	}
	return events, nil
}

// AppendEvent encodes ev the way the kernel does. Fake devices use it to
// feed ParseEvents.
func AppendEvent(buf []byte, ev Event) []byte {
	var rec [vblankEventSize]byte
	binary.NativeEndian.PutUint32(rec[0:], ev.Type)
	binary.NativeEndian.PutUint32(rec[4:], vblankEventSize)
	binary.NativeEndian.PutUint64(rec[8:], ev.UserData)
	binary.NativeEndian.PutUint32(rec[16:], ev.Sec)
	binary.NativeEndian.PutUint32(rec[20:], ev.Usec)
	binary.NativeEndian.PutUint32(rec[24:], ev.Sequence)
	binary.NativeEndian.PutUint32(rec[28:], ev.CrtcID)
	return append(buf, rec[:]...)
}
