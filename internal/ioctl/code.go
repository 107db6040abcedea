// Package ioctl builds Linux ioctl request codes and issues them.
package ioctl

// Direction bits of a request code.
const (
	None  = 0x0
	Write = 0x1
	Read  = 0x2
)

const (
	nrBits   = 8
	typeBits = 8
	sizeBits = 14

	nrShift   = 0
	typeShift = nrShift + nrBits
	sizeShift = typeShift + typeBits
	dirShift  = sizeShift + sizeBits
)

// DRMBase is the ioctl type byte shared by all DRM requests.
const DRMBase = 'd'

// DRMCommandBase is the first request number reserved for driver-private
// ioctls such as the i915 GEM calls.
const DRMCommandBase = 0x40

// NewCode encodes a request the way the kernel's _IOC macro does.
func NewCode(dir, size uint32, typ, nr uint8) uint32 {
	return dir<<dirShift | size<<sizeShift | uint32(typ)<<typeShift | uint32(nr)<<nrShift
}
