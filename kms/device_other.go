//go:build !linux

package kms

import (
	"github.com/richinsley/glplatform/core"
)

// FileDevice is unavailable off Linux.
type FileDevice struct{ Device }

func OpenDevice(path string) (*FileDevice, error) {
	return nil, core.Errorf(core.UnsupportedOnPlatform, "drm display is not supported on this platform")
}
