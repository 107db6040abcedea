package ioctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCodeMatchesKernelMacros(t *testing.T) {
	// DRM_IOWR(0xA0, struct drm_mode_card_res), 64 bytes.
	assert.Equal(t, uint32(0xC04064A0), NewCode(Read|Write, 64, DRMBase, 0xA0))
	// DRM_IOWR(0xB0, struct drm_mode_crtc_page_flip), 24 bytes.
	assert.Equal(t, uint32(0xC01864B0), NewCode(Read|Write, 24, DRMBase, 0xB0))
	// DRM_IOW(DRM_COMMAND_BASE + 0x1c, struct drm_i915_gem_pread), 32 bytes.
	assert.Equal(t, uint32(0x4020645C), NewCode(Write, 32, DRMBase, DRMCommandBase+0x1c))
}
