// Package gbm allocates scanout and rendering buffers through libgbm.
package gbm

import "github.com/richinsley/glplatform/slbuf"

// Usage flags, matching GBM_BO_USE_*.
const (
	UseScanout   = slbuf.UseScanout
	UseCursor    = slbuf.UseCursor
	UseRendering = slbuf.UseRendering
	UseWrite     = slbuf.UseWrite
	UseLinear    = slbuf.UseLinear
)
