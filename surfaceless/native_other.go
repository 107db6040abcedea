//go:build !(linux && cgo)

package surfaceless

// OpenNative is nil where GBM and EGL are unavailable; New then fails.
var OpenNative Opener
