//go:build !linux

package sharedmemory

import "github.com/richinsley/glplatform/core"

func Create(name string, size int) (*Memory, error) {
	return nil, core.Errorf(core.UnsupportedOnPlatform, "named shared memory is not supported on this platform")
}

func Open(name string, size int) (*Memory, error) {
	return nil, core.Errorf(core.UnsupportedOnPlatform, "named shared memory is not supported on this platform")
}

func unlink(string) error { return nil }
