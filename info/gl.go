//go:build cgo

package info

import (
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/glplatform/core"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the GL entry points. A context must be current.
func Init() error {
	initOnce.Do(func() {
		if err := gl.Init(); err != nil {
			initErr = core.Wrap(core.UnknownError, err, "load GL entry points")
		}
	})
	return initErr
}

// Current reads from the current context through go-gl. Init must have
// run.
type Current struct{}

func (Current) GetString(name uint32) string {
	p := gl.GetString(name)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

func (Current) GetStringi(name, index uint32) string {
	p := gl.GetStringi(name, index)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

func (Current) GetInteger(name uint32) int32 {
	var v int32
	gl.GetIntegerv(name, &v)
	return v
}

func (Current) GetError() uint32 { return gl.GetError() }
