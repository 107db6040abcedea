//go:build !cgo

package info

import "github.com/richinsley/glplatform/core"

func Init() error {
	return core.Errorf(core.BuiltWithoutSupport, "GL queries need cgo")
}

// Current is unusable without cgo; Init fails first.
type Current struct{}

func (Current) GetString(uint32) string          { return "" }
func (Current) GetStringi(uint32, uint32) string { return "" }
func (Current) GetInteger(uint32) int32          { return 0 }
func (Current) GetError() uint32                 { return glInvalidOperation }
