package surfaceless

import (
	"errors"
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/kms"
	"github.com/richinsley/glplatform/kms/kmstest"
	"github.com/richinsley/glplatform/options"
	"github.com/richinsley/glplatform/present"
	"github.com/richinsley/glplatform/slbuf"
	"github.com/richinsley/glplatform/slbuf/slbuftest"
	"github.com/richinsley/glplatform/tiling"
)

type fakeContext struct{ id int }

type fakeNative struct {
	alloc *slbuftest.Allocator
	gl    *slbuftest.GL
	dev   *kmstest.Device

	current   NativeContext
	created   int
	destroyed int
	closed    bool
}

func newFakeNative(dev *kmstest.Device) *fakeNative {
	return &fakeNative{alloc: &slbuftest.Allocator{}, gl: &slbuftest.GL{}, dev: dev}
}

func (n *fakeNative) Allocator() slbuf.Allocator { return n.alloc }
func (n *fakeNative) GL() slbuf.GL               { return n.gl }
func (n *fakeNative) Tiling() tiling.Memory      { return nil }

func (n *fakeNative) CreateContext(attrs core.ConfigAttrs, share NativeContext) (NativeContext, error) {
	n.created++
	return &fakeContext{id: n.created}, nil
}

func (n *fakeNative) DestroyContext(c NativeContext) error {
	n.destroyed++
	return nil
}

func (n *fakeNative) MakeCurrent(c NativeContext) error {
	n.current = c
	return nil
}

func (n *fakeNative) GetProcAddress(name string) unsafe.Pointer { return nil }

func (n *fakeNative) Display() (kms.Device, error) {
	if n.dev == nil {
		return nil, errors.New("render node has no outputs")
	}
	return n.dev, nil
}

func (n *fakeNative) Close() error {
	n.closed = true
	return nil
}

func testOptions(mode present.Mode) *options.Options {
	o := options.Default()
	o.Present = mode
	o.WaitVSync = false
	if err := o.Validate(); err != nil {
		panic(err)
	}
	return o
}
