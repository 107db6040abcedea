package slbuf

import (
	"github.com/richinsley/glplatform/core"
)

// ErrExhausted is returned by GetBuffer when every slot holds a buffer
// that is still in use. Callers treat it as backpressure.
var ErrExhausted = core.Errorf(core.UnknownError, "slbuf: no free buffer slot")

// Allocator creates standalone buffer objects.
type Allocator interface {
	FormatChecker
	CreateBO(width, height, format, flags uint32) (BufferObject, error)
}

// Funcs is the function table injected into the pool so it has no direct
// dependency on native libraries.
type Funcs struct {
	Alloc Allocator
	GL    GL
}

// GetBuffer returns the first slot buffer that is free to draw into,
// allocating into the first empty slot when none is. The returned buffer
// is locked until Release.
func GetBuffer(slots []*Buffer, p *Param, fn *Funcs) (*Buffer, error) {
	for _, b := range slots {
		if b != nil && !b.busy && !b.destroyed {
			b.busy = true
			return b, nil
		}
	}
	for i, b := range slots {
		if b != nil {
			continue
		}
		bo, err := fn.Alloc.CreateBO(p.Width, p.Height, p.GBMFormat, p.GBMFlags)
		if err != nil {
			return nil, core.Wrap(core.BadAlloc, err, "gbm_bo_create")
		}
		nb := Wrap(bo, nil)
		nb.SetGL(fn.GL, p.DepthStencilFormat)
		nb.busy = true
		slots[i] = nb
		core.Logger().Debug("slbuf: buffer allocated", "slot", i, "width", p.Width, "height", p.Height)
		return nb, nil
	}
	return nil, ErrExhausted
}

// Forget clears the slot holding b. It reports whether b was found.
func Forget(slots []*Buffer, b *Buffer) bool {
	for i := range slots {
		if slots[i] == b {
			slots[i] = nil
			return true
		}
	}
	return false
}

// DestroyAll destroys every buffer in slots through its buffer object and
// empties the slots.
func DestroyAll(slots []*Buffer) {
	for i, b := range slots {
		if b == nil {
			continue
		}
		b.bo.Destroy()
		slots[i] = nil
	}
}
