package platform

import (
	"sync"

	"github.com/richinsley/glplatform/core"
)

// Current is what was last made current through MakeCurrent.
type Current struct {
	Platform Platform
	Display  Display
	Window   Window
	Context  Context
}

// GL binding is per OS thread. Callers lock the thread that drives GL, so
// a single record mirrors that thread's state.
var (
	currentMu sync.Mutex
	current   Current
)

// MakeCurrent binds through p and records the binding. A window without
// a context is rejected.
func MakeCurrent(p Platform, d Display, w Window, c Context) error {
	if w != nil && c == nil {
		return core.Errorf(core.BadParameter, "window given without a context")
	}
	if err := p.MakeCurrent(d, w, c); err != nil {
		return err
	}
	currentMu.Lock()
	defer currentMu.Unlock()
	if c == nil {
		current = Current{}
		return nil
	}
	current = Current{Platform: p, Display: d, Window: w, Context: c}
	return nil
}

// GetCurrent returns the recorded binding.
func GetCurrent() Current {
	currentMu.Lock()
	defer currentMu.Unlock()
	return current
}

// RequireCurrent fails when no context is current.
func RequireCurrent() (Current, error) {
	c := GetCurrent()
	if c.Context == nil {
		return c, core.Errorf(core.UnknownError, "no current context")
	}
	return c, nil
}

// Forget clears the record if it refers to ctx or win, for destroy paths
// that unbind on their own.
func Forget(ctx Context, win Window) {
	currentMu.Lock()
	defer currentMu.Unlock()
	if ctx != nil && current.Context == ctx {
		current = Current{}
	} else if win != nil && current.Window == win {
		current.Window = nil
	}
}
