// Package platform defines the interface every native backend implements
// and the registry used to open one by kind.
package platform

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/options"
)

// Platform is one native windowing backend.
type Platform interface {
	Kind() core.PlatformKind
	Connect(name string) (Display, error)
	// MakeCurrent binds c and w on the calling thread. Either may be nil.
	MakeCurrent(d Display, w Window, c Context) error
	GetProcAddress(name string) unsafe.Pointer
	Destroy() error
}

type Display interface {
	SupportsContextAPI(api core.ContextAPI) bool
	ChooseConfig(attrs core.ConfigAttrs) (Config, error)
	// Native exposes the backend's handles, for example the GBM device.
	Native() any
	Disconnect() error
}

type Config interface {
	Attrs() core.ConfigAttrs
	CreateContext(share Context) (Context, error)
	CreateWindow(width, height int) (Window, error)
	Destroy() error
}

type Context interface {
	API() core.ContextAPI
	Destroy() error
}

type Window interface {
	Show() error
	SwapBuffers() error
	Size() (width, height int)
	Destroy() error
}

// Factory creates a platform from options.
type Factory func(opts *options.Options) (Platform, error)

var (
	registryMu sync.RWMutex
	registry   = map[core.PlatformKind]Factory{}
)

// Register makes a backend available to Open. Backends call it from init.
func Register(kind core.PlatformKind, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic("platform: Register called twice for " + kind.String())
	}
	registry[kind] = f
}

// Open creates the platform selected by opts.Platform.
func Open(opts *options.Options) (Platform, error) {
	registryMu.RLock()
	f, ok := registry[opts.Platform]
	registryMu.RUnlock()
	if !ok {
		return nil, core.Errorf(core.BuiltWithoutSupport, "platform %s is not built in", opts.Platform)
	}
	p, err := f(opts)
	if err != nil {
		return nil, err
	}
	core.Logger().Info("platform: opened", "platform", opts.Platform.String())
	return p, nil
}

// Kinds lists the registered backends.
func Kinds() []core.PlatformKind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]core.PlatformKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
