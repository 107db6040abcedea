//go:build linux && cgo

package gbm

/*
#include <gbm.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

//export goBODestroy
func goBODestroy(bo *C.struct_gbm_bo, data unsafe.Pointer) {
	h := cgo.Handle(uintptr(data))
	b, ok := h.Value().(*BO)
	h.Delete()
	if ok {
		b.released()
	}
}
