// Package sharedmemory maps named POSIX shared memory regions so frames
// can be handed to another process.
package sharedmemory

import (
	"io"
	"unsafe"

	"github.com/richinsley/glplatform/core"
)

// Memory is a mapped region. The creating side unlinks the name on Close.
type Memory struct {
	name  string
	data  []byte
	owner bool
	unmap func([]byte) error
}

// Anonymous returns a process-local region with the same alignment
// guarantees as a mapped one.
func Anonymous(size int) *Memory {
	words := make([]uint64, (size+7)/8)
	data := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*8)[:size]
	return &Memory{data: data}
}

func (m *Memory) Name() string { return m.name }
func (m *Memory) Size() int    { return len(m.data) }

// Bytes is the mapping itself. It is page aligned for named regions and
// 8-byte aligned for anonymous ones.
func (m *Memory) Bytes() []byte { return m.data }

func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, core.Errorf(core.BadParameter, "negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, core.Errorf(core.BadParameter, "negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.ErrShortWrite
	}
	n := copy(m.data[off:], p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Close unmaps the region.
func (m *Memory) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if m.unmap == nil {
		return nil
	}
	err := m.unmap(data)
	if m.owner {
		if uerr := unlink(m.name); err == nil {
			err = uerr
		}
	}
	return err
}
