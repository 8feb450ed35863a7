package raster

import (
	"sync"
	"sync/atomic"
)

// NullAdapter implements GPUAdapter without a GPU. Buffer contents are
// kept in memory so tests can inspect exactly what would be uploaded.
//
// Thread safety: NullAdapter is safe for concurrent use.
type NullAdapter struct {
	mu      sync.RWMutex
	nextID  atomic.Uint64
	buffers map[BufferID][]byte
	shaders map[ShaderModuleID]int
}

// NewNullAdapter creates an empty in-memory adapter.
func NewNullAdapter() *NullAdapter {
	a := &NullAdapter{
		buffers: make(map[BufferID][]byte),
		shaders: make(map[ShaderModuleID]int),
	}
	a.nextID.Store(1)
	return a
}

// CreateBuffer allocates an in-memory buffer.
func (a *NullAdapter) CreateBuffer(size int, usage BufferUsage) (BufferID, error) {
	if size <= 0 {
		return InvalidID, ErrInvalidSize
	}
	id := BufferID(a.nextID.Add(1) - 1)
	a.mu.Lock()
	a.buffers[id] = make([]byte, size)
	a.mu.Unlock()
	return id, nil
}

// WriteBuffer copies into the in-memory buffer.
func (a *NullAdapter) WriteBuffer(id BufferID, offset uint64, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[id]
	if !ok || offset >= uint64(len(buf)) {
		return
	}
	copy(buf[offset:], data)
}

// DestroyBuffer drops the buffer.
func (a *NullAdapter) DestroyBuffer(id BufferID) {
	a.mu.Lock()
	delete(a.buffers, id)
	a.mu.Unlock()
}

// CreateShaderModule records the module size.
func (a *NullAdapter) CreateShaderModule(spirv []uint32, label string) (ShaderModuleID, error) {
	if len(spirv) == 0 {
		return InvalidID, ErrNoDevice
	}
	id := ShaderModuleID(a.nextID.Add(1) - 1)
	a.mu.Lock()
	a.shaders[id] = len(spirv)
	a.mu.Unlock()
	return id, nil
}

// DestroyShaderModule drops the module.
func (a *NullAdapter) DestroyShaderModule(id ShaderModuleID) {
	a.mu.Lock()
	delete(a.shaders, id)
	a.mu.Unlock()
}

// BufferData returns a copy of the buffer contents, or nil.
func (a *NullAdapter) BufferData(id BufferID) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	buf, ok := a.buffers[id]
	if !ok {
		return nil
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out
}

// BufferCount returns the number of live buffers.
func (a *NullAdapter) BufferCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.buffers)
}
