package raster

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"
)

// HALDevice implements GPUAdapter over gogpu/wgpu's hardware abstraction
// layer. The device and queue come from the host; the adapter never
// creates its own.
//
// Thread safety: HALDevice is safe for concurrent use.
type HALDevice struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	nextID  atomic.Uint64
	buffers map[BufferID]hal.Buffer
	shaders map[ShaderModuleID]hal.ShaderModule
}

// NewHALDevice wraps a HAL device and queue.
func NewHALDevice(device hal.Device, queue hal.Queue) (*HALDevice, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	d := &HALDevice{
		device:  device,
		queue:   queue,
		buffers: make(map[BufferID]hal.Buffer),
		shaders: make(map[ShaderModuleID]hal.ShaderModule),
	}
	// 0 is InvalidID.
	d.nextID.Store(1)
	return d, nil
}

func (d *HALDevice) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// CreateBuffer allocates a GPU buffer.
func (d *HALDevice) CreateBuffer(size int, usage BufferUsage) (BufferID, error) {
	if size <= 0 {
		return InvalidID, ErrInvalidSize
	}

	buffer, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "layoutview-batch",
		Size:  uint64(size),
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return InvalidID, fmt.Errorf("raster: creating buffer: %w", err)
	}

	id := BufferID(d.newID())
	d.mu.Lock()
	d.buffers[id] = buffer
	d.mu.Unlock()
	return id, nil
}

// WriteBuffer uploads data through the queue.
func (d *HALDevice) WriteBuffer(id BufferID, offset uint64, data []byte) {
	d.mu.RLock()
	buffer, ok := d.buffers[id]
	d.mu.RUnlock()

	if ok && len(data) > 0 {
		d.queue.WriteBuffer(buffer, offset, data)
	}
}

// DestroyBuffer releases a GPU buffer.
func (d *HALDevice) DestroyBuffer(id BufferID) {
	d.mu.Lock()
	buffer, ok := d.buffers[id]
	if ok {
		delete(d.buffers, id)
	}
	d.mu.Unlock()

	if ok {
		d.device.DestroyBuffer(buffer)
	}
}

// CreateShaderModule creates a module from SPIR-V words.
func (d *HALDevice) CreateShaderModule(spirv []uint32, label string) (ShaderModuleID, error) {
	if len(spirv) == 0 {
		return InvalidID, fmt.Errorf("raster: empty SPIR-V code")
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		return InvalidID, fmt.Errorf("raster: creating shader module: %w", err)
	}

	id := ShaderModuleID(d.newID())
	d.mu.Lock()
	d.shaders[id] = module
	d.mu.Unlock()
	return id, nil
}

// DestroyShaderModule releases a module.
func (d *HALDevice) DestroyShaderModule(id ShaderModuleID) {
	d.mu.Lock()
	module, ok := d.shaders[id]
	if ok {
		delete(d.shaders, id)
	}
	d.mu.Unlock()

	if ok {
		d.device.DestroyShaderModule(module)
	}
}

func convertBufferUsage(usage BufferUsage) types.BufferUsage {
	var result types.BufferUsage
	if usage&BufferUsageVertex != 0 {
		result |= types.BufferUsageVertex
	}
	if usage&BufferUsageIndex != 0 {
		result |= types.BufferUsageIndex
	}
	if usage&BufferUsageUniform != 0 {
		result |= types.BufferUsageUniform
	}
	if usage&BufferUsageCopySrc != 0 {
		result |= types.BufferUsageCopySrc
	}
	if usage&BufferUsageCopyDst != 0 {
		result |= types.BufferUsageCopyDst
	}
	return result
}
