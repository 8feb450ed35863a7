// Package raster prepares triangulated layout geometry for GPU drawing.
//
// Primitives are grouped into one vertex/index batch per visible layer
// style, in first-use order so overlapping layers keep their draw order.
// Upload goes through the GPUAdapter interface; the HALDevice
// implementation talks to gogpu/wgpu, and NullAdapter serves headless
// tests and dry runs.
package raster

import "errors"

var (
	// ErrNoDevice reports an adapter constructed without a usable GPU
	// device. Geometry content never causes adapter errors.
	ErrNoDevice = errors.New("raster: no gpu device")

	// ErrInvalidSize reports a non-positive buffer size.
	ErrInvalidSize = errors.New("raster: buffer size must be positive")
)

// BufferID is an opaque handle to an adapter-owned GPU buffer.
type BufferID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// InvalidID is never returned for a live resource.
const InvalidID = 0

// BufferUsage is a bitmask of buffer capabilities.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageCopySrc
	BufferUsageCopyDst
)

// GPUAdapter abstracts the GPU resource operations the renderer needs.
// Implementations must be safe for concurrent use.
type GPUAdapter interface {
	// CreateBuffer allocates a buffer of the given byte size.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)

	// WriteBuffer copies data into a buffer at the given offset.
	// Writes to unknown IDs are ignored.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// CreateShaderModule creates a module from SPIR-V words.
	CreateShaderModule(spirv []uint32, label string) (ShaderModuleID, error)

	// DestroyShaderModule releases a module. Unknown IDs are ignored.
	DestroyShaderModule(id ShaderModuleID)
}
