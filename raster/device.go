package raster

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (window system, engine, test harness) owns the device and
// hands it in; the renderer never creates one. DeviceHandle is an alias
// for gpucontext.DeviceProvider so any gogpu-based host plugs in
// directly.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle with no GPU behind it. Use it with
// NullAdapter for headless operation.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// TargetFormat picks the texture format for render output: the host's
// surface format when it reports one, BGRA8 otherwise (the common swap
// chain default).
func TargetFormat(handle DeviceHandle) gputypes.TextureFormat {
	if handle != nil {
		if f := handle.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			return f
		}
	}
	return gputypes.TextureFormatBGRA8Unorm
}
