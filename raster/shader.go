package raster

import (
	"fmt"

	"github.com/gogpu/naga"
)

// fillShaderWGSL is the render shader for layer fills. Vertices arrive
// pretransformed to world space; the uniform holds the world-to-clip
// affine transform packed as (a, b, d, e) plus the (c, f) offset.
const fillShaderWGSL = `
struct ViewUniform {
    transform: vec4<f32>,
    offset: vec4<f32>,
};

@group(0) @binding(0) var<uniform> view: ViewUniform;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let x = view.transform.x * in.position.x + view.transform.y * in.position.y + view.offset.x;
    let y = view.transform.z * in.position.x + view.transform.w * in.position.y + view.offset.y;
    out.clip_position = vec4<f32>(x, y, 0.0, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// CompileFillShader compiles the fill shader WGSL to SPIR-V words.
func CompileFillShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(fillShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("raster: compiling fill shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
