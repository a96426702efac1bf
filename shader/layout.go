// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
)

// UniformType is the WGSL type of a uniform.
type UniformType uint8

// Uniform types.
const (
	Float UniformType = iota
	Vec2
	Vec4
	Mat4
)

func (t UniformType) String() string {
	switch t {
	case Float:
		return "f32"
	case Vec2:
		return "vec2<f32>"
	case Vec4:
		return "vec4<f32>"
	case Mat4:
		return "mat4x4<f32>"
	default:
		return fmt.Sprintf("UniformType(%d)", t)
	}
}

// size and alignment in a WGSL uniform struct.
func (t UniformType) size() uint32 {
	switch t {
	case Vec2:
		return 8
	case Vec4:
		return 16
	case Mat4:
		return 64
	default:
		return 4
	}
}

func (t UniformType) align() uint32 {
	switch t {
	case Vec2:
		return 8
	case Vec4, Mat4:
		return 16
	default:
		return 4
	}
}

func alignUp(v, a uint32) uint32 {
	return (v + a - 1) &^ (a - 1)
}

// blockLayout places uniforms with WGSL struct rules. The block size is
// rounded to 16 bytes, the alignment of uniform buffer structs.
func blockLayout(us []Uniform) ([]gfx.UniformInfo, uint32) {
	infos := make([]gfx.UniformInfo, len(us))
	var off uint32
	for i, u := range us {
		off = alignUp(off, u.Type.align())
		infos[i] = gfx.UniformInfo{Name: u.Name, Offset: off, Size: u.Type.size()}
		off += u.Type.size()
	}
	return infos, alignUp(off, 16)
}

func vertexType(f gputypes.VertexFormat) (string, uint32, error) {
	switch f {
	case gputypes.VertexFormatFloat32:
		return "f32", 4, nil
	case gputypes.VertexFormatFloat32x2:
		return "vec2<f32>", 8, nil
	case gputypes.VertexFormatFloat32x4:
		return "vec4<f32>", 16, nil
	default:
		return "", 0, fmt.Errorf("shader: unsupported vertex format %v", f)
	}
}

// vertexLayout packs attributes tightly in declaration order.
func vertexLayout(as []Attribute) (gputypes.VertexBufferLayout, error) {
	attrs := make([]gputypes.VertexAttribute, len(as))
	var off uint64
	for i, a := range as {
		_, size, err := vertexType(a.Format)
		if err != nil {
			return gputypes.VertexBufferLayout{}, err
		}
		attrs[i] = gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         off,
			ShaderLocation: uint32(i), //nolint:gosec // attribute counts are tiny
		}
		off += uint64(size)
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: off,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

// prelude generates the declarations a catalog body relies on: the variant
// constant, the uniform block, texture bindings and the vertex input.
func prelude(d *definition, v Variant) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "const OVERDRAW: bool = %t;\n\n", v == Overdraw)

	b.WriteString("struct Uniforms {\n")
	for _, u := range d.uniforms {
		fmt.Fprintf(&b, "    %s: %s,\n", u.Name, u.Type)
	}
	b.WriteString("};\n\n")
	b.WriteString("@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	for i := range d.textures {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var u_image%d: texture_2d<f32>;\n", TextureBinding(i), i)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var u_sampler%d: sampler;\n", SamplerBinding(i), i)
	}

	b.WriteString("\nstruct VertexInput {\n")
	for i, a := range d.attributes {
		typ, _, err := vertexType(a.Format)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "    @location(%d) %s: %s,\n", i, a.Name, typ)
	}
	b.WriteString("};\n\n")
	return b.String(), nil
}

// TextureBinding returns the binding index of texture unit i.
func TextureBinding(i int) uint32 {
	return uint32(1 + 2*i) //nolint:gosec // unit counts are tiny
}

// SamplerBinding returns the binding index of the sampler for unit i.
func SamplerBinding(i int) uint32 {
	return uint32(2 + 2*i) //nolint:gosec // unit counts are tiny
}
