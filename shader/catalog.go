// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"embed"
	"fmt"

	"github.com/gogpu/gputypes"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// Program names.
const (
	Background   = "background"
	Fill         = "fill"
	FillOutline  = "fill_outline"
	FillPattern  = "fill_pattern"
	Line         = "line"
	Circle       = "circle"
	Raster       = "raster"
	SymbolIcon   = "symbol_icon"
	CollisionBox = "collision_box"
	ClippingMask = "clipping_mask"
	Debug        = "debug"
)

// Attribute is one vertex input.
type Attribute struct {
	Name   string
	Format gputypes.VertexFormat
}

// Uniform is one member of a program's uniform block.
type Uniform struct {
	Name string
	Type UniformType
}

// definition is a catalog entry: the Go-side layout of a program whose
// body lives in shaders/<name>.wgsl.
type definition struct {
	name       string
	attributes []Attribute
	uniforms   []Uniform
	textures   int
}

var (
	attrPos     = Attribute{"a_pos", gputypes.VertexFormatFloat32x2}
	uMatrix     = Uniform{"u_matrix", Mat4}
	uColor      = Uniform{"u_color", Vec4}
	uOpacity    = Uniform{"u_opacity", Float}
	uTexsize    = Uniform{"u_texsize", Vec2}
	attrTexture = Attribute{"a_texture_pos", gputypes.VertexFormatFloat32x2}
)

// catalog lists every program in build order.
var catalog = []definition{
	{
		name:       Background,
		attributes: []Attribute{attrPos},
		uniforms:   []Uniform{uMatrix, uColor, uOpacity},
	},
	{
		name:       Fill,
		attributes: []Attribute{attrPos},
		uniforms:   []Uniform{uMatrix, uColor, uOpacity},
	},
	{
		name:       FillOutline,
		attributes: []Attribute{attrPos},
		uniforms: []Uniform{
			uMatrix,
			{"u_outline_color", Vec4},
			uOpacity,
			{"u_world", Vec2},
		},
	},
	{
		name:       FillPattern,
		attributes: []Attribute{attrPos},
		uniforms: []Uniform{
			uMatrix,
			uOpacity,
			{"u_pattern_tl", Vec2},
			{"u_pattern_br", Vec2},
			{"u_pattern_size", Vec2},
			uTexsize,
		},
		textures: 1,
	},
	{
		name:       Line,
		attributes: []Attribute{attrPos, {"a_normal", gputypes.VertexFormatFloat32x2}},
		uniforms: []Uniform{
			uMatrix,
			uColor,
			uOpacity,
			{"u_width", Float},
			{"u_blur", Float},
			{"u_units_to_pixels", Vec2},
		},
	},
	{
		name:       Circle,
		attributes: []Attribute{attrPos, {"a_extrude", gputypes.VertexFormatFloat32x2}},
		uniforms: []Uniform{
			uMatrix,
			uColor,
			uOpacity,
			{"u_radius", Float},
			{"u_blur", Float},
			{"u_extrude_scale", Vec2},
		},
	},
	{
		name:       Raster,
		attributes: []Attribute{attrPos, attrTexture},
		uniforms: []Uniform{
			uMatrix,
			{"u_spin_weights", Vec4},
			{"u_tl_parent", Vec2},
			{"u_opacity0", Float},
			{"u_opacity1", Float},
			{"u_buffer_scale", Float},
			{"u_scale_parent", Float},
			{"u_brightness_low", Float},
			{"u_brightness_high", Float},
			{"u_saturation_factor", Float},
			{"u_contrast_factor", Float},
		},
		textures: 2,
	},
	{
		name:       SymbolIcon,
		attributes: []Attribute{attrPos, {"a_offset", gputypes.VertexFormatFloat32x2}, attrTexture},
		uniforms: []Uniform{
			uMatrix,
			{"u_extrude_scale", Vec2},
			uTexsize,
			uOpacity,
		},
		textures: 1,
	},
	{
		name: CollisionBox,
		attributes: []Attribute{
			attrPos,
			{"a_extrude", gputypes.VertexFormatFloat32x2},
			{"a_data", gputypes.VertexFormatFloat32x2},
		},
		uniforms: []Uniform{
			uMatrix,
			{"u_scale", Float},
			{"u_zoom", Float},
			{"u_maxzoom", Float},
		},
	},
	{
		name:       ClippingMask,
		attributes: []Attribute{attrPos},
		uniforms:   []Uniform{uMatrix},
	},
	{
		name:       Debug,
		attributes: []Attribute{attrPos, attrTexture},
		uniforms:   []Uniform{uMatrix, uColor},
		textures:   1,
	},
}

// Names returns the names of all catalog programs in build order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.name
	}
	return names
}

func body(name string) (string, error) {
	data, err := shaderFS.ReadFile("shaders/" + name + ".wgsl")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// VertexLayout returns the vertex buffer layout of the named program, for
// building vertex arrays before any program exists.
func VertexLayout(name string) (gputypes.VertexBufferLayout, error) {
	for i := range catalog {
		if catalog[i].name == name {
			return vertexLayout(catalog[i].attributes)
		}
	}
	return gputypes.VertexBufferLayout{}, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
}
