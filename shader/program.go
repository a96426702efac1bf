// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/mapgpu/gfx"
)

type slot struct {
	info     gfx.UniformInfo
	typ      UniformType
	location int32
}

// Program is a linked program together with a CPU copy of its uniform
// block. Uniform handles write into the copy; Bind uploads it when it
// changed.
type Program struct {
	name     string
	id       gfx.ProgramID
	source   string
	layout   gputypes.VertexBufferLayout
	textures int

	slots map[string]slot
	block []byte
	dirty bool
}

// Name returns the catalog name.
func (p *Program) Name() string { return p.name }

// ID returns the backend program.
func (p *Program) ID() gfx.ProgramID { return p.id }

// Source returns the full WGSL source the program was built from.
func (p *Program) Source() string { return p.source }

// VertexLayout returns the vertex buffer layout the program expects.
func (p *Program) VertexLayout() gputypes.VertexBufferLayout { return p.layout }

// Textures returns the number of texture units the program samples.
func (p *Program) Textures() int { return p.textures }

// Bind makes p the current program and uploads its uniform block if it
// changed since the last upload.
func (p *Program) Bind(ctx *gfx.Context) {
	ctx.Program.Set(p.id)
	if p.dirty {
		ctx.SetUniforms(p.id, p.block)
		p.dirty = false
	}
}

func (p *Program) lookup(name string, want UniformType) (slot, error) {
	s, ok := p.slots[name]
	if !ok {
		return slot{}, fmt.Errorf("%w: %s.%s", ErrUniformNotFound, p.name, name)
	}
	if s.typ != want {
		return slot{}, fmt.Errorf("%w: %s.%s is %v, not %v", ErrUniformType, p.name, name, s.typ, want)
	}
	return s, nil
}

func (p *Program) put(off uint32, v float32) {
	bits := math.Float32bits(v)
	if binary.LittleEndian.Uint32(p.block[off:]) == bits {
		return
	}
	binary.LittleEndian.PutUint32(p.block[off:], bits)
	p.dirty = true
}

// Float returns the handle of a f32 uniform.
func (p *Program) Float(name string) (UniformFloat, error) {
	s, err := p.lookup(name, Float)
	return UniformFloat{p: p, off: s.info.Offset}, err
}

// Vec2 returns the handle of a vec2 uniform.
func (p *Program) Vec2(name string) (UniformVec2, error) {
	s, err := p.lookup(name, Vec2)
	return UniformVec2{p: p, off: s.info.Offset}, err
}

// Color returns the handle of a vec4 uniform holding a color.
func (p *Program) Color(name string) (UniformColor, error) {
	s, err := p.lookup(name, Vec4)
	return UniformColor{p: p, off: s.info.Offset}, err
}

// Mat4 returns the handle of a mat4x4 uniform.
func (p *Program) Mat4(name string) (UniformMat4, error) {
	s, err := p.lookup(name, Mat4)
	return UniformMat4{p: p, off: s.info.Offset}, err
}

// UniformFloat sets a f32 uniform.
type UniformFloat struct {
	p   *Program
	off uint32
}

// Set stores v in the uniform block.
func (u UniformFloat) Set(v float32) {
	u.p.put(u.off, v)
}

// UniformVec2 sets a vec2 uniform.
type UniformVec2 struct {
	p   *Program
	off uint32
}

// Set stores v in the uniform block.
func (u UniformVec2) Set(v [2]float32) {
	u.p.put(u.off, v[0])
	u.p.put(u.off+4, v[1])
}

// UniformColor sets a vec4 uniform from a color.
type UniformColor struct {
	p   *Program
	off uint32
}

// Set stores c in the uniform block.
func (u UniformColor) Set(c gfx.Color) {
	u.p.put(u.off, c.R)
	u.p.put(u.off+4, c.G)
	u.p.put(u.off+8, c.B)
	u.p.put(u.off+12, c.A)
}

// Vec4 stores four raw components.
func (u UniformColor) Vec4(v [4]float32) {
	u.Set(gfx.Color{R: v[0], G: v[1], B: v[2], A: v[3]})
}

// UniformMat4 sets a mat4x4 uniform.
type UniformMat4 struct {
	p   *Program
	off uint32
}

// Set stores m, given in row-major order, as the column-major matrix WGSL
// expects.
func (u UniformMat4) Set(m f32.Mat4) {
	for col := range 4 {
		for row := range 4 {
			u.p.put(u.off+uint32(col*16+row*4), m[row*4+col]) //nolint:gosec // bounded by 64
		}
	}
}
