// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Color is a premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Transparent = Color{}
)

// BlendFunc selects the source and destination blend factors.
type BlendFunc struct {
	Src gputypes.BlendFactor
	Dst gputypes.BlendFactor
}

// StencilFunc is the stencil test: (Ref & Mask) Compare (stencil & Mask).
type StencilFunc struct {
	Compare gputypes.CompareFunction
	Ref     uint8
	Mask    uint8
}

// StencilOp is the stencil update for the three test outcomes.
type StencilOp struct {
	Fail      hal.StencilOperation
	DepthFail hal.StencilOperation
	Pass      hal.StencilOperation
}

// ColorMask enables writes per color channel.
type ColorMask struct {
	R, G, B, A bool
}

// Color mask presets.
var (
	ColorMaskAll  = ColorMask{R: true, G: true, B: true, A: true}
	ColorMaskNone = ColorMask{}
)

// Channel bits of gputypes.ColorWriteMask, in WebGPU order.
const (
	writeRed gputypes.ColorWriteMask = 1 << iota
	writeGreen
	writeBlue
	writeAlpha
)

// WriteMask converts the mask to its pipeline representation.
func (m ColorMask) WriteMask() gputypes.ColorWriteMask {
	switch m {
	case ColorMaskAll:
		return gputypes.ColorWriteMaskAll
	case ColorMaskNone:
		return gputypes.ColorWriteMaskNone
	}
	var w gputypes.ColorWriteMask
	if m.R {
		w |= writeRed
	}
	if m.G {
		w |= writeGreen
	}
	if m.B {
		w |= writeBlue
	}
	if m.A {
		w |= writeAlpha
	}
	return w
}

// Viewport is a rectangle in framebuffer pixels.
type Viewport struct {
	X, Y          int32
	Width, Height uint32
}

// DepthRange maps normalized device depth into [Near, Far].
type DepthRange struct {
	Near, Far float32
}

// Slot returns the part of r a single sublayer owns exclusively, the
// half-open interval [Near, Near+width).
func (r DepthRange) Slot(width float32) DepthRange {
	return DepthRange{Near: r.Near, Far: r.Near + width}
}

// Resource identifiers. The zero value of each names the default object:
// the window framebuffer, no texture, no vertex array, no program.
type (
	ProgramID     uint32
	TextureID     uint32
	FramebufferID uint32
	VertexArrayID uint32
)

// ClearValues selects the buffers to clear. A nil field leaves that buffer
// untouched.
type ClearValues struct {
	Color   *Color
	Depth   *float32
	Stencil *int32
}

// UniformInfo places one named uniform inside a program's uniform block.
type UniformInfo struct {
	Name   string
	Offset uint32
	Size   uint32
}

// ProgramDescriptor describes a compiled program for the backend to link.
type ProgramDescriptor struct {
	Label string

	// WGSL is the full shader source; SPIRV is the same module compiled.
	WGSL  string
	SPIRV []uint32

	VertexLayout gputypes.VertexBufferLayout
	Uniforms     []UniformInfo
	UniformSize  uint32

	// Textures is the number of texture units sampled by the fragment stage.
	Textures int
}

// VertexArrayDescriptor describes vertex data and its layout.
type VertexArrayDescriptor struct {
	Label  string
	Layout gputypes.VertexBufferLayout
	Data   []byte
}

// TextureDescriptor describes a 2D texture.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat

	// RenderTarget textures can be attached to a framebuffer.
	RenderTarget bool
}

// FramebufferStatus is the completeness of a framebuffer.
type FramebufferStatus uint8

// Framebuffer completeness values.
const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferIncompleteAttachment
	FramebufferMissingAttachment
	FramebufferIncompleteDrawBuffer
	FramebufferIncompleteReadBuffer
	FramebufferIncompleteDimensions
	FramebufferUnsupported
	FramebufferUnknown
)

// Err returns nil for a complete framebuffer and the matching sentinel
// error otherwise.
func (s FramebufferStatus) Err() error {
	switch s {
	case FramebufferComplete:
		return nil
	case FramebufferIncompleteAttachment:
		return ErrFramebufferIncompleteAttachment
	case FramebufferMissingAttachment:
		return ErrFramebufferMissingAttachment
	case FramebufferIncompleteDrawBuffer:
		return ErrFramebufferIncompleteDrawBuffer
	case FramebufferIncompleteReadBuffer:
		return ErrFramebufferIncompleteReadBuffer
	case FramebufferIncompleteDimensions:
		return ErrFramebufferIncompleteDimensions
	case FramebufferUnsupported:
		return ErrFramebufferUnsupported
	default:
		return ErrFramebufferOther
	}
}
