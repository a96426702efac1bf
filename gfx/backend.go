// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "github.com/gogpu/gputypes"

// Backend is the raw graphics API driven by a Context.
//
// State setters are called only when the cached value changes or a resync
// is pending. Implementations apply them in call order; a setter's effect
// lasts until the next call of the same setter.
type Backend interface {
	SetBlend(enabled bool) error
	SetBlendFunc(BlendFunc) error
	SetBlendColor(Color) error
	SetColorMask(ColorMask) error
	SetDepthTest(enabled bool) error
	SetDepthMask(write bool) error
	SetDepthFunc(gputypes.CompareFunction) error
	SetDepthRange(DepthRange) error
	SetStencilTest(enabled bool) error
	SetStencilFunc(StencilFunc) error
	SetStencilMask(mask uint8) error
	SetStencilOp(StencilOp) error
	SetViewport(Viewport) error
	SetActiveTexture(unit uint8) error
	BindTexture(unit uint8, id TextureID) error
	BindFramebuffer(FramebufferID) error
	BindVertexArray(VertexArrayID) error
	UseProgram(ProgramID) error

	// Clear clears the buffers selected by v in the bound framebuffer,
	// honouring the current color and stencil write masks.
	Clear(v ClearValues) error
	// SetUniforms replaces the uniform block of a program. The block is
	// captured by the next draw using that program.
	SetUniforms(id ProgramID, block []byte) error
	// Draw draws count vertices starting at first from the bound vertex
	// array with the current state.
	Draw(mode gputypes.PrimitiveTopology, first, count uint32) error
	// Flush submits all recorded work and waits for it to complete.
	Flush() error

	CreateProgram(desc *ProgramDescriptor) (ProgramID, error)
	// UniformLocation returns the index of a named uniform of a linked
	// program, or -1 when the program has no such uniform.
	UniformLocation(id ProgramID, name string) int32
	CreateVertexArray(desc *VertexArrayDescriptor) (VertexArrayID, error)
	CreateTexture(desc *TextureDescriptor) (TextureID, error)
	// UploadTexture replaces the full contents of a texture. Data is tightly
	// packed rows in the texture's format.
	UploadTexture(id TextureID, data []byte) error
	CreateFramebuffer() (FramebufferID, error)
	AttachColorTexture(fb FramebufferID, tex TextureID) error
	FramebufferStatus(fb FramebufferID) FramebufferStatus

	DeleteProgram(ProgramID)
	DeleteVertexArray(VertexArrayID)
	DeleteTexture(TextureID)
	DeleteFramebuffer(FramebufferID)
}
