// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfx is a cached, stateful graphics context.
//
// Context mirrors the pipeline state of a Backend in typed State fields and
// forwards changes only when a value actually changes. The Backend is the
// raw API underneath; backend/wgpu implements it on top of wgpu HAL and
// gfx/gfxtest records calls for tests.
package gfx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TextureUnits is the number of texture units the context tracks.
const TextureUnits = 2

// Context is the cached graphics state of one Backend.
//
// Backend errors from state changes and draws are sticky: the first one is
// kept and returned by Err until TakeErr clears it. Later calls are still
// forwarded. Context is not safe for concurrent use.
type Context struct {
	backend Backend
	logger  *slog.Logger

	err    error
	leased bool

	Blend         State[bool]
	BlendFunc     State[BlendFunc]
	BlendColor    State[Color]
	ColorMask     State[ColorMask]
	DepthTest     State[bool]
	DepthMask     State[bool]
	DepthFunc     State[gputypes.CompareFunction]
	DepthRange    State[DepthRange]
	StencilTest   State[bool]
	StencilFunc   State[StencilFunc]
	StencilMask   State[uint8]
	StencilOp     State[StencilOp]
	Viewport      State[Viewport]
	ActiveTexture State[uint8]
	Texture       [TextureUnits]State[TextureID]
	Framebuffer   State[FramebufferID]
	VertexArray   State[VertexArrayID]
	Program       State[ProgramID]

	abandonedPrograms     []ProgramID
	abandonedTextures     []TextureID
	abandonedVertexArrays []VertexArrayID
	abandonedFramebuffers []FramebufferID
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger for context diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}

// NewContext returns a context driving b. All state starts dirty.
func NewContext(b Backend, opts ...Option) (*Context, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	c := &Context{backend: b}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(nopHandler{})
	}

	c.Blend.init(c, "blend", true, b.SetBlend)
	c.BlendFunc.init(c, "blend func", BlendFunc{
		Src: gputypes.BlendFactorOne,
		Dst: gputypes.BlendFactorOneMinusSrcAlpha,
	}, b.SetBlendFunc)
	c.BlendColor.init(c, "blend color", Transparent, b.SetBlendColor)
	c.ColorMask.init(c, "color mask", ColorMaskAll, b.SetColorMask)
	c.DepthTest.init(c, "depth test", false, b.SetDepthTest)
	c.DepthMask.init(c, "depth mask", true, b.SetDepthMask)
	c.DepthFunc.init(c, "depth func", gputypes.CompareFunctionLess, b.SetDepthFunc)
	c.DepthRange.init(c, "depth range", DepthRange{Near: 0, Far: 1}, b.SetDepthRange)
	c.StencilTest.init(c, "stencil test", false, b.SetStencilTest)
	c.StencilFunc.init(c, "stencil func", StencilFunc{
		Compare: gputypes.CompareFunctionAlways,
		Mask:    0xFF,
	}, b.SetStencilFunc)
	c.StencilMask.init(c, "stencil mask", 0xFF, b.SetStencilMask)
	c.StencilOp.init(c, "stencil op", StencilOp{
		Fail:      hal.StencilOperationKeep,
		DepthFail: hal.StencilOperationKeep,
		Pass:      hal.StencilOperationKeep,
	}, b.SetStencilOp)
	c.Viewport.init(c, "viewport", Viewport{}, b.SetViewport)
	c.ActiveTexture.init(c, "active texture", 0, b.SetActiveTexture)
	for unit := range c.Texture {
		u := uint8(unit) //nolint:gosec // TextureUnits fits uint8
		c.Texture[unit].init(c, fmt.Sprintf("texture %d", unit), 0, func(id TextureID) error {
			return b.BindTexture(u, id)
		})
	}
	c.Framebuffer.init(c, "framebuffer", 0, b.BindFramebuffer)
	c.VertexArray.init(c, "vertex array", 0, b.BindVertexArray)
	c.Program.init(c, "program", 0, b.UseProgram)
	return c, nil
}

// Backend returns the raw backend. Calls made on it directly bypass the
// cache; use Lease for that.
func (c *Context) Backend() Backend {
	return c.backend
}

// Err returns the first backend error recorded since the last TakeErr.
func (c *Context) Err() error {
	return c.err
}

// TakeErr returns the recorded error and clears it.
func (c *Context) TakeErr() error {
	err := c.err
	c.err = nil
	return err
}

func (c *Context) record(err error) {
	if err == nil {
		return
	}
	if c.err == nil {
		c.err = err
		c.logger.Debug("gfx: backend error", "err", err)
	}
}

// SetDirtyState marks every cached value as unknown, so that each next Set
// reaches the backend. Call it after anything else touched the backend.
func (c *Context) SetDirtyState() {
	c.Blend.SetDirty()
	c.BlendFunc.SetDirty()
	c.BlendColor.SetDirty()
	c.ColorMask.SetDirty()
	c.DepthTest.SetDirty()
	c.DepthMask.SetDirty()
	c.DepthFunc.SetDirty()
	c.DepthRange.SetDirty()
	c.StencilTest.SetDirty()
	c.StencilFunc.SetDirty()
	c.StencilMask.SetDirty()
	c.StencilOp.SetDirty()
	c.Viewport.SetDirty()
	c.ActiveTexture.SetDirty()
	for i := range c.Texture {
		c.Texture[i].SetDirty()
	}
	c.Framebuffer.SetDirty()
	c.VertexArray.SetDirty()
	c.Program.SetDirty()
}

// Lease hands the raw backend to fn. While fn runs, every cached setter
// records ErrContextLeased instead of applying. When fn returns or panics
// the whole state is marked dirty.
func (c *Context) Lease(fn func(raw Backend) error) error {
	if c.leased {
		return ErrContextLeased
	}
	c.leased = true
	defer func() {
		c.leased = false
		c.SetDirtyState()
	}()
	return fn(c.backend)
}

// Leased reports whether a lease is active.
func (c *Context) Leased() bool {
	return c.leased
}

// Clear clears the selected buffers of the bound framebuffer.
func (c *Context) Clear(color *Color, depth *float32, stencil *int32) {
	if c.leased {
		c.record(fmt.Errorf("%w: clear", ErrContextLeased))
		return
	}
	if err := c.backend.Clear(ClearValues{Color: color, Depth: depth, Stencil: stencil}); err != nil {
		c.record(fmt.Errorf("gfx: clear: %w", err))
	}
}

// SetUniforms uploads a program's uniform block.
func (c *Context) SetUniforms(id ProgramID, block []byte) {
	if c.leased {
		c.record(fmt.Errorf("%w: set uniforms", ErrContextLeased))
		return
	}
	if err := c.backend.SetUniforms(id, block); err != nil {
		c.record(fmt.Errorf("gfx: set uniforms: %w", err))
	}
}

// Draw draws from the bound vertex array with the current state.
func (c *Context) Draw(mode gputypes.PrimitiveTopology, first, count uint32) {
	if c.leased {
		c.record(fmt.Errorf("%w: draw", ErrContextLeased))
		return
	}
	if count == 0 {
		return
	}
	if err := c.backend.Draw(mode, first, count); err != nil {
		c.record(fmt.Errorf("gfx: draw: %w", err))
	}
}

// Flush submits recorded work.
func (c *Context) Flush() {
	if err := c.backend.Flush(); err != nil {
		c.record(fmt.Errorf("gfx: flush: %w", err))
	}
}

// CreateProgram links a program.
func (c *Context) CreateProgram(desc *ProgramDescriptor) (ProgramID, error) {
	id, err := c.backend.CreateProgram(desc)
	if err != nil {
		return 0, fmt.Errorf("gfx: create program %q: %w", desc.Label, err)
	}
	return id, nil
}

// UniformLocation returns the index of a uniform, or -1.
func (c *Context) UniformLocation(id ProgramID, name string) int32 {
	return c.backend.UniformLocation(id, name)
}

// CreateVertexArray uploads vertex data.
func (c *Context) CreateVertexArray(desc *VertexArrayDescriptor) (VertexArrayID, error) {
	id, err := c.backend.CreateVertexArray(desc)
	if err != nil {
		return 0, fmt.Errorf("gfx: create vertex array %q: %w", desc.Label, err)
	}
	return id, nil
}

// CreateTexture allocates a texture.
func (c *Context) CreateTexture(desc *TextureDescriptor) (TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return 0, fmt.Errorf("%w: texture %q %dx%d", ErrInvalidSize, desc.Label, desc.Width, desc.Height)
	}
	id, err := c.backend.CreateTexture(desc)
	if err != nil {
		return 0, fmt.Errorf("gfx: create texture %q: %w", desc.Label, err)
	}
	return id, nil
}

// UploadTexture replaces the contents of a texture.
func (c *Context) UploadTexture(id TextureID, data []byte) error {
	if err := c.backend.UploadTexture(id, data); err != nil {
		return fmt.Errorf("gfx: upload texture %d: %w", id, err)
	}
	return nil
}

// CreateFramebuffer creates an empty framebuffer.
func (c *Context) CreateFramebuffer() (FramebufferID, error) {
	id, err := c.backend.CreateFramebuffer()
	if err != nil {
		return 0, fmt.Errorf("gfx: create framebuffer: %w", err)
	}
	return id, nil
}

// AbandonProgram queues a program for deletion in PerformCleanup.
func (c *Context) AbandonProgram(id ProgramID) {
	if id != 0 {
		c.abandonedPrograms = append(c.abandonedPrograms, id)
	}
}

// AbandonTexture queues a texture for deletion in PerformCleanup.
func (c *Context) AbandonTexture(id TextureID) {
	if id != 0 {
		c.abandonedTextures = append(c.abandonedTextures, id)
	}
}

// AbandonVertexArray queues a vertex array for deletion in PerformCleanup.
func (c *Context) AbandonVertexArray(id VertexArrayID) {
	if id != 0 {
		c.abandonedVertexArrays = append(c.abandonedVertexArrays, id)
	}
}

// AbandonFramebuffer queues a framebuffer for deletion in PerformCleanup.
func (c *Context) AbandonFramebuffer(id FramebufferID) {
	if id != 0 {
		c.abandonedFramebuffers = append(c.abandonedFramebuffers, id)
	}
}

// PerformCleanup deletes abandoned objects. Bindings to a deleted object
// fall back to the default in the cache, as the backend unbinds it.
func (c *Context) PerformCleanup() {
	for _, id := range c.abandonedPrograms {
		c.Program.forget(id)
		c.backend.DeleteProgram(id)
	}
	for _, id := range c.abandonedTextures {
		for i := range c.Texture {
			c.Texture[i].forget(id)
		}
		c.backend.DeleteTexture(id)
	}
	for _, id := range c.abandonedVertexArrays {
		c.VertexArray.forget(id)
		c.backend.DeleteVertexArray(id)
	}
	for _, id := range c.abandonedFramebuffers {
		c.Framebuffer.forget(id)
		c.backend.DeleteFramebuffer(id)
	}
	c.abandonedPrograms = c.abandonedPrograms[:0]
	c.abandonedTextures = c.abandonedTextures[:0]
	c.abandonedVertexArrays = c.abandonedVertexArrays[:0]
	c.abandonedFramebuffers = c.abandonedFramebuffers[:0]
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
