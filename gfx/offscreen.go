// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// OffscreenTexture is a texture bound as the color attachment of its own
// framebuffer, for rendering into an intermediate target.
//
// The framebuffer is created on first Bind and kept. The texture is
// reallocated only when the requested size changes.
type OffscreenTexture struct {
	ctx    *Context
	format gputypes.TextureFormat

	texture       TextureID
	framebuffer   FramebufferID
	width, height uint32
}

// NewOffscreenTexture returns an unallocated target. Nothing is created
// until Bind.
func NewOffscreenTexture(ctx *Context, format gputypes.TextureFormat) *OffscreenTexture {
	return &OffscreenTexture{ctx: ctx, format: format}
}

// Bind makes the target current at the given size and sets the viewport to
// cover it.
func (o *OffscreenTexture) Bind(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: offscreen %dx%d", ErrInvalidSize, width, height)
	}
	if o.texture == 0 || width != o.width || height != o.height {
		if err := o.allocate(width, height); err != nil {
			return err
		}
	}
	o.ctx.Framebuffer.Set(o.framebuffer)
	o.ctx.Viewport.Set(Viewport{Width: width, Height: height})
	return nil
}

func (o *OffscreenTexture) allocate(width, height uint32) error {
	tex, err := o.ctx.CreateTexture(&TextureDescriptor{
		Label:        "offscreen",
		Width:        width,
		Height:       height,
		Format:       o.format,
		RenderTarget: true,
	})
	if err != nil {
		return err
	}
	if o.framebuffer == 0 {
		fb, err := o.ctx.CreateFramebuffer()
		if err != nil {
			o.ctx.backend.DeleteTexture(tex)
			return err
		}
		o.framebuffer = fb
	}
	if err := o.ctx.backend.AttachColorTexture(o.framebuffer, tex); err != nil {
		o.ctx.backend.DeleteTexture(tex)
		return fmt.Errorf("gfx: attach offscreen texture: %w", err)
	}
	if err := o.ctx.backend.FramebufferStatus(o.framebuffer).Err(); err != nil {
		o.rollback()
		o.ctx.backend.DeleteTexture(tex)
		return err
	}

	o.ctx.AbandonTexture(o.texture)
	o.texture = tex
	o.width, o.height = width, height
	return nil
}

// rollback points the framebuffer back at the current texture after a
// failed resize. Without a usable texture the framebuffer is dropped so the
// next Bind starts from scratch.
func (o *OffscreenTexture) rollback() {
	if o.texture != 0 {
		err := o.ctx.backend.AttachColorTexture(o.framebuffer, o.texture)
		if err == nil {
			return
		}
		o.ctx.record(fmt.Errorf("gfx: restore offscreen texture: %w", err))
		o.ctx.AbandonTexture(o.texture)
		o.texture = 0
		o.width, o.height = 0, 0
	}
	o.ctx.AbandonFramebuffer(o.framebuffer)
	o.framebuffer = 0
}

// Texture returns the color texture, or 0 before the first Bind.
func (o *OffscreenTexture) Texture() TextureID {
	return o.texture
}

// Size returns the size of the current texture.
func (o *OffscreenTexture) Size() (width, height uint32) {
	return o.width, o.height
}

// Release queues the texture and framebuffer for deletion.
func (o *OffscreenTexture) Release() {
	o.ctx.AbandonTexture(o.texture)
	o.ctx.AbandonFramebuffer(o.framebuffer)
	o.texture, o.framebuffer = 0, 0
	o.width, o.height = 0, 0
}
