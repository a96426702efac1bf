// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/shader"
)

// uniformAlign is the dynamic offset alignment of uniform bindings, the
// WebGPU default for minUniformBufferOffsetAlignment.
const uniformAlign = 256

type clearOp struct {
	color   *gputypes.Color
	depth   *float32
	stencil *uint32
}

type drawOp struct {
	key      pipelineKey
	program  *program
	vertices *vertexArray
	textures [gfx.TextureUnits]*texture

	uniformOffset uint32
	viewport      gfx.Viewport
	depthRange    gfx.DepthRange
	stencilRef    uint8
	blendColor    gfx.Color

	first, count uint32
}

// command is a clear or a draw into target.
type command struct {
	target *framebuffer
	clear  *clearOp
	draw   *drawOp
}

type bindKey struct {
	program  *program
	textures [gfx.TextureUnits]*texture
}

// frame is the work recorded since the last flush.
type frame struct {
	commands []command
	uniforms []byte

	uniformBuf  hal.Buffer
	uniformSize uint64
	bindGroups  map[bindKey]hal.BindGroup
}

// pushUniforms appends a copy of block to the arena and returns its
// offset.
func (f *frame) pushUniforms(block []byte) uint32 {
	off := alignUp(uint32(len(f.uniforms)), uniformAlign) //nolint:gosec // arena stays far below 4 GiB
	if pad := int(off) - len(f.uniforms); pad > 0 {
		f.uniforms = append(f.uniforms, make([]byte, pad)...)
	}
	f.uniforms = append(f.uniforms, block...)
	return off
}

// uses reports whether a recorded draw samples t or renders into it.
func (f *frame) uses(t *texture) bool {
	for i := range f.commands {
		c := &f.commands[i]
		if c.target.color == t {
			return true
		}
		if c.draw != nil {
			for _, dt := range c.draw.textures {
				if dt == t {
					return true
				}
			}
		}
	}
	return false
}

// upload writes the uniform arena, growing the buffer when needed.
func (f *frame) upload(device hal.Device, queue hal.Queue) error {
	if len(f.uniforms) == 0 {
		return nil
	}
	need := uint64(alignUp(uint32(len(f.uniforms)), uniformAlign)) //nolint:gosec // see pushUniforms
	if f.uniformBuf == nil || f.uniformSize < need {
		if f.uniformBuf != nil {
			device.DestroyBuffer(f.uniformBuf)
			f.uniformBuf = nil
		}
		size := max(need, 2*f.uniformSize)
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "mapgpu_uniforms",
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create uniform buffer: %w", err)
		}
		f.uniformBuf, f.uniformSize = buf, size
	}
	if err := queue.WriteBuffer(f.uniformBuf, 0, f.uniforms); err != nil {
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}
	return nil
}

// bindGroup returns the bind group of a draw, shared by every draw of the
// frame with the same program and textures.
func (f *frame) bindGroup(device hal.Device, d *drawOp, sampler hal.Sampler) (hal.BindGroup, error) {
	k := bindKey{program: d.program, textures: d.textures}
	if bg, ok := f.bindGroups[k]; ok {
		return bg, nil
	}
	entries := []gputypes.BindGroupEntry{{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: f.uniformBuf.NativeHandle(),
			Size:   uint64(d.program.blockSize),
		},
	}}
	for i := range min(d.program.textures, gfx.TextureUnits) {
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  shader.TextureBinding(i),
				Resource: gputypes.TextureViewBinding{TextureView: d.textures[i].view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  shader.SamplerBinding(i),
				Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()},
			},
		)
	}
	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   d.program.label + "_bind_group",
		Layout:  d.program.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group %q: %w", d.program.label, err)
	}
	if f.bindGroups == nil {
		f.bindGroups = make(map[bindKey]hal.BindGroup)
	}
	f.bindGroups[k] = bg
	return bg, nil
}

// reset drops the recorded work and the bind groups built for it. The
// uniform buffer is kept for the next frame.
func (f *frame) reset(device hal.Device) {
	for k, bg := range f.bindGroups {
		device.DestroyBindGroup(bg)
		delete(f.bindGroups, k)
	}
	clear(f.commands)
	f.commands = f.commands[:0]
	f.uniforms = f.uniforms[:0]
}

func (f *frame) destroy(device hal.Device) {
	f.reset(device)
	if f.uniformBuf != nil {
		device.DestroyBuffer(f.uniformBuf)
		f.uniformBuf, f.uniformSize = nil, 0
	}
}

// Clear records a clear of the bound framebuffer. It takes effect as the
// load operation of the next render pass. A color mask with any channel
// enabled clears all four; a zero stencil mask or a disabled depth mask
// leaves that buffer alone.
func (b *Backend) Clear(v gfx.ClearValues) error {
	if b.closed {
		return ErrClosed
	}
	fb, err := b.target()
	if err != nil {
		return err
	}
	if err := fb.status().Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIncompleteFramebuffer, err)
	}
	op := &clearOp{}
	if v.Color != nil && b.st.colorMask != gfx.ColorMaskNone {
		c := v.Color
		op.color = &gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
	}
	if v.Depth != nil && b.st.depthMask {
		d := *v.Depth
		op.depth = &d
	}
	if v.Stencil != nil && b.st.stencilMask != 0 {
		s := uint32(*v.Stencil) & uint32(b.st.stencilMask) //nolint:gosec // stencil values are 8 bit
		op.stencil = &s
	}
	if op.color == nil && op.depth == nil && op.stencil == nil {
		return nil
	}
	b.frame.commands = append(b.frame.commands, command{target: fb, clear: op})
	return nil
}

// Draw records a draw with a snapshot of the current state and uniform
// block.
func (b *Backend) Draw(mode gputypes.PrimitiveTopology, first, count uint32) error {
	if b.closed {
		return ErrClosed
	}
	if count == 0 {
		return nil
	}
	p, ok := b.programs[b.st.program]
	if !ok {
		return ErrNoProgram
	}
	va, ok := b.vertexArrays[b.st.vertexArray]
	if !ok {
		return ErrNoVertexArray
	}
	fb, err := b.target()
	if err != nil {
		return err
	}
	if err := fb.status().Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIncompleteFramebuffer, err)
	}

	op := &drawOp{
		key:        keyFor(&b.st, mode, fb.color.format),
		program:    p,
		vertices:   va,
		viewport:   b.st.viewport,
		depthRange: b.st.depthRange,
		stencilRef: b.st.stencilFunc.Ref,
		blendColor: b.st.blendColor,
		first:      first,
		count:      count,
	}
	for i := range min(p.textures, gfx.TextureUnits) {
		t := b.textures[b.st.textures[i]]
		if t == nil {
			if t, err = b.blank(); err != nil {
				return err
			}
		}
		op.textures[i] = t
	}
	op.uniformOffset = b.frame.pushUniforms(p.block)
	b.frame.commands = append(b.frame.commands, command{target: fb, draw: op})
	return nil
}

// blank returns a 1x1 transparent texture for units with nothing bound.
func (b *Backend) blank() (*texture, error) {
	if t, ok := b.textures[blankTexture]; ok {
		return t, nil
	}
	t, err := b.newTexture("mapgpu_blank", 1, 1, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	err = b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		make([]byte, 4),
		&hal.ImageDataLayout{BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		b.destroyTexture(t)
		return nil, fmt.Errorf("wgpu: write blank texture: %w", err)
	}
	b.textures[blankTexture] = t
	return t, nil
}

// blankTexture is the reserved ID of the blank texture. IDs handed out by
// the backend count up from 1 and never reach it.
const blankTexture = ^gfx.TextureID(0)

// Flush encodes the recorded work into render passes, submits it and
// waits for the GPU. A new pass starts at every clear and every change of
// framebuffer.
func (b *Backend) Flush() error {
	if b.closed {
		return ErrClosed
	}
	if len(b.frame.commands) == 0 {
		return nil
	}
	defer b.frame.reset(b.device)

	if err := b.frame.upload(b.device, b.queue); err != nil {
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mapgpu_frame"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mapgpu_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	passes, err := b.encode(encoder)
	if err != nil {
		encoder.DiscardEncoding()
		return err
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	if _, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := b.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	b.logger.Debug("wgpu: frame submitted",
		"commands", len(b.frame.commands), "passes", passes, "uniformBytes", len(b.frame.uniforms))
	return nil
}

// settle flushes recorded work before a resource it may reference is
// destroyed.
func (b *Backend) settle() {
	if len(b.frame.commands) == 0 {
		return
	}
	if err := b.Flush(); err != nil {
		b.logger.Warn("wgpu: flush before delete failed", "err", err)
	}
}

// passState is the dynamic state already set in the open render pass.
type passState struct {
	pipeline   hal.RenderPipeline
	bindGroup  hal.BindGroup
	offset     uint32
	vertices   hal.Buffer
	viewport   [6]float32
	stencilRef uint32
	blendColor gfx.Color
	fresh      bool
}

func (b *Backend) encode(enc hal.CommandEncoder) (passes int, err error) {
	var (
		pass   hal.RenderPassEncoder
		target *framebuffer
		ps     passState
	)
	defer func() {
		if pass != nil {
			pass.End()
		}
	}()

	for i := range b.frame.commands {
		c := &b.frame.commands[i]
		if pass == nil || c.clear != nil || c.target != target {
			if pass != nil {
				pass.End()
			}
			pass = enc.BeginRenderPass(passDescriptor(c.target, c.clear))
			target = c.target
			ps = passState{fresh: true}
			passes++
		}
		if c.draw == nil {
			continue
		}
		if err := b.encodeDraw(pass, &ps, c.target, c.draw); err != nil {
			return passes, err
		}
	}
	return passes, nil
}

func passDescriptor(fb *framebuffer, clr *clearOp) *hal.RenderPassDescriptor {
	color := hal.RenderPassColorAttachment{
		View:    fb.color.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	ds := &hal.RenderPassDepthStencilAttachment{
		View:           fb.depth.view,
		DepthLoadOp:    gputypes.LoadOpLoad,
		DepthStoreOp:   gputypes.StoreOpStore,
		StencilLoadOp:  gputypes.LoadOpLoad,
		StencilStoreOp: gputypes.StoreOpStore,
	}
	if clr != nil {
		if clr.color != nil {
			color.LoadOp = gputypes.LoadOpClear
			color.ClearValue = *clr.color
		}
		if clr.depth != nil {
			ds.DepthLoadOp = gputypes.LoadOpClear
			ds.DepthClearValue = *clr.depth
		}
		if clr.stencil != nil {
			ds.StencilLoadOp = gputypes.LoadOpClear
			ds.StencilClearValue = *clr.stencil
		}
	}
	return &hal.RenderPassDescriptor{
		Label:                  fb.label,
		ColorAttachments:       []hal.RenderPassColorAttachment{color},
		DepthStencilAttachment: ds,
	}
}

func (b *Backend) encodeDraw(pass hal.RenderPassEncoder, ps *passState, fb *framebuffer, d *drawOp) error {
	pl, err := b.pipelines.getOrCreate(b.device, d.key, d.program)
	if err != nil {
		return err
	}
	bg, err := b.frame.bindGroup(b.device, d, b.sampler)
	if err != nil {
		return err
	}

	if ps.fresh || ps.pipeline != pl {
		pass.SetPipeline(pl)
		ps.pipeline = pl
	}
	if ps.fresh || ps.bindGroup != bg || ps.offset != d.uniformOffset {
		pass.SetBindGroup(0, bg, []uint32{d.uniformOffset})
		ps.bindGroup, ps.offset = bg, d.uniformOffset
	}
	if ps.fresh || ps.vertices != d.vertices.buf {
		pass.SetVertexBuffer(0, d.vertices.buf, 0)
		ps.vertices = d.vertices.buf
	}
	if vp := viewportOf(fb, d.viewport, d.depthRange); ps.fresh || ps.viewport != vp {
		pass.SetViewport(vp[0], vp[1], vp[2], vp[3], vp[4], vp[5])
		ps.viewport = vp
	}
	if ref := uint32(d.stencilRef); ps.fresh || ps.stencilRef != ref {
		pass.SetStencilReference(ref)
		ps.stencilRef = ref
	}
	if d.key.blend && (ps.fresh || ps.blendColor != d.blendColor) {
		c := d.blendColor
		pass.SetBlendConstant(&gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)})
		ps.blendColor = c
	}
	ps.fresh = false

	pass.Draw(d.count, 1, d.first, 0)
	return nil
}

// viewportOf converts a bottom-left origin viewport into the top-left
// origin WebGPU uses, clamped to the framebuffer. A zero-sized viewport
// covers the whole framebuffer. Clip space z maps to depth r.Near, so the
// range keeps its ordering.
func viewportOf(fb *framebuffer, v gfx.Viewport, r gfx.DepthRange) [6]float32 {
	if v.Width == 0 || v.Height == 0 {
		v = gfx.Viewport{Width: fb.width, Height: fb.height}
	}
	x := float32(max(v.X, 0))
	w := min(float32(v.Width), float32(fb.width)-x)
	h := float32(v.Height)
	y := float32(fb.height) - float32(v.Y) - h
	if y < 0 {
		h += y
		y = 0
	}
	near := clamp01(r.Near)
	far := max(clamp01(r.Far), near)
	return [6]float32{x, y, max(w, 1), max(h, 1), near, far}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
