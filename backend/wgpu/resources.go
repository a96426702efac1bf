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

// Shader entry points of every program.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

// depthStencilFormat is the format of every depth-stencil attachment.
const depthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8

type program struct {
	label        string
	module       hal.ShaderModule
	bindLayout   hal.BindGroupLayout
	layout       hal.PipelineLayout
	vertexLayout gputypes.VertexBufferLayout
	uniforms     []gfx.UniformInfo
	blockSize    uint32
	block        []byte
	textures     int
}

type texture struct {
	label         string
	tex           hal.Texture
	view          hal.TextureView
	width, height uint32
	format        gputypes.TextureFormat
	renderTarget  bool
}

type vertexArray struct {
	buf  hal.Buffer
	size uint64
}

type framebuffer struct {
	label string
	color *texture
	// depth is created with the color attachment and sized to match.
	depth         *texture
	width, height uint32
}

func (b *Backend) CreateProgram(desc *gfx.ProgramDescriptor) (gfx.ProgramID, error) {
	if b.closed {
		return 0, ErrClosed
	}
	module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.WGSL, SPIRV: desc.SPIRV},
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create shader module %q: %w", desc.Label, err)
	}

	size := uniformBlockSize(desc.UniformSize)
	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer: &gputypes.BufferBindingLayout{
			Type:             gputypes.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   uint64(size),
		},
	}}
	for i := range desc.Textures {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    shader.TextureBinding(i),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    shader.SamplerBinding(i),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		b.device.DestroyShaderModule(module)
		return 0, fmt.Errorf("wgpu: create bind group layout %q: %w", desc.Label, err)
	}
	layout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		b.device.DestroyBindGroupLayout(bindLayout)
		b.device.DestroyShaderModule(module)
		return 0, fmt.Errorf("wgpu: create pipeline layout %q: %w", desc.Label, err)
	}

	id := gfx.ProgramID(b.id())
	b.programs[id] = &program{
		label:        desc.Label,
		module:       module,
		bindLayout:   bindLayout,
		layout:       layout,
		vertexLayout: desc.VertexLayout,
		uniforms:     append([]gfx.UniformInfo(nil), desc.Uniforms...),
		blockSize:    size,
		block:        make([]byte, size),
		textures:     desc.Textures,
	}
	return id, nil
}

// uniformBlockSize rounds a block up to 16 bytes, with a floor of one
// vec4 so that every program has a bindable uniform buffer.
func uniformBlockSize(size uint32) uint32 {
	if size < 16 {
		return 16
	}
	return alignUp(size, 16)
}

func alignUp(v, a uint32) uint32 {
	return (v + a - 1) &^ (a - 1)
}

func (b *Backend) UniformLocation(id gfx.ProgramID, name string) int32 {
	p, ok := b.programs[id]
	if !ok {
		return -1
	}
	for i, u := range p.uniforms {
		if u.Name == name {
			return int32(i) //nolint:gosec // uniform counts are small
		}
	}
	return -1
}

func (b *Backend) SetUniforms(id gfx.ProgramID, block []byte) error {
	p, ok := b.programs[id]
	if !ok {
		return ErrUnknownResource
	}
	n := copy(p.block, block)
	clear(p.block[n:])
	return nil
}

func (b *Backend) DeleteProgram(id gfx.ProgramID) {
	p, ok := b.programs[id]
	if !ok {
		return
	}
	b.settle()
	delete(b.programs, id)
	if b.st.program == id {
		b.st.program = 0
	}
	b.pipelines.evictProgram(b.device, id)
	b.device.DestroyPipelineLayout(p.layout)
	b.device.DestroyBindGroupLayout(p.bindLayout)
	b.device.DestroyShaderModule(p.module)
}

func (b *Backend) CreateVertexArray(desc *gfx.VertexArrayDescriptor) (gfx.VertexArrayID, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if len(desc.Data) == 0 {
		return 0, fmt.Errorf("wgpu: vertex array %q: %w", desc.Label, ErrDataSize)
	}
	// Buffer writes must be a multiple of four bytes.
	data := desc.Data
	if pad := len(data) % 4; pad != 0 {
		data = append(append([]byte(nil), data...), make([]byte, 4-pad)...)
	}
	size := uint64(len(data))
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create vertex buffer %q: %w", desc.Label, err)
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		b.device.DestroyBuffer(buf)
		return 0, fmt.Errorf("wgpu: write vertex buffer %q: %w", desc.Label, err)
	}
	id := gfx.VertexArrayID(b.id())
	b.vertexArrays[id] = &vertexArray{buf: buf, size: size}
	return id, nil
}

func (b *Backend) DeleteVertexArray(id gfx.VertexArrayID) {
	va, ok := b.vertexArrays[id]
	if !ok {
		return
	}
	b.settle()
	delete(b.vertexArrays, id)
	if b.st.vertexArray == id {
		b.st.vertexArray = 0
	}
	b.device.DestroyBuffer(va.buf)
}

func (b *Backend) CreateTexture(desc *gfx.TextureDescriptor) (gfx.TextureID, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if desc.Width == 0 || desc.Height == 0 {
		return 0, gfx.ErrInvalidSize
	}
	if _, err := bytesPerPixel(desc.Format); err != nil {
		return 0, err
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	}
	t, err := b.newTexture(desc.Label, desc.Width, desc.Height, desc.Format, usage)
	if err != nil {
		return 0, err
	}
	t.renderTarget = desc.RenderTarget
	id := gfx.TextureID(b.id())
	b.textures[id] = t
	return id, nil
}

func (b *Backend) newTexture(label string, width, height uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, error) {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", label, err)
	}
	return &texture{
		label:        label,
		tex:          tex,
		view:         view,
		width:        width,
		height:       height,
		format:       format,
		renderTarget: usage&gputypes.TextureUsageRenderAttachment != 0,
	}, nil
}

func (b *Backend) destroyTexture(t *texture) {
	if t == nil {
		return
	}
	if t.view != nil {
		b.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		b.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func bytesPerPixel(f gputypes.TextureFormat) (uint32, error) {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1, nil
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

// UploadTexture writes the full texture. Draws recorded earlier in the
// frame are flushed first so they sample the previous contents.
func (b *Backend) UploadTexture(id gfx.TextureID, data []byte) error {
	t, ok := b.textures[id]
	if !ok {
		return ErrUnknownResource
	}
	bpp, err := bytesPerPixel(t.format)
	if err != nil {
		return err
	}
	row := t.width * bpp
	if uint64(len(data)) != uint64(row)*uint64(t.height) {
		return fmt.Errorf("%w: %q has %d bytes, want %d", ErrDataSize, t.label, len(data), row*t.height)
	}
	if b.frame.uses(t) {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	err = b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: row, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture %q: %w", t.label, err)
	}
	return nil
}

func (b *Backend) DeleteTexture(id gfx.TextureID) {
	t, ok := b.textures[id]
	if !ok {
		return
	}
	b.settle()
	delete(b.textures, id)
	for i := range b.st.textures {
		if b.st.textures[i] == id {
			b.st.textures[i] = 0
		}
	}
	for _, fb := range b.framebuffers {
		if fb.color == t {
			b.destroyTexture(fb.depth)
			fb.color, fb.depth = nil, nil
		}
	}
	b.destroyTexture(t)
}

func (b *Backend) CreateFramebuffer() (gfx.FramebufferID, error) {
	if b.closed {
		return 0, ErrClosed
	}
	id := gfx.FramebufferID(b.id())
	b.framebuffers[id] = &framebuffer{label: fmt.Sprintf("framebuffer %d", id)}
	return id, nil
}

func (b *Backend) AttachColorTexture(id gfx.FramebufferID, tex gfx.TextureID) error {
	fb, ok := b.framebuffers[id]
	if !ok {
		return ErrUnknownResource
	}
	t, ok := b.textures[tex]
	if !ok {
		return ErrUnknownResource
	}
	return b.attach(fb, t)
}

// attach sets the color attachment of fb and gives it a depth-stencil
// attachment of the same size.
func (b *Backend) attach(fb *framebuffer, color *texture) error {
	if fb.depth != nil && (fb.width != color.width || fb.height != color.height) {
		b.destroyTexture(fb.depth)
		fb.depth = nil
	}
	if fb.depth == nil {
		depth, err := b.newTexture(fb.label+"_depth_stencil", color.width, color.height,
			depthStencilFormat, gputypes.TextureUsageRenderAttachment)
		if err != nil {
			return err
		}
		fb.depth = depth
	}
	fb.color = color
	fb.width, fb.height = color.width, color.height
	return nil
}

func (b *Backend) FramebufferStatus(id gfx.FramebufferID) gfx.FramebufferStatus {
	fb := b.window
	if id != 0 {
		var ok bool
		if fb, ok = b.framebuffers[id]; !ok {
			return gfx.FramebufferUnknown
		}
	}
	return fb.status()
}

func (fb *framebuffer) status() gfx.FramebufferStatus {
	switch {
	case fb == nil:
		return gfx.FramebufferUnknown
	case fb.color == nil:
		return gfx.FramebufferMissingAttachment
	case !fb.color.renderTarget:
		return gfx.FramebufferIncompleteAttachment
	case fb.depth == nil:
		return gfx.FramebufferIncompleteAttachment
	case fb.depth.width != fb.color.width || fb.depth.height != fb.color.height:
		return gfx.FramebufferIncompleteDimensions
	}
	return gfx.FramebufferComplete
}

func (b *Backend) DeleteFramebuffer(id gfx.FramebufferID) {
	fb, ok := b.framebuffers[id]
	if !ok {
		return
	}
	b.settle()
	delete(b.framebuffers, id)
	if b.st.framebuffer == id {
		b.st.framebuffer = 0
	}
	b.destroyFramebuffer(fb)
}

// destroyFramebuffer releases the depth-stencil attachment; the color
// texture belongs to its creator.
func (b *Backend) destroyFramebuffer(fb *framebuffer) {
	b.destroyTexture(fb.depth)
	fb.color, fb.depth = nil, nil
}
