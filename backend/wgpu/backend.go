// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/allbackends" // register platform HAL backends

	"github.com/gogpu/mapgpu/backend"
	"github.com/gogpu/mapgpu/gfx"
)

// Config describes the window framebuffer of a backend.
type Config = backend.Config

func init() {
	backend.Register(backend.WGPU, func(cfg backend.Config) (gfx.Backend, error) {
		return New(cfg)
	})
}

// Backend draws through a HAL device. It is not safe for concurrent use.
type Backend struct {
	device hal.Device
	queue  hal.Queue
	logger *slog.Logger

	// instance is set when New opened the device; Close then destroys
	// both.
	instance hal.Instance

	format  gputypes.TextureFormat
	window  *framebuffer
	sampler hal.Sampler

	st     state
	nextID uint32

	programs     map[gfx.ProgramID]*program
	textures     map[gfx.TextureID]*texture
	vertexArrays map[gfx.VertexArrayID]*vertexArray
	framebuffers map[gfx.FramebufferID]*framebuffer

	pipelines *pipelineCache
	frame     frame

	closed bool
}

var _ gfx.Backend = (*Backend)(nil)

// New opens the most capable HAL backend available, prefers a discrete or
// integrated GPU among its adapters, and creates a window framebuffer of
// cfg's size.
func New(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	api, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("wgpu: select backend: %w", err)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	b, err := NewFromDevice(openDev.Device, openDev.Queue, cfg)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.logger.Info("wgpu: device opened", "api", api.Variant().String(), "adapter", selected.Info.Name)
	return b, nil
}

// NewFromProvider draws on the device of a host such as a gogpu window.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. When cfg has no format the provider's surface
// format is used.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = provider.SurfaceFormat()
	}
	return NewFromDevice(device, queue, cfg)
}

// NewFromDevice draws on an existing device. The device stays owned by the
// caller; Close releases only what the backend created.
func NewFromDevice(device hal.Device, queue hal.Queue, cfg Config) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	b := &Backend{
		device:       device,
		queue:        queue,
		logger:       logger,
		format:       cfg.ColorFormat(),
		programs:     make(map[gfx.ProgramID]*program),
		textures:     make(map[gfx.TextureID]*texture),
		vertexArrays: make(map[gfx.VertexArrayID]*vertexArray),
		framebuffers: make(map[gfx.FramebufferID]*framebuffer),
		pipelines:    newPipelineCache(),
		st:           defaultState(),
	}

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "mapgpu_linear_clamp",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	b.sampler = sampler

	if err := b.Resize(cfg.Width, cfg.Height); err != nil {
		device.DestroySampler(sampler)
		return nil, err
	}
	return b, nil
}

// Resize recreates the window framebuffer. Pending draws into the old one
// are flushed first.
func (b *Backend) Resize(width, height uint32) error {
	if b.closed {
		return ErrClosed
	}
	if err := (Config{Width: width, Height: height}).Validate(); err != nil {
		return err
	}
	if b.window != nil {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	color, err := b.newTexture("mapgpu_window", width, height, b.format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	window := &framebuffer{label: "window"}
	if err := b.attach(window, color); err != nil {
		b.destroyTexture(color)
		return err
	}
	if b.window != nil {
		b.destroyTexture(b.window.color)
		b.destroyFramebuffer(b.window)
	}
	b.window = window
	b.logger.Debug("wgpu: window resized", "width", width, "height", height)
	return nil
}

// Size returns the size of the window framebuffer.
func (b *Backend) Size() (width, height uint32) {
	if b.window == nil {
		return 0, 0
	}
	return b.window.width, b.window.height
}

// Format returns the color format of the window framebuffer.
func (b *Backend) Format() gputypes.TextureFormat { return b.format }

// ColorTexture returns the color texture of the window framebuffer. It is
// valid until the next Resize or Close.
func (b *Backend) ColorTexture() hal.Texture {
	if b.window == nil || b.window.color == nil {
		return nil
	}
	return b.window.color.tex
}

// Device returns the HAL device the backend draws on.
func (b *Backend) Device() hal.Device { return b.device }

// PipelineStats returns the pipeline cache hit and miss counts.
func (b *Backend) PipelineStats() (hits, misses uint64) { return b.pipelines.Stats() }

// Close waits for the GPU and destroys every object the backend created.
// A device opened by New is destroyed too.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.frame.reset(b.device)
	err := b.device.WaitIdle()

	b.pipelines.destroy(b.device)
	for id := range b.programs {
		b.DeleteProgram(id)
	}
	for id := range b.vertexArrays {
		b.DeleteVertexArray(id)
	}
	for id := range b.framebuffers {
		b.DeleteFramebuffer(id)
	}
	for id := range b.textures {
		b.DeleteTexture(id)
	}
	if b.window != nil {
		b.destroyTexture(b.window.color)
		b.destroyFramebuffer(b.window)
		b.window = nil
	}
	b.frame.destroy(b.device)
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.instance != nil {
		b.device.Destroy()
		b.instance.Destroy()
		b.instance = nil
	}
	b.logger.Debug("wgpu: backend closed")
	if err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}

func (b *Backend) id() uint32 {
	b.nextID++
	return b.nextID
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
