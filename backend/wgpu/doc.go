// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gfx.Backend on the gogpu/wgpu hardware
// abstraction layer.
//
// The backend turns the stateful draw calls issued by a gfx.Context into
// WebGPU render passes. Draws are recorded on the CPU and encoded when the
// context flushes:
//
//	gfx state + Draw -> command list -> Flush -> render passes -> Submit
//
// Key pieces:
//
//   - Backend: the gfx.Backend implementation and owner of all resources
//   - pipelineCache: render pipelines keyed by a murmur3 hash of the fixed
//     function state that WebGPU bakes into a pipeline
//   - uniform arena: one uniform buffer per flush, addressed with dynamic
//     offsets so every draw keeps the uniform block it was issued with
//
// # Opening a Backend
//
// New opens the best HAL backend compiled in (Vulkan, Metal, DX12, GLES,
// then the software rasterizer):
//
//	b, err := wgpu.New(wgpu.Config{Width: 1024, Height: 768})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// A host that already owns a device, for example a gogpu window, shares it
// through NewFromProvider. The provider must expose HalDevice and HalQueue.
//
// Importing the package registers it with the backend registry as "wgpu".
//
// # Window Framebuffer
//
// Framebuffer 0 is an offscreen color texture of the configured size with
// a Depth24PlusStencil8 attachment. Hosts present it with ColorTexture or
// resize it with Resize.
//
// # Thread Safety
//
// Backend is not safe for concurrent use, like the gfx.Context driving it.
package wgpu
