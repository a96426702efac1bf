// Package backend selects the graphics backend a map painter draws
// through.
//
// Backends register a Factory from an init function and are opened by name
// or by priority:
//
//	import _ "github.com/gogpu/mapgpu/backend/wgpu"
//
//	b, err := backend.Default(backend.Config{Width: 1024, Height: 768})
//	if err != nil {
//		log.Fatal(err)
//	}
//	painter, err := mapgpu.NewPainter(b)
//
// # Available Backends
//
//   - "wgpu": WebGPU HAL through gogpu/wgpu (Vulkan, Metal, DX12, GLES or
//     the software rasterizer, whichever the platform offers first)
package backend
