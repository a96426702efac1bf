// Package mapgpu renders prepared map frames on a GPU.
//
// # Overview
//
// A Painter turns one frame's render graph, an ordered list of layers where
// each tile-based layer is split across many tiles, into a correctly
// occluded and blended image. It does not decide what to draw: styling,
// tile loading and tessellation happen elsewhere and arrive as Buckets.
//
// # Quick Start
//
//	backend, err := wgpu.New(wgpu.Config{Width: 1024, Height: 768})
//	if err != nil {
//		return err
//	}
//	p, err := mapgpu.NewPainter(backend)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	err = p.Render(&mapgpu.RenderData{
//		Order:           items,
//		Sources:         sources,
//		BackgroundColor: gfx.White,
//		View:            mapgpu.NewTransform(1024, 768, 3, 0.5, 0.5),
//	}, mapgpu.FrameData{Size: [2]uint16{1024, 768}, Time: time.Now()})
//
// # Frame Phases
//
// Every frame runs, in order:
//   - Upload: atlases, frame history and bucket buffers
//   - Clear: color, depth and stencil
//   - Clip: stencil masks, one per distinct clip ID
//   - Opaque: layers top to bottom, blending off
//   - Translucent: layers bottom to top, premultiplied blending
//   - Finalize: per-source debug overlays
//   - Cleanup: texture and vertex array unbinding, flush
//
// # Depth
//
// Each layer owns NumSublayers slots of the depth buffer. The slot is a
// function of the layer's position in the order only, so an item receives
// the same range in the opaque and the translucent pass.
//
// # Clipping
//
// Tiles of one source may overlap (a parent shown under its loading
// children, or world copies). The clip package assigns stencil IDs so that
// every pixel is drawn by exactly one tile per source.
package mapgpu

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
