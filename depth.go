package mapgpu

import "github.com/gogpu/mapgpu/gfx"

const (
	// NumSublayers is the number of depth slots each layer owns.
	NumSublayers = 3
	// DepthEpsilon is the width of one depth slot.
	DepthEpsilon float32 = 1.0 / (1 << 16)
)

// depthRangeSize is the span of every layer's range for an order of n
// items. Two extra layers of slots stay free at the near end.
func depthRangeSize(n int) float32 {
	return 1 - float32(n+2)*NumSublayers*DepthEpsilon
}

// depthRangeFor returns the range of sublayer n of the layer at traversal
// position layer.
func depthRangeFor(layer, n int, size float32) gfx.DepthRange {
	near := float32((1+layer)*NumSublayers+n) * DepthEpsilon
	return gfx.DepthRange{Near: near, Far: near + size}
}

// DepthRangeForSublayer returns the depth range of sublayer n of the item
// being drawn.
func (p *Painter) DepthRangeForSublayer(n int) gfx.DepthRange {
	return depthRangeFor(p.currentLayer, n, p.depthRangeSize)
}

// SetDepthSublayer sets the context depth range to sublayer n of the item
// being drawn.
func (p *Painter) SetDepthSublayer(n int) {
	p.ctx.DepthRange.Set(p.DepthRangeForSublayer(n))
}
