package mapgpu

import (
	"github.com/gogpu/mapgpu/gfx"
)

// Layer is one entry of the style's layer stack. The set of kinds is
// closed: *BackgroundLayer, *CustomLayer and *TileLayer.
type Layer interface {
	ID() string
	// HasRenderPass reports whether the layer has work in pass.
	HasRenderPass(pass RenderPass) bool

	isLayer()
}

// BackgroundLayer fills the whole viewport with a color.
type BackgroundLayer struct {
	LayerID string
	Color   gfx.Color
	Opacity float32
}

func (l *BackgroundLayer) ID() string { return l.LayerID }

// HasRenderPass is true for Translucent when the layer is visible, and
// also for Opaque when it is fully opaque.
func (l *BackgroundLayer) HasRenderPass(pass RenderPass) bool {
	if l.Opacity <= 0 {
		return false
	}
	passes := Translucent
	if l.Opacity >= 1 && l.Color.A >= 1 {
		passes |= Opaque
	}
	return passes&pass != 0
}

func (*BackgroundLayer) isLayer() {}

// CustomRenderer draws a custom layer with raw backend access. Any state
// it changes is discarded when it returns.
type CustomRenderer interface {
	Render(view ViewState, raw gfx.Backend) error
}

// CustomRendererFunc adapts a function to CustomRenderer.
type CustomRendererFunc func(view ViewState, raw gfx.Backend) error

func (f CustomRendererFunc) Render(view ViewState, raw gfx.Backend) error { return f(view, raw) }

// CustomLayer hands the context to host code. It always renders in the
// translucent pass.
type CustomLayer struct {
	LayerID  string
	Renderer CustomRenderer
}

func (l *CustomLayer) ID() string { return l.LayerID }

func (l *CustomLayer) HasRenderPass(pass RenderPass) bool {
	return l.Renderer != nil && pass == Translucent
}

func (*CustomLayer) isLayer() {}

// TileLayer is a layer drawn tile by tile from buckets.
type TileLayer struct {
	LayerID string
	Passes  RenderPass
}

func (l *TileLayer) ID() string { return l.LayerID }

func (l *TileLayer) HasRenderPass(pass RenderPass) bool { return l.Passes&pass != 0 }

func (*TileLayer) isLayer() {}
