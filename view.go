package mapgpu

import (
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/mapgpu/tile"
)

const (
	// TileSize is the on-screen size of a tile at its own zoom, in pixels.
	TileSize = 512
	// Extent is the size of a tile in tile units.
	Extent = 8192
)

// ViewState is the camera a frame is rendered with.
type ViewState interface {
	// Size returns the viewport size in pixels.
	Size() [2]uint16
	Zoom() float64
	// FlippedY reports whether pixel rows grow upwards.
	FlippedY() bool
	// ProjectionMatrix maps pixels to device coordinates.
	ProjectionMatrix() f32.Mat4
	// TileMatrix maps tile units of id to pixels.
	TileMatrix(id tile.UnwrappedID) f32.Mat4
}

// Transform is a top-down Web Mercator camera without rotation or pitch.
// The center is given in world coordinates, where (0, 0) is the north-west
// corner and (1, 1) the south-east corner of world copy 0.
type Transform struct {
	width, height uint16
	zoom          float64
	x, y          float64
	flippedY      bool
}

var _ ViewState = (*Transform)(nil)

// NewTransform returns a camera of the given viewport size looking at
// world position (x, y) from zoom.
func NewTransform(width, height uint16, zoom, x, y float64) *Transform {
	return &Transform{width: width, height: height, zoom: zoom, x: x, y: y}
}

// Resize changes the viewport size.
func (t *Transform) Resize(width, height uint16) {
	t.width, t.height = width, height
}

// SetZoom changes the zoom level.
func (t *Transform) SetZoom(z float64) { t.zoom = z }

// SetCenter moves the camera.
func (t *Transform) SetCenter(x, y float64) { t.x, t.y = x, y }

// SetFlippedY switches the vertical axis of the viewport.
func (t *Transform) SetFlippedY(flipped bool) { t.flippedY = flipped }

func (t *Transform) Size() [2]uint16 { return [2]uint16{t.width, t.height} }

func (t *Transform) Zoom() float64 { return t.zoom }

func (t *Transform) FlippedY() bool { return t.flippedY }

// worldSize is the size of one world copy in pixels.
func (t *Transform) worldSize() float64 {
	return TileSize * math.Exp2(t.zoom)
}

func (t *Transform) ProjectionMatrix() f32.Mat4 {
	if t.width == 0 || t.height == 0 {
		return Identity()
	}
	sy, ty := float32(-2)/float32(t.height), float32(1)
	if t.flippedY {
		sy, ty = -sy, -ty
	}
	return f32.Mat4{
		2 / float32(t.width), 0, 0, -1,
		0, sy, 0, ty,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func (t *Transform) TileMatrix(id tile.UnwrappedID) f32.Mat4 {
	world := t.worldSize()
	size := world / math.Exp2(float64(id.Canonical.Z))
	ox := float64(id.UnwrappedX())*size - t.x*world + float64(t.width)/2
	oy := float64(id.Canonical.Y)*size - t.y*world + float64(t.height)/2
	s := float32(size / Extent)
	return f32.Mat4{
		s, 0, 0, float32(ox),
		0, s, 0, float32(oy),
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// CoveringTiles returns the tiles at integer zoom z that intersect the
// viewport, including tiles of neighbouring world copies.
func (t *Transform) CoveringTiles(z uint8) []tile.UnwrappedID {
	if t.width == 0 || t.height == 0 {
		return nil
	}
	world := t.worldSize()
	n := math.Exp2(float64(z))
	size := world / n
	left := t.x*world - float64(t.width)/2
	top := t.y*world - float64(t.height)/2
	x0 := int64(math.Floor(left / size))
	x1 := int64(math.Ceil((left+float64(t.width))/size)) - 1
	y0 := max(int64(math.Floor(top/size)), 0)
	y1 := min(int64(math.Ceil((top+float64(t.height))/size))-1, int64(n)-1)

	var ids []tile.UnwrappedID
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ids = append(ids, tile.NewUnwrappedID(z, x, uint32(y)))
		}
	}
	return ids
}
