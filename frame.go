package mapgpu

import (
	"strings"
	"time"
)

// ContextMode says whether the Painter owns the graphics context.
type ContextMode uint8

const (
	// Exclusive means nobody else touches GPU state between frames.
	Exclusive ContextMode = iota
	// Shared means the host renders with the same context between frames,
	// so cached state is resynchronised after every frame.
	Shared
)

func (m ContextMode) String() string {
	if m == Shared {
		return "shared"
	}
	return "exclusive"
}

// MapMode selects between interactive and one-shot rendering.
type MapMode uint8

const (
	// Continuous renders interactively; raster tiles cross-fade.
	Continuous MapMode = iota
	// Static renders a single still image; fading is disabled.
	Static
)

func (m MapMode) String() string {
	if m == Static {
		return "static"
	}
	return "continuous"
}

// DebugFlags enable debug overlays and visualisations.
type DebugFlags uint8

const (
	// TileBorders outlines every rendered tile.
	TileBorders DebugFlags = 1 << iota
	// ParseStatus labels every tile with its ID and load state.
	ParseStatus
	// Timestamps adds modification and expiry times to tile labels.
	Timestamps
	// Collision draws symbol collision boxes.
	Collision
	// Overdraw renders with the overdraw shader set, additively.
	Overdraw
)

var debugNames = [...]string{"tile-borders", "parse-status", "timestamps", "collision", "overdraw"}

// ParseDebugFlag returns the flag with the given name.
func ParseDebugFlag(name string) (DebugFlags, bool) {
	for i, n := range debugNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}

func (f DebugFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for i, n := range debugNames {
		if f&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

// FrameData describes one frame.
type FrameData struct {
	Size        [2]uint16
	Time        time.Time
	ContextMode ContextMode
	MapMode     MapMode
	Debug       DebugFlags
}

// RenderPass is a bitmask of the passes a layer has work in.
type RenderPass uint8

const (
	// PassNone is no pass.
	PassNone RenderPass = 0
	// Opaque draws front to back with blending off.
	Opaque RenderPass = 1 << 0
	// Translucent draws back to front with premultiplied blending.
	Translucent RenderPass = 1 << 1
)

func (p RenderPass) String() string {
	switch p {
	case PassNone:
		return "none"
	case Opaque:
		return "opaque"
	case Translucent:
		return "translucent"
	case Opaque | Translucent:
		return "opaque|translucent"
	}
	return "invalid"
}
