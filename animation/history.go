// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package animation tracks frame history for cross-fading raster tiles
// between zoom levels.
package animation

import (
	"math"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
)

// DefaultFadeDuration is the cross-fade length used in continuous mode.
const DefaultFadeDuration = 300 * time.Millisecond

// Levels is the number of entries of the zoom opacity table: one per tenth
// of a zoom level.
const Levels = 256

// Snapshot is a frame time and the zoom rendered at that time.
type Snapshot struct {
	Time time.Time
	Zoom float64
}

// FrameHistory records one snapshot per frame and keeps those that started
// a fade: the first frame and every frame whose zoom level, in tenths,
// differs from the previous frame. It also maintains the zoom opacity
// table sampled by raster shaders.
type FrameHistory struct {
	// Fading snapshots inside the fade window, oldest first.
	snapshots []Snapshot
	last      Snapshot
	recorded  bool

	prevIndex       int
	changeTimes     [Levels]time.Time
	changeOpacities [Levels]uint8
	opacities       [Levels]uint8
	changed         bool

	texture gfx.TextureID
}

// New returns an empty history.
func New() *FrameHistory {
	return &FrameHistory{}
}

func zoomIndex(zoom float64) int {
	i := int(math.Floor(zoom * 10))
	return min(max(i, 0), Levels-1)
}

// Record adds the snapshot for the frame rendered at now. Pass a zero fade
// for frames that must not animate, such as still images.
func (h *FrameHistory) Record(now time.Time, zoom float64, fade time.Duration) {
	index := zoomIndex(zoom)
	s := Snapshot{Time: now, Zoom: zoom}

	if !h.recorded {
		for z := range h.changeTimes {
			h.changeTimes[z] = now
		}
		for z := 0; z <= index; z++ {
			h.opacities[z] = 255
			h.changeOpacities[z] = 255
		}
		h.prevIndex = index
		h.snapshots = append(h.snapshots, s)
		h.recorded = true
	} else if index != h.prevIndex {
		h.snapshots = append(h.snapshots, s)
	}

	if index < h.prevIndex {
		for z := index + 1; z <= h.prevIndex; z++ {
			h.changeTimes[z] = now
			h.changeOpacities[z] = h.opacities[z]
		}
	} else {
		for z := index; z > h.prevIndex; z-- {
			h.changeTimes[z] = now
			h.changeOpacities[z] = h.opacities[z]
		}
	}

	for z := range h.opacities {
		step := 1.0
		if fade > 0 {
			step = float64(now.Sub(h.changeTimes[z])) / float64(fade)
		}
		change := int(step * 255)
		if z <= index {
			h.opacities[z] = uint8(min(255, int(h.changeOpacities[z])+change)) //nolint:gosec // clamped
		} else {
			h.opacities[z] = uint8(max(0, int(h.changeOpacities[z])-change)) //nolint:gosec // clamped
		}
	}
	h.changed = true

	h.prevIndex = index
	h.last = s
	h.prune(now, fade)
}

// prune drops fading snapshots that left the window ending at now.
func (h *FrameHistory) prune(now time.Time, fade time.Duration) {
	keep := 0
	for keep < len(h.snapshots) && now.Sub(h.snapshots[keep].Time) >= fade {
		keep++
	}
	h.snapshots = h.snapshots[keep:]
}

// NeedsAnimation reports whether a fade started within fade of now, so
// that another frame is required to finish it.
func (h *FrameHistory) NeedsAnimation(now time.Time, fade time.Duration) bool {
	for _, s := range h.snapshots {
		if now.Sub(s.Time) < fade {
			return true
		}
	}
	return false
}

// Last returns the most recent snapshot.
func (h *FrameHistory) Last() (Snapshot, bool) {
	return h.last, h.recorded
}

// Snapshots returns the fading snapshots still inside the window.
func (h *FrameHistory) Snapshots() []Snapshot {
	return append([]Snapshot(nil), h.snapshots...)
}

// Opacity returns the table entry for zoom, 0 to 255.
func (h *FrameHistory) Opacity(zoom float64) uint8 {
	return h.opacities[zoomIndex(zoom)]
}

// Changed reports whether the table changed since the last Upload.
func (h *FrameHistory) Changed() bool {
	return h.changed
}

// Upload writes the opacity table into a Levels x 1 single channel texture
// when it changed. The texture is created on first use.
func (h *FrameHistory) Upload(ctx *gfx.Context) error {
	if !h.changed {
		return nil
	}
	if h.texture == 0 {
		tex, err := ctx.CreateTexture(&gfx.TextureDescriptor{
			Label:  "frame history",
			Width:  Levels,
			Height: 1,
			Format: gputypes.TextureFormatR8Unorm,
		})
		if err != nil {
			return err
		}
		h.texture = tex
	}
	if err := ctx.UploadTexture(h.texture, h.opacities[:]); err != nil {
		return err
	}
	h.changed = false
	return nil
}

// Texture returns the opacity texture, or 0 before the first Upload.
func (h *FrameHistory) Texture() gfx.TextureID {
	return h.texture
}

// Release queues the texture for deletion.
func (h *FrameHistory) Release(ctx *gfx.Context) {
	ctx.AbandonTexture(h.texture)
	h.texture = 0
	h.changed = true
}
