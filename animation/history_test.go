// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package animation

import (
	"testing"
	"time"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/gfx/gfxtest"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNeedsAnimationWindow(t *testing.T) {
	const fade = DefaultFadeDuration
	h := New()
	h.Record(t0, 4, fade)

	tests := []struct {
		name string
		at   time.Duration
		want bool
	}{
		{"same frame", 0, true},
		{"half way", fade / 2, true},
		{"just inside", fade - time.Millisecond, true},
		{"at the end", fade, false},
		{"after", fade + time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.NeedsAnimation(t0.Add(tt.at), fade); got != tt.want {
				t.Errorf("NeedsAnimation(+%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestStaticFramesNeverAnimate(t *testing.T) {
	h := New()
	h.Record(t0, 4, 0)
	h.Record(t0.Add(time.Millisecond), 5, 0)
	if h.NeedsAnimation(t0.Add(time.Millisecond), 0) {
		t.Fatal("zero fade animates")
	}
	if n := len(h.Snapshots()); n != 0 {
		t.Fatalf("%d snapshots kept with zero fade", n)
	}
}

func TestSteadyZoomStopsAnimating(t *testing.T) {
	const fade = 100 * time.Millisecond
	h := New()
	now := t0
	for range 20 {
		h.Record(now, 3.05, fade)
		now = now.Add(16 * time.Millisecond)
	}
	if h.NeedsAnimation(now, fade) {
		t.Fatal("animation still needed after the zoom settled")
	}

	// A zoom change starts a new fade.
	h.Record(now, 3.2, fade)
	if !h.NeedsAnimation(now.Add(fade/2), fade) {
		t.Fatal("zoom change did not start a fade")
	}
	if got := len(h.Snapshots()); got != 1 {
		t.Fatalf("snapshots = %d, want 1", got)
	}
	if last, ok := h.Last(); !ok || last.Zoom != 3.2 {
		t.Fatalf("Last() = %+v, %v", last, ok)
	}
}

func TestOpacityTable(t *testing.T) {
	const fade = 100 * time.Millisecond
	h := New()
	h.Record(t0, 2, fade)
	if got := h.Opacity(1.5); got != 255 {
		t.Errorf("below current zoom: %d, want 255", got)
	}
	if got := h.Opacity(3); got != 0 {
		t.Errorf("above current zoom: %d, want 0", got)
	}

	// Zooming in fades the new levels in over the fade duration.
	h.Record(t0.Add(time.Millisecond), 3, fade)
	if got := h.Opacity(3); got != 0 {
		t.Errorf("just after zoom in: %d, want 0", got)
	}
	h.Record(t0.Add(51*time.Millisecond), 3, fade)
	if got := h.Opacity(3); got < 120 || got > 135 {
		t.Errorf("half way: %d, want about 127", got)
	}
	h.Record(t0.Add(200*time.Millisecond), 3, fade)
	if got := h.Opacity(3); got != 255 {
		t.Errorf("after fade: %d, want 255", got)
	}

	// Zooming out fades the deeper levels out.
	h.Record(t0.Add(300*time.Millisecond), 2, fade)
	if got := h.Opacity(3); got != 255 {
		t.Errorf("just after zoom out: %d, want 255", got)
	}
	h.Record(t0.Add(500*time.Millisecond), 2, fade)
	if got := h.Opacity(3); got != 0 {
		t.Errorf("after fade out: %d, want 0", got)
	}
}

func TestZoomIndexClamp(t *testing.T) {
	tests := []struct {
		zoom float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{2.55, 25},
		{25.5, 255},
		{40, 255},
	}
	for _, tt := range tests {
		if got := zoomIndex(tt.zoom); got != tt.want {
			t.Errorf("zoomIndex(%v) = %d, want %d", tt.zoom, got, tt.want)
		}
	}
}

func TestUpload(t *testing.T) {
	rec := gfxtest.New()
	ctx, err := gfx.NewContext(rec)
	if err != nil {
		t.Fatal(err)
	}
	h := New()
	h.Record(t0, 1, DefaultFadeDuration)

	if err := h.Upload(ctx); err != nil {
		t.Fatal(err)
	}
	tex, ok := rec.Textures[h.Texture()]
	if !ok {
		t.Fatal("texture not created")
	}
	if tex.Desc.Width != Levels || tex.Desc.Height != 1 || len(tex.Data) != Levels {
		t.Fatalf("texture = %+v, %d bytes", tex.Desc, len(tex.Data))
	}
	if tex.Data[5] != 255 || tex.Data[20] != 0 {
		t.Errorf("table = %v...", tex.Data[:24])
	}

	// Nothing changed: no upload.
	rec.Reset()
	if err := h.Upload(ctx); err != nil {
		t.Fatal(err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v", rec.Names())
	}

	h.Record(t0.Add(time.Millisecond), 1, DefaultFadeDuration)
	if err := h.Upload(ctx); err != nil {
		t.Fatal(err)
	}
	if rec.Count("CreateTexture") != 0 || rec.Count("UploadTexture") != 1 {
		t.Fatalf("calls = %v", rec.Names())
	}

	h.Release(ctx)
	ctx.PerformCleanup()
	if len(rec.Textures) != 0 {
		t.Fatal("texture not released")
	}
}
