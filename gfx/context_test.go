// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx_test

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/gfx/gfxtest"
)

func newContext(t *testing.T) (*gfx.Context, *gfxtest.Recorder) {
	t.Helper()
	rec := gfxtest.New()
	ctx, err := gfx.NewContext(rec)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx, rec
}

func TestNewContextNilBackend(t *testing.T) {
	if _, err := gfx.NewContext(nil); !errors.Is(err, gfx.ErrNilBackend) {
		t.Fatalf("err = %v, want ErrNilBackend", err)
	}
}

func TestStateSetOnlyOnChange(t *testing.T) {
	ctx, rec := newContext(t)

	// Fresh state is dirty: the first Set is forwarded even for the default.
	ctx.DepthMask.Set(true)
	if n := rec.Count("SetDepthMask"); n != 1 {
		t.Fatalf("first Set: %d calls, want 1", n)
	}

	tests := []struct {
		name  string
		value bool
		calls int
	}{
		{"same value", true, 0},
		{"new value", false, 1},
		{"same again", false, 0},
		{"back", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.Reset()
			ctx.DepthMask.Set(tt.value)
			if n := rec.Count("SetDepthMask"); n != tt.calls {
				t.Errorf("%d calls, want %d", n, tt.calls)
			}
			if got := ctx.DepthMask.Get(); got != tt.value {
				t.Errorf("Get() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestStructStateCompare(t *testing.T) {
	ctx, rec := newContext(t)
	f := gfx.StencilFunc{Compare: gputypes.CompareFunctionEqual, Ref: 3, Mask: 0x0F}

	ctx.StencilFunc.Set(f)
	ctx.StencilFunc.Set(f)
	if n := rec.Count("SetStencilFunc"); n != 1 {
		t.Fatalf("%d calls, want 1", n)
	}
	f.Ref = 4
	ctx.StencilFunc.Set(f)
	if n := rec.Count("SetStencilFunc"); n != 2 {
		t.Fatalf("%d calls, want 2", n)
	}
	if rec.State.StencilFunc != f {
		t.Errorf("backend stencil func = %+v, want %+v", rec.State.StencilFunc, f)
	}
}

func TestSetDirtyStateForcesResend(t *testing.T) {
	ctx, rec := newContext(t)
	ctx.Blend.Set(false)
	ctx.Viewport.Set(gfx.Viewport{Width: 10, Height: 10})
	rec.Reset()

	ctx.SetDirtyState()
	ctx.Blend.Set(false)
	ctx.Viewport.Set(gfx.Viewport{Width: 10, Height: 10})
	if got := rec.Names(); len(got) != 2 || got[0] != "SetBlend" || got[1] != "SetViewport" {
		t.Fatalf("calls = %v, want [SetBlend SetViewport]", got)
	}

	rec.Reset()
	ctx.Blend.Set(false)
	if len(rec.Calls) != 0 {
		t.Fatalf("calls after resync = %v, want none", rec.Calls)
	}
}

func TestResetAndSetDefault(t *testing.T) {
	ctx, rec := newContext(t)
	window := gfx.Viewport{Width: 800, Height: 600}
	ctx.Viewport.SetDefault(window)
	ctx.Viewport.Set(gfx.Viewport{Width: 256, Height: 256})
	ctx.Viewport.Reset()
	if rec.State.Viewport != window {
		t.Fatalf("viewport = %+v, want %+v", rec.State.Viewport, window)
	}
	if ctx.Viewport.Default() != window {
		t.Fatalf("Default() = %+v", ctx.Viewport.Default())
	}
}

func TestStickyError(t *testing.T) {
	ctx, rec := newContext(t)
	first := errors.New("first")
	rec.Fail("SetBlend", first)
	rec.Fail("SetDepthTest", errors.New("second"))

	ctx.Blend.Set(false)
	ctx.DepthTest.Set(true)
	if !errors.Is(ctx.Err(), first) {
		t.Fatalf("Err() = %v, want first error", ctx.Err())
	}
	// Calls are still forwarded after the error.
	if rec.Count("SetDepthTest") != 1 {
		t.Fatal("SetDepthTest was not forwarded")
	}
	if !errors.Is(ctx.TakeErr(), first) {
		t.Fatal("TakeErr did not return the first error")
	}
	if ctx.Err() != nil {
		t.Fatalf("Err() after TakeErr = %v", ctx.Err())
	}
}

func TestFailedSetIsRetried(t *testing.T) {
	ctx, rec := newContext(t)
	ctx.Blend.Set(false)
	ctx.Framebuffer.Set(0)

	rec.Fail("SetBlend", nil)
	rec.Fail("BindFramebuffer", nil)
	ctx.Blend.Set(true)
	ctx.Framebuffer.Set(4)
	if !errors.Is(ctx.TakeErr(), gfxtest.ErrInjected) {
		t.Fatal("rejected Set did not record an error")
	}
	if rec.State.Blend || rec.State.Framebuffer != 0 {
		t.Fatalf("backend changed by a rejected call: %+v", rec.State)
	}
	if ctx.Blend.Get() || ctx.Framebuffer.Get() != 0 {
		t.Fatal("cache holds a value the backend rejected")
	}
	if !ctx.Blend.Dirty() || !ctx.Framebuffer.Dirty() {
		t.Fatal("state not dirty after a rejected call")
	}

	rec.Succeed("SetBlend")
	rec.Succeed("BindFramebuffer")
	rec.Reset()
	ctx.Blend.Set(true)
	ctx.Framebuffer.Set(4)
	if rec.Count("SetBlend") != 1 || rec.Count("BindFramebuffer") != 1 {
		t.Fatalf("retry not forwarded: %v", rec.Names())
	}
	if !rec.State.Blend || rec.State.Framebuffer != 4 {
		t.Fatalf("backend state after retry = %+v", rec.State)
	}
	if ctx.Blend.Dirty() || ctx.Err() != nil {
		t.Fatal("successful retry left the state dirty or an error behind")
	}
}

func TestLease(t *testing.T) {
	ctx, rec := newContext(t)
	ctx.DepthTest.Set(true)
	ctx.Program.Set(7)

	err := ctx.Lease(func(raw gfx.Backend) error {
		if !ctx.Leased() {
			t.Error("Leased() = false inside lease")
		}
		// Raw calls change the backend behind the cache.
		_ = raw.SetDepthTest(false)
		ctx.Blend.Set(false)
		return nil
	})
	if err != nil {
		t.Fatalf("Lease: %v", err)
	}
	if !errors.Is(ctx.Err(), gfx.ErrContextLeased) {
		t.Fatalf("Err() = %v, want ErrContextLeased", ctx.Err())
	}
	if !ctx.DepthTest.Dirty() || !ctx.Program.Dirty() {
		t.Fatal("state not dirty after lease")
	}

	rec.Reset()
	ctx.DepthTest.Set(true)
	if !rec.State.DepthTest {
		t.Fatal("depth test not restored after lease")
	}
}

func TestSetUniformsWhileLeased(t *testing.T) {
	ctx, rec := newContext(t)
	rec.Reset()
	_ = ctx.Lease(func(gfx.Backend) error {
		ctx.SetUniforms(1, make([]byte, 16))
		return nil
	})
	if rec.Count("SetUniforms") != 0 {
		t.Fatal("uniforms reached the backend during a lease")
	}
	if !errors.Is(ctx.Err(), gfx.ErrContextLeased) {
		t.Fatalf("Err() = %v, want ErrContextLeased", ctx.Err())
	}
}

func TestLeaseDirtiesOnPanic(t *testing.T) {
	ctx, _ := newContext(t)
	ctx.Blend.Set(true)

	func() {
		defer func() { _ = recover() }()
		_ = ctx.Lease(func(gfx.Backend) error { panic("boom") })
	}()
	if ctx.Leased() {
		t.Fatal("lease still active after panic")
	}
	if !ctx.Blend.Dirty() {
		t.Fatal("state not dirty after panicking lease")
	}
}

func TestLeaseReturnsCallbackError(t *testing.T) {
	ctx, _ := newContext(t)
	want := errors.New("custom")
	if err := ctx.Lease(func(gfx.Backend) error { return want }); !errors.Is(err, want) {
		t.Fatalf("Lease = %v, want %v", err, want)
	}
}

func TestDrawSkipsEmpty(t *testing.T) {
	ctx, rec := newContext(t)
	ctx.Draw(gputypes.PrimitiveTopologyTriangleList, 0, 0)
	if rec.Count("Draw") != 0 {
		t.Fatal("empty draw reached the backend")
	}
}

func TestPerformCleanup(t *testing.T) {
	ctx, rec := newContext(t)
	tex, err := ctx.CreateTexture(&gfx.TextureDescriptor{Label: "t", Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	ctx.Texture[1].Set(tex)
	ctx.AbandonTexture(tex)
	if _, ok := rec.Textures[tex]; !ok {
		t.Fatal("texture deleted before cleanup")
	}

	ctx.PerformCleanup()
	if _, ok := rec.Textures[tex]; ok {
		t.Fatal("texture not deleted")
	}
	if ctx.Texture[1].Get() != 0 {
		t.Fatalf("binding = %d, want 0", ctx.Texture[1].Get())
	}

	rec.Reset()
	ctx.PerformCleanup()
	if len(rec.Calls) != 0 {
		t.Fatalf("second cleanup made calls: %v", rec.Calls)
	}
}

func TestCreateTextureZeroSize(t *testing.T) {
	ctx, _ := newContext(t)
	_, err := ctx.CreateTexture(&gfx.TextureDescriptor{Label: "empty"})
	if !errors.Is(err, gfx.ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

func TestColorMaskWriteMask(t *testing.T) {
	tests := []struct {
		mask gfx.ColorMask
		want gputypes.ColorWriteMask
	}{
		{gfx.ColorMaskAll, gputypes.ColorWriteMaskAll},
		{gfx.ColorMaskNone, gputypes.ColorWriteMaskNone},
	}
	for _, tt := range tests {
		if got := tt.mask.WriteMask(); got != tt.want {
			t.Errorf("%+v.WriteMask() = %v, want %v", tt.mask, got, tt.want)
		}
	}
	partial := gfx.ColorMask{R: true, A: true}.WriteMask()
	if partial == gputypes.ColorWriteMaskAll || partial == gputypes.ColorWriteMaskNone {
		t.Errorf("partial mask = %v", partial)
	}
}
