// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/gfx/gfxtest"
)

// fakeCompile returns a valid SPIR-V header without running naga.
func fakeCompile(string) ([]uint32, error) {
	return []uint32{0x07230203, 0x00010000, 0, 1, 0}, nil
}

func newSet(t *testing.T, variant Variant) (*Set, *gfx.Context, *gfxtest.Recorder) {
	t.Helper()
	rec := gfxtest.New()
	ctx, err := gfx.NewContext(rec)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(ctx, variant, WithCompiler(fakeCompile))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, ctx, rec
}

func TestNewBuildsCatalogOnce(t *testing.T) {
	s, _, rec := newSet(t, Normal)
	if n := rec.Count("CreateProgram"); n != len(catalog) {
		t.Fatalf("CreateProgram calls = %d, want %d", n, len(catalog))
	}
	for _, name := range Names() {
		p, err := s.Program(name)
		if err != nil {
			t.Fatalf("Program(%q): %v", name, err)
		}
		if p.ID() == 0 {
			t.Errorf("%s: zero program id", name)
		}
	}
	fields := []*Program{
		s.Background, s.Fill, s.FillOutline, s.FillPattern, s.Line, s.Circle,
		s.Raster, s.SymbolIcon, s.CollisionBox, s.ClippingMask, s.Debug,
	}
	for i, p := range fields {
		if p == nil {
			t.Errorf("field %d is nil", i)
		}
	}
	if _, err := s.Program("hillshade"); !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("unknown program err = %v", err)
	}
}

func TestVariantPrelude(t *testing.T) {
	normal, _, _ := newSet(t, Normal)
	overdraw, _, _ := newSet(t, Overdraw)
	if !strings.HasPrefix(normal.Fill.Source(), "const OVERDRAW: bool = false;") {
		t.Errorf("normal prelude: %q", normal.Fill.Source()[:40])
	}
	if !strings.HasPrefix(overdraw.Fill.Source(), "const OVERDRAW: bool = true;") {
		t.Errorf("overdraw prelude: %q", overdraw.Fill.Source()[:40])
	}
	if overdraw.Variant() != Overdraw {
		t.Errorf("Variant() = %v", overdraw.Variant())
	}
}

func TestCompileError(t *testing.T) {
	rec := gfxtest.New()
	ctx, _ := gfx.NewContext(rec)
	boom := errors.New("parse error")
	_, err := New(ctx, Normal, WithCompiler(func(string) ([]uint32, error) { return nil, boom }))
	if !errors.Is(err, ErrCompile) || !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), Background) {
		t.Errorf("error does not name the program: %v", err)
	}
}

func TestLinkError(t *testing.T) {
	rec := gfxtest.New()
	ctx, _ := gfx.NewContext(rec)
	rec.Fail("CreateProgram", nil)
	_, err := New(ctx, Normal, WithCompiler(fakeCompile))
	if !errors.Is(err, ErrLink) || !errors.Is(err, gfxtest.ErrInjected) {
		t.Fatalf("err = %v", err)
	}
}

// dropUniform hides one uniform from UniformLocation.
type dropUniform struct {
	*gfxtest.Recorder
	name string
}

func (d dropUniform) UniformLocation(id gfx.ProgramID, name string) int32 {
	if name == d.name {
		return -1
	}
	return d.Recorder.UniformLocation(id, name)
}

func TestUniformNotFound(t *testing.T) {
	rec := gfxtest.New()
	ctx, _ := gfx.NewContext(dropUniform{Recorder: rec, name: "u_world"})
	_, err := New(ctx, Normal, WithCompiler(fakeCompile))
	if !errors.Is(err, ErrUniformNotFound) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "fill_outline.u_world") {
		t.Errorf("error = %v", err)
	}

	// Every program created before the failure is released.
	ctx.PerformCleanup()
	if len(rec.Programs) != 0 {
		t.Errorf("%d programs leaked", len(rec.Programs))
	}
}

func TestBlockLayout(t *testing.T) {
	infos, size := blockLayout([]Uniform{
		{"a", Float},
		{"b", Vec2},
		{"c", Float},
		{"d", Vec4},
		{"e", Mat4},
		{"f", Float},
	})
	want := []uint32{0, 8, 16, 32, 48, 112}
	for i, info := range infos {
		if info.Offset != want[i] {
			t.Errorf("%s offset = %d, want %d", info.Name, info.Offset, want[i])
		}
	}
	if size != 128 {
		t.Errorf("size = %d, want 128", size)
	}
}

func TestVertexLayout(t *testing.T) {
	s, _, _ := newSet(t, Normal)
	l := s.CollisionBox.VertexLayout()
	if l.ArrayStride != 24 || len(l.Attributes) != 3 {
		t.Fatalf("layout = %+v", l)
	}
	if l.Attributes[2].Offset != 16 || l.Attributes[2].ShaderLocation != 2 {
		t.Errorf("a_data = %+v", l.Attributes[2])
	}
}

func readFloat(block []byte, off uint32) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(block[off:]))
}

func TestUniformHandles(t *testing.T) {
	s, ctx, rec := newSet(t, Normal)
	p := s.Line

	matrix, err := p.Mat4("u_matrix")
	if err != nil {
		t.Fatal(err)
	}
	color, err := p.Color("u_color")
	if err != nil {
		t.Fatal(err)
	}
	width, err := p.Float("u_width")
	if err != nil {
		t.Fatal(err)
	}
	units, err := p.Vec2("u_units_to_pixels")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Float("u_color"); !errors.Is(err, ErrUniformType) {
		t.Errorf("wrong type err = %v", err)
	}
	if _, err := p.Float("u_nope"); !errors.Is(err, ErrUniformNotFound) {
		t.Errorf("missing err = %v", err)
	}

	// Row-major translation ends up in the fourth column.
	m := f32.Mat4{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	}
	matrix.Set(m)
	color.Set(gfx.Color{R: 0.25, A: 1})
	width.Set(3)
	units.Set([2]float32{2, 4})

	p.Bind(ctx)
	if rec.Count("SetUniforms") != 1 {
		t.Fatalf("SetUniforms calls = %d", rec.Count("SetUniforms"))
	}
	if err := ctx.Err(); err != nil {
		t.Fatal(err)
	}
	block := p.block
	if got := readFloat(block, 48); got != 5 {
		t.Errorf("m[3][0] = %v, want 5", got)
	}
	if got := readFloat(block, 52); got != 6 {
		t.Errorf("m[3][1] = %v, want 6", got)
	}
	if got := readFloat(block, 64); got != 0.25 {
		t.Errorf("color.r = %v", got)
	}

	// Unchanged values do not re-upload.
	rec.Reset()
	width.Set(3)
	p.Bind(ctx)
	if len(rec.Calls) != 0 {
		t.Fatalf("calls = %v, want none", rec.Names())
	}
	width.Set(4)
	p.Bind(ctx)
	if rec.Count("SetUniforms") != 1 {
		t.Fatal("changed uniform not uploaded")
	}
}

func TestRelease(t *testing.T) {
	s, ctx, rec := newSet(t, Normal)
	s.Release(ctx)
	ctx.PerformCleanup()
	if len(rec.Programs) != 0 {
		t.Fatalf("%d programs left", len(rec.Programs))
	}
}

// TestCatalogCompiles runs every program through naga.
func TestCatalogCompiles(t *testing.T) {
	for _, variant := range []Variant{Normal, Overdraw} {
		for i := range catalog {
			d := &catalog[i]
			t.Run(variant.String()+"/"+d.name, func(t *testing.T) {
				pre, err := prelude(d, variant)
				if err != nil {
					t.Fatal(err)
				}
				text, err := body(d.name)
				if err != nil {
					t.Fatal(err)
				}
				words, err := CompileWGSL(pre + text)
				if err != nil {
					// Skip features naga does not implement yet.
					msg := err.Error()
					if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
						t.Skipf("naga limitation: %v", err)
					}
					t.Fatalf("compile: %v", err)
				}
				if len(words) == 0 || words[0] != 0x07230203 {
					t.Fatal("output is not SPIR-V")
				}
			})
		}
	}
}
