package mapgpu

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/gfx/gfxtest"
	"github.com/gogpu/mapgpu/shader"
	"github.com/gogpu/mapgpu/tile"
)

func stubCompile(string) ([]uint32, error) {
	return []uint32{0x07230203}, nil
}

func newTestPainter(t *testing.T, opts ...Option) (*Painter, *gfxtest.Recorder) {
	t.Helper()
	rec := gfxtest.New()
	opts = append([]Option{WithShaderCompiler(stubCompile)}, opts...)
	p, err := NewPainter(rec, opts...)
	if err != nil {
		t.Fatalf("NewPainter: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	rec.Reset()
	return p, rec
}

func testView() *Transform {
	return NewTransform(512, 512, 1, 0.5, 0.5)
}

func testFrame() FrameData {
	return FrameData{Size: [2]uint16{512, 512}, Time: time.Unix(1000, 0)}
}

// event is one bucket render as seen by the bucket.
type event struct {
	name        string
	pass        RenderPass
	pos         int
	depth       gfx.DepthRange
	blend       bool
	stencilTest bool
	stencil     gfx.StencilFunc
}

type probeBucket struct {
	name     string
	clipping bool
	events   *[]event
	uploads  int
	err      error
}

func (b *probeBucket) NeedsUpload() bool { return b.uploads == 0 }

func (b *probeBucket) Upload(*gfx.Context) error {
	b.uploads++
	return nil
}

func (b *probeBucket) NeedsClipping() bool { return b.clipping }

func (b *probeBucket) Render(p *Painter, _ *PaintParameters, _ Layer, _ *RenderTile) error {
	if b.err != nil {
		return b.err
	}
	ctx := p.Context()
	p.SetDepthSublayer(0)
	*b.events = append(*b.events, event{
		name:        b.name,
		pass:        p.Pass(),
		pos:         p.CurrentLayer(),
		depth:       ctx.DepthRange.Get(),
		blend:       ctx.Blend.Get(),
		stencilTest: ctx.StencilTest.Get(),
		stencil:     ctx.StencilFunc.Get(),
	})
	return nil
}

func TestNewPainterBuildsPrograms(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		want  int
	}{
		{"normal", false, len(shader.Names())},
		{"with overdraw", true, 2 * len(shader.Names())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gfxtest.New()
			p, err := NewPainter(rec, WithShaderCompiler(stubCompile), WithDebugShaders(tt.debug))
			if err != nil {
				t.Fatalf("NewPainter: %v", err)
			}
			if got := len(rec.Programs); got != tt.want {
				t.Errorf("programs = %d, want %d", got, tt.want)
			}
			if err := p.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if len(rec.Programs) != 0 || len(rec.VertexArrays) != 0 || len(rec.Textures) != 0 {
				t.Errorf("Close left %d programs, %d vertex arrays, %d textures",
					len(rec.Programs), len(rec.VertexArrays), len(rec.Textures))
			}
		})
	}
}

func TestNewPainterErrors(t *testing.T) {
	if _, err := NewPainter(nil); !errors.Is(err, gfx.ErrNilBackend) {
		t.Errorf("nil backend: err = %v", err)
	}

	rec := gfxtest.New()
	failing := func(string) ([]uint32, error) { return nil, errors.New("bad wgsl") }
	if _, err := NewPainter(rec, WithShaderCompiler(failing)); !errors.Is(err, shader.ErrCompile) {
		t.Errorf("compile failure: err = %v, want ErrCompile", err)
	}
	if len(rec.Programs) != 0 {
		t.Errorf("failed construction left %d programs", len(rec.Programs))
	}

	rec = gfxtest.New()
	rec.Fail("CreateVertexArray", nil)
	if _, err := NewPainter(rec, WithShaderCompiler(stubCompile)); !errors.Is(err, gfxtest.ErrInjected) {
		t.Errorf("buffer failure: err = %v", err)
	}
	if len(rec.Programs) != 0 {
		t.Errorf("failed construction left %d programs", len(rec.Programs))
	}
}

func TestRenderInvalidInput(t *testing.T) {
	p, _ := newTestPainter(t)
	if err := p.Render(nil, testFrame()); !errors.Is(err, ErrNoRenderData) {
		t.Errorf("nil data: %v", err)
	}
	if err := p.Render(&RenderData{}, testFrame()); !errors.Is(err, ErrNoView) {
		t.Errorf("no view: %v", err)
	}
	_ = p.Close()
	if err := p.Render(&RenderData{View: testView()}, testFrame()); !errors.Is(err, ErrClosed) {
		t.Errorf("closed: %v", err)
	}
}

func TestSequenceTraversal(t *testing.T) {
	order := make([]RenderItem, 4)
	for i := range order {
		order[i] = RenderItem{Layer: &TileLayer{LayerID: string(rune('a' + i))}}
	}
	collect := func(s sequence) (ids []string, pos []int) {
		for i, item := range s.All() {
			ids = append(ids, item.Layer.ID())
			pos = append(pos, i)
		}
		return ids, pos
	}

	ids, pos := collect(newSequence(order, true))
	if !slices.Equal(ids, []string{"d", "c", "b", "a"}) || !slices.Equal(pos, []int{0, 1, 2, 3}) {
		t.Errorf("reverse: ids %v pos %v", ids, pos)
	}
	ids, pos = collect(newSequence(order, false))
	if !slices.Equal(ids, []string{"a", "b", "c", "d"}) || !slices.Equal(pos, []int{3, 2, 1, 0}) {
		t.Errorf("forward: ids %v pos %v", ids, pos)
	}

	for range newSequence(order, false).All() {
		break
	}
}

// scenario builds [background, tile layer (two tiles), custom].
func scenario(events *[]event, custom CustomRenderer) (*RenderData, []*RenderTile) {
	tiles := []*RenderTile{
		{ID: tile.NewUnwrappedID(1, 0, 0)},
		{ID: tile.NewUnwrappedID(1, 1, 0)},
	}
	layer := &TileLayer{LayerID: "a", Passes: Opaque | Translucent}
	data := &RenderData{
		Order: []RenderItem{
			{Layer: &BackgroundLayer{LayerID: "bg", Color: gfx.White, Opacity: 1}},
			{Layer: layer, Tile: tiles[0], Bucket: &probeBucket{name: "tile1", clipping: true, events: events}},
			{Layer: layer, Tile: tiles[1], Bucket: &probeBucket{name: "tile2", clipping: true, events: events}},
			{Layer: &CustomLayer{LayerID: "custom", Renderer: custom}},
		},
		Sources:         []Source{&TileSet{Name: "src", Tiles: tiles}},
		BackgroundColor: gfx.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		View:            testView(),
	}
	return data, tiles
}

func TestRenderScenarioContinuous(t *testing.T) {
	p, rec := newTestPainter(t)

	var events []event
	customRan := false
	custom := CustomRendererFunc(func(view ViewState, raw gfx.Backend) error {
		customRan = true
		if raw != rec {
			t.Error("custom layer did not get the raw backend")
		}
		if !p.Context().Leased() {
			t.Error("context not leased during custom render")
		}
		if view.Zoom() != 1 {
			t.Errorf("custom view zoom = %v", view.Zoom())
		}
		rec.Calls = append(rec.Calls, gfxtest.Call{Name: "custom"})
		return nil
	})
	data, tiles := scenario(&events, custom)

	if err := p.Render(data, testFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !customRan {
		t.Fatal("custom layer did not run")
	}

	var got []string
	for _, e := range events {
		got = append(got, e.pass.String()+":"+e.name)
	}
	want := []string{"opaque:tile2", "opaque:tile1", "translucent:tile1", "translucent:tile2"}
	if !slices.Equal(got, want) {
		t.Errorf("bucket order = %v, want %v", got, want)
	}

	// Background: once per pass, blending off then on.
	bg := p.shaders.Background.ID()
	var bgDraws []gfxtest.Draw
	for _, d := range rec.Draws {
		if d.Program == bg {
			bgDraws = append(bgDraws, d)
		}
	}
	if len(bgDraws) != 2 {
		t.Fatalf("background draws = %d, want 2", len(bgDraws))
	}
	if bgDraws[0].Blend || !bgDraws[0].DepthMask {
		t.Errorf("opaque background: blend=%v depthMask=%v", bgDraws[0].Blend, bgDraws[0].DepthMask)
	}
	if !bgDraws[1].Blend || bgDraws[1].DepthMask {
		t.Errorf("translucent background: blend=%v depthMask=%v", bgDraws[1].Blend, bgDraws[1].DepthMask)
	}
	if bgDraws[0].Count != 6 || bgDraws[0].VertexArray != p.buffers.viewportQuad || bgDraws[0].StencilTest {
		t.Errorf("background draw = %+v", bgDraws[0])
	}
	if bgDraws[1].BlendFunc != (gfx.BlendFunc{Src: gputypes.BlendFactorOne, Dst: gputypes.BlendFactorOneMinusSrcAlpha}) {
		t.Errorf("translucent blend func = %+v", bgDraws[1].BlendFunc)
	}

	// Tiles are clipped to their own IDs.
	for _, e := range events {
		if !e.stencilTest || e.stencil.Compare != gputypes.CompareFunctionEqual {
			t.Errorf("%s: stencil test %v %+v", e.name, e.stencilTest, e.stencil)
		}
	}
	if tiles[0].Clip == tiles[1].Clip {
		t.Errorf("sibling tiles share clip %v", tiles[0].Clip)
	}

	// The custom layer is followed by a framebuffer and viewport reset,
	// and the context resends everything afterwards.
	names := rec.Names()
	i := slices.Index(names, "custom")
	if i < 0 {
		t.Fatal("custom marker missing")
	}
	after := names[i+1:]
	if !slices.Contains(after, "BindFramebuffer") || !slices.Contains(after, "SetViewport") {
		t.Errorf("calls after custom layer = %v", after)
	}
	if names[len(names)-1] != "Flush" {
		t.Errorf("last call = %s, want Flush", names[len(names)-1])
	}
}

func TestSameDepthRangeInBothPasses(t *testing.T) {
	p, _ := newTestPainter(t)
	var events []event
	data, _ := scenario(&events, nil)
	data.Order = data.Order[:3]

	if err := p.Render(data, testFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	byName := map[string][]event{}
	for _, e := range events {
		byName[e.name] = append(byName[e.name], e)
	}
	for name, es := range byName {
		if len(es) != 2 {
			t.Fatalf("%s rendered %d times", name, len(es))
		}
		if es[0].depth != es[1].depth || es[0].pos != es[1].pos {
			t.Errorf("%s: opaque %+v/%d, translucent %+v/%d", name, es[0].depth, es[0].pos, es[1].depth, es[1].pos)
		}
	}
	if byName["tile2"][0].depth.Near >= byName["tile1"][0].depth.Near {
		t.Error("upper item should be nearer")
	}
}

func TestClearPhase(t *testing.T) {
	p, rec := newTestPainter(t)
	data := &RenderData{BackgroundColor: gfx.Color{R: 1, A: 1}, View: testView()}
	if err := p.Render(data, testFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(rec.Clears) != 1 {
		t.Fatalf("clears = %d", len(rec.Clears))
	}
	c := rec.Clears[0]
	if c.Color == nil || *c.Color != data.BackgroundColor {
		t.Errorf("clear color = %v", c.Color)
	}
	if c.Depth == nil || *c.Depth != 1 || c.Stencil == nil || *c.Stencil != 0 {
		t.Errorf("clear depth/stencil = %v/%v", c.Depth, c.Stencil)
	}
	if c.StencilMask != 0xFF || !c.DepthMask || c.ColorMask != gfx.ColorMaskAll || c.DepthTest {
		t.Errorf("clear state = %+v", c.State)
	}
	if c.Viewport != (gfx.Viewport{Width: 512, Height: 512}) {
		t.Errorf("viewport = %+v", c.Viewport)
	}
}

func TestClipMasks(t *testing.T) {
	p, rec := newTestPainter(t)
	parent := &RenderTile{ID: tile.NewUnwrappedID(0, 0, 0)}
	child := &RenderTile{ID: tile.NewUnwrappedID(1, 0, 0)}
	// The same tile in the next world copy.
	wrapped := &RenderTile{ID: tile.NewUnwrappedID(1, 2, 0)}
	data := &RenderData{
		Sources: []Source{&TileSet{Name: "src", Tiles: []*RenderTile{parent, child, wrapped}}},
		View:    testView(),
	}
	if err := p.Render(data, testFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	ids := map[any]bool{parent.Clip: true, child.Clip: true, wrapped.Clip: true}
	if len(ids) != 3 {
		t.Errorf("clip ids not distinct: %v %v %v", parent.Clip, child.Clip, wrapped.Clip)
	}

	mask := p.shaders.ClippingMask.ID()
	var draws []gfxtest.Draw
	for _, d := range rec.Draws {
		if d.Program == mask {
			draws = append(draws, d)
		}
	}
	if len(draws) != 3 {
		t.Fatalf("clipping mask draws = %d, want 3", len(draws))
	}
	for _, d := range draws {
		if d.ColorMask != gfx.ColorMaskNone || d.DepthTest || !d.StencilTest {
			t.Errorf("mask draw state = %+v", d.State)
		}
		if d.StencilFunc.Compare != gputypes.CompareFunctionAlways || d.StencilOp.Pass != hal.StencilOperationReplace {
			t.Errorf("mask stencil = %+v %+v", d.StencilFunc, d.StencilOp)
		}
		if d.StencilMask == 0 || d.VertexArray != p.buffers.tileTriangles {
			t.Errorf("mask draw = %+v", d)
		}
	}
	// Parents are written first.
	if draws[0].StencilFunc.Ref != parent.Clip.Reference {
		t.Errorf("first mask ref = %d, want parent %d", draws[0].StencilFunc.Ref, parent.Clip.Reference)
	}
}

func TestStrictErrors(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
	}{
		{"strict", true},
		{"lenient", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
			p, rec := newTestPainter(t, WithStrictErrors(tt.strict), WithLogger(logger))
			rec.Fail("Draw", nil)

			var events []event
			data, _ := scenario(&events, nil)
			data.Order = data.Order[:3]
			err := p.Render(data, testFrame())
			if tt.strict {
				if !errors.Is(err, gfxtest.ErrInjected) {
					t.Fatalf("err = %v, want injected", err)
				}
				if len(events) != 0 {
					t.Errorf("strict frame kept rendering: %v", events)
				}
				if !p.Context().Blend.Dirty() {
					t.Error("aborted frame should leave the context dirty")
				}
				return
			}
			if err != nil {
				t.Fatalf("lenient Render: %v", err)
			}
			if len(events) != 4 {
				t.Errorf("lenient events = %d, want 4", len(events))
			}
			if !strings.Contains(buf.String(), "gpu error") {
				t.Errorf("missing warning, log: %s", buf.String())
			}
		})
	}
}

func TestBucketErrorAbortsFrame(t *testing.T) {
	p, _ := newTestPainter(t)
	var events []event
	data, _ := scenario(&events, nil)
	boom := errors.New("boom")
	data.Order[1].Bucket.(*probeBucket).err = boom
	if err := p.Render(data, testFrame()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	data.Order = []RenderItem{{Layer: &TileLayer{LayerID: "x", Passes: Opaque}}}
	if err := p.Render(data, testFrame()); !errors.Is(err, ErrMissingBucket) {
		t.Errorf("err = %v, want ErrMissingBucket", err)
	}
}

func TestCustomLayerError(t *testing.T) {
	p, rec := newTestPainter(t)
	boom := errors.New("custom failed")
	data := &RenderData{
		Order: []RenderItem{{Layer: &CustomLayer{LayerID: "c", Renderer: CustomRendererFunc(
			func(ViewState, gfx.Backend) error { return boom },
		)}}},
		View: testView(),
	}
	if err := p.Render(data, testFrame()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if p.Context().Leased() {
		t.Error("context still leased")
	}
	rec.Reset()
	data.Order = nil
	if err := p.Render(data, testFrame()); err != nil {
		t.Fatalf("next frame: %v", err)
	}
	if rec.Count("BindFramebuffer") == 0 {
		t.Error("state not resent after failed custom layer")
	}
}

func TestContextModes(t *testing.T) {
	tests := []struct {
		mode  ContextMode
		dirty bool
	}{
		{Exclusive, false},
		{Shared, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p, _ := newTestPainter(t)
			frame := testFrame()
			frame.ContextMode = tt.mode
			if err := p.Render(&RenderData{View: testView()}, frame); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := p.Context().StencilTest.Dirty(); got != tt.dirty {
				t.Errorf("dirty after frame = %v, want %v", got, tt.dirty)
			}
		})
	}
}

func TestOverdraw(t *testing.T) {
	p, rec := newTestPainter(t, WithDebugShaders(true))
	var events []event
	data, _ := scenario(&events, nil)
	data.Order = data.Order[:1]
	frame := testFrame()
	frame.Debug = Overdraw
	if err := p.Render(data, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	c := rec.Clears[0]
	if *c.Color != gfx.Black || !c.Blend {
		t.Errorf("overdraw clear: color %v blend %v", *c.Color, c.Blend)
	}
	if c.BlendFunc != (gfx.BlendFunc{Src: gputypes.BlendFactorConstant, Dst: gputypes.BlendFactorOne}) {
		t.Errorf("overdraw blend func = %+v", c.BlendFunc)
	}
	for _, d := range rec.Draws {
		if d.Program == p.shaders.Background.ID() {
			t.Error("overdraw frame used the normal shader set")
		}
		if !d.Blend {
			t.Error("overdraw draws must blend")
		}
	}

	// Without the debug set the flag falls back to normal rendering.
	q, rec2 := newTestPainter(t)
	if err := q.Render(data, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if *rec2.Clears[0].Color != data.BackgroundColor {
		t.Error("overdraw without debug shaders should clear normally")
	}
}

func TestViewportFollowsFrameSize(t *testing.T) {
	p, rec := newTestPainter(t)
	view := NewTransform(100, 50, 0, 0.5, 0.5)
	frame := FrameData{Size: [2]uint16{100, 50}}
	if err := p.Render(&RenderData{View: view}, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rec.State.Viewport != (gfx.Viewport{Width: 100, Height: 50}) {
		t.Errorf("viewport = %+v", rec.State.Viewport)
	}
	view.Resize(200, 80)
	frame.Size = [2]uint16{200, 80}
	if err := p.Render(&RenderData{View: view}, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rec.State.Viewport != (gfx.Viewport{Width: 200, Height: 80}) {
		t.Errorf("viewport = %+v", rec.State.Viewport)
	}
}

func TestPixelsToGLUnits(t *testing.T) {
	p, _ := newTestPainter(t)
	view := NewTransform(400, 200, 0, 0.5, 0.5)
	if err := p.Render(&RenderData{View: view}, testFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := p.params.PixelsToGLUnits; got != [2]float32{2.0 / 400, -2.0 / 200} {
		t.Errorf("PixelsToGLUnits = %v", got)
	}
	view.SetFlippedY(true)
	if err := p.Render(&RenderData{View: view}, testFrame()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := p.params.PixelsToGLUnits; got != [2]float32{2.0 / 400, 2.0 / 200} {
		t.Errorf("flipped PixelsToGLUnits = %v", got)
	}
}

type countingAtlas struct{ n int }

func (a *countingAtlas) Upload(*gfx.Context) error {
	a.n++
	return nil
}

func TestUploadPhase(t *testing.T) {
	atlas := &countingAtlas{}
	p, _ := newTestPainter(t, WithAtlases(atlas))
	var events []event
	data, _ := scenario(&events, nil)
	for range 2 {
		if err := p.Render(data, testFrame()); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if atlas.n != 2 {
		t.Errorf("atlas uploads = %d, want one per frame", atlas.n)
	}
	if b := data.Order[1].Bucket.(*probeBucket); b.uploads != 1 {
		t.Errorf("bucket uploads = %d, want 1", b.uploads)
	}
	if p.FrameHistory().Texture() == 0 {
		t.Error("frame history not uploaded")
	}
}

func TestNeedsAnimation(t *testing.T) {
	now := time.Unix(1000, 0)
	p, _ := newTestPainter(t, WithClock(func() time.Time { return now }), WithFadeDuration(300*time.Millisecond))

	frame := FrameData{Size: [2]uint16{512, 512}}
	if err := p.Render(&RenderData{View: testView()}, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	now = now.Add(100 * time.Millisecond)
	if !p.NeedsAnimation() {
		t.Error("should animate inside the fade window")
	}
	now = now.Add(300 * time.Millisecond)
	if p.NeedsAnimation() {
		t.Error("should not animate after the fade window")
	}

	frame.MapMode = Static
	if err := p.Render(&RenderData{View: testView()}, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if p.NeedsAnimation() {
		t.Error("static frames never animate")
	}
}

func TestRenderTileDebug(t *testing.T) {
	p, rec := newTestPainter(t)
	tiles := []*RenderTile{{ID: tile.NewUnwrappedID(1, 0, 0), Complete: true}}
	data := &RenderData{
		Sources: []Source{&TileSet{Name: "src", Tiles: tiles}},
		View:    testView(),
	}
	frame := testFrame()
	frame.Debug = TileBorders | ParseStatus
	if err := p.Render(data, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}

	dbg := p.shaders.Debug.ID()
	var lines, labels int
	for _, d := range rec.Draws {
		if d.Program != dbg {
			continue
		}
		switch d.Mode {
		case gputypes.PrimitiveTopologyLineStrip:
			lines++
			if d.Count != 5 || d.Textures[0] != p.buffers.white {
				t.Errorf("border draw = %+v", d)
			}
		case gputypes.PrimitiveTopologyTriangleList:
			labels++
		}
		if !d.StencilTest || d.StencilFunc.Ref != tiles[0].Clip.Reference {
			t.Errorf("debug draw not clipped to tile: %+v", d.StencilFunc)
		}
	}
	if lines != 1 || labels != 2 {
		t.Errorf("border draws %d, label draws %d", lines, labels)
	}
	if len(p.debug.labels) != 1 {
		t.Fatalf("cached labels = %d", len(p.debug.labels))
	}

	// Labels of tiles no longer drawn are released.
	data.Sources = nil
	if err := p.Render(data, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(p.debug.labels) != 0 {
		t.Errorf("cached labels = %d after tile left", len(p.debug.labels))
	}
}

func TestTileLabel(t *testing.T) {
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tl := &RenderTile{ID: tile.NewUnwrappedID(3, -1, 2), Modified: mod}
	tests := []struct {
		flags DebugFlags
		want  string
	}{
		{ParseStatus, tl.ID.String() + " (loading)"},
		{Timestamps, tl.ID.String() + " modified 2026-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		if got := tileLabel(tl, tt.flags); got != tt.want {
			t.Errorf("tileLabel(%v) = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestBackgroundPasses(t *testing.T) {
	tests := []struct {
		name  string
		layer BackgroundLayer
		want  RenderPass
	}{
		{"opaque", BackgroundLayer{Color: gfx.White, Opacity: 1}, Opaque | Translucent},
		{"translucent color", BackgroundLayer{Color: gfx.Color{A: 0.5}, Opacity: 1}, Translucent},
		{"faded", BackgroundLayer{Color: gfx.White, Opacity: 0.5}, Translucent},
		{"hidden", BackgroundLayer{Color: gfx.White}, PassNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RenderPass
			for _, pass := range []RenderPass{Opaque, Translucent} {
				if tt.layer.HasRenderPass(pass) {
					got |= pass
				}
			}
			if got != tt.want {
				t.Errorf("passes = %v, want %v", got, tt.want)
			}
		})
	}
	if (&CustomLayer{}).HasRenderPass(Translucent) {
		t.Error("custom layer without renderer should be skipped")
	}
}
