// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package debugdraw

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/mapgpu/internal/cache"
)

// ErrEmptyLabel is returned when asked to render an empty string.
var ErrEmptyLabel = errors.New("debugdraw: empty label")

// DefaultLabelSize is the label font size in pixels.
const DefaultLabelSize = 14

const labelPadding = 2

// shapedCapacity bounds the number of distinct label strings whose shaped
// runs are kept.
const shapedCapacity = 512

// run is a bidi run of label text in visual order.
type run struct {
	text  []rune
	rtl   bool
	width fixed.Int26_6
}

// Labeler rasterises short single-line labels with the embedded Go
// Regular font. It is not safe for concurrent use.
type Labeler struct {
	size   float64
	face   font.Face
	shape  *gtfont.Font
	shaper shaping.HarfbuzzShaper
	shaped *cache.LRU[string, []run]
}

// NewLabeler parses the embedded font at the given pixel size.
func NewLabeler(size float64) (*Labeler, error) {
	if size <= 0 {
		size = DefaultLabelSize
	}
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("debugdraw: parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("debugdraw: font face: %w", err)
	}
	gt, err := gtfont.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		_ = face.Close()
		return nil, fmt.Errorf("debugdraw: parse font: %w", err)
	}
	return &Labeler{
		size:   size,
		face:   face,
		shape:  gt.Font,
		shaped: cache.NewLRU[string, []run](shapedCapacity),
	}, nil
}

// Close releases the rasteriser face.
func (l *Labeler) Close() error {
	return l.face.Close()
}

// Size returns the font size in pixels.
func (l *Labeler) Size() float64 { return l.size }

// runs returns the shaped runs of text, shaping it on a cache miss. The
// result must not be modified.
func (l *Labeler) runs(text string) []run {
	if rs, ok := l.shaped.Get(text); ok {
		return rs
	}
	rs := l.shapeText(text)
	l.shaped.Put(text, rs)
	return rs
}

// ShapeStats returns the counters of the shaped run cache.
func (l *Labeler) ShapeStats() cache.Stats { return l.shaped.Stats() }

// shapeText splits text into bidi runs in visual order and shapes each one.
func (l *Labeler) shapeText(text string) []run {
	runes := []rune(text)
	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return []run{l.shapeRun(runes, false)}
	}
	ordering, err := p.Order()
	if err != nil {
		return []run{l.shapeRun(runes, false)}
	}
	out := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		start, end := r.Pos()
		if start < 0 || end >= len(runes) || start > end {
			continue
		}
		out = append(out, l.shapeRun(runes[start:end+1], r.Direction() == bidi.RightToLeft))
	}
	return out
}

func (l *Labeler) shapeRun(text []rune, rtl bool) run {
	dir := di.DirectionLTR
	if rtl {
		dir = di.DirectionRTL
	}
	script := language.Latin
	for _, r := range text {
		if r != ' ' {
			script = language.LookupScript(r)
			break
		}
	}
	out := l.shaper.Shape(shaping.Input{
		Text:      text,
		RunStart:  0,
		RunEnd:    len(text),
		Direction: dir,
		Face:      gtfont.NewFace(l.shape),
		Size:      fixed.Int26_6(l.size * 64),
		Script:    script,
		Language:  language.NewLanguage("en"),
	})
	return run{text: text, rtl: rtl, width: out.Advance}
}

// Measure returns the shaped advance of text in pixels.
func (l *Labeler) Measure(text string) float64 {
	var w fixed.Int26_6
	for _, r := range l.runs(text) {
		w += r.width
	}
	return float64(w) / 64
}

// Render draws text as white premultiplied coverage on a transparent
// background. Right-to-left runs are drawn in visual order.
func (l *Labeler) Render(text string) (*image.RGBA, error) {
	if text == "" {
		return nil, ErrEmptyLabel
	}
	runs := l.runs(text)
	var width fixed.Int26_6
	for _, r := range runs {
		width += r.width
	}
	m := l.face.Metrics()
	w := width.Ceil() + 2*labelPadding
	h := (m.Ascent + m.Descent).Ceil() + 2*labelPadding
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: l.face,
		Dot:  fixed.P(labelPadding, labelPadding+m.Ascent.Ceil()),
	}
	for _, r := range runs {
		start := d.Dot.X
		text := r.text
		if r.rtl {
			text = reversed(text)
		}
		d.DrawString(string(text))
		// Keep shaped advances so measured and drawn widths agree.
		d.Dot.X = start + r.width
	}
	return img, nil
}

func reversed(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[len(rs)-1-i] = r
	}
	return out
}
