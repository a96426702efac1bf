// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package debugdraw builds the assets of the tile debug overlay: border
// colors and rasterised tile labels.
package debugdraw

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"

	"github.com/gogpu/mapgpu/gfx"
)

// Fallback is the border color used when no palette could be generated.
var Fallback = gfx.Color{R: 1, A: 1}

// Palette is a fixed set of distinct border colors indexed by zoom level.
type Palette struct {
	colors []gfx.Color
}

// NewPalette generates n distinct pastel colors.
func NewPalette(n int) (*Palette, error) {
	if n <= 0 {
		return nil, fmt.Errorf("debugdraw: palette size %d", n)
	}
	cs, err := gamut.Generate(n, gamut.PastelGenerator{})
	if err != nil {
		return nil, fmt.Errorf("debugdraw: generate palette: %w", err)
	}
	p := &Palette{colors: make([]gfx.Color, len(cs))}
	for i, c := range cs {
		p.colors[i] = ToColor(c)
	}
	return p, nil
}

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.colors) }

// At returns the color for index i, wrapping around. A nil palette
// returns Fallback.
func (p *Palette) At(i int) gfx.Color {
	if p == nil || len(p.colors) == 0 {
		return Fallback
	}
	if i < 0 {
		i = -i
	}
	return p.colors[i%len(p.colors)]
}

// ToColor converts any image color to an opaque-premultiplied gfx.Color.
func ToColor(c color.Color) gfx.Color {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent input.
		return gfx.Transparent
	}
	_, _, _, a := c.RGBA()
	alpha := float32(a) / 0xffff
	return gfx.Color{
		R: float32(cf.R) * alpha,
		G: float32(cf.G) * alpha,
		B: float32(cf.B) * alpha,
		A: alpha,
	}
}

// LabelFormat is the texture format of Label pixels.
const LabelFormat = gputypes.TextureFormatRGBA8Unorm
