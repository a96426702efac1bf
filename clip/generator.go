// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package clip

import (
	"context"
	"log/slog"
	"math/bits"
	"slices"

	"github.com/gogpu/mapgpu/tile"
)

// Renderable is a tile that takes part in clipping.
type Renderable interface {
	TileID() tile.UnwrappedID
	SetClip(ID)
}

// Stencil is one stencil write batch: every tile in Tiles is written with
// the same ID.
type Stencil struct {
	ID    ID
	Tiles []tile.UnwrappedID
}

// leaf is a tile together with the tiles below it that are present in the
// same source. Two sources producing identical leaves can share an ID.
type leaf struct {
	id       tile.UnwrappedID
	children []tile.CanonicalID
	clip     ID
}

func (l *leaf) equal(o *leaf) bool {
	return l.id == o.id && slices.Equal(l.children, o.children)
}

// Generator assigns clip IDs source by source during one frame.
// A Generator must not be reused across frames.
type Generator struct {
	bitOffset int
	pool      []leaf
	rejected  int
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to report stencil budget overflows.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator returns an empty generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(discardHandler{})
	}
	return g
}

// Update walks the tiles of one source in quad-tree order (wrap, zoom, x,
// y) and assigns each one a clip ID.
//
// Tiles that were already seen with an identical set of present
// descendants in an earlier source keep that source's reference. The rest
// are numbered from 1 in a bit field of ceil(log2(n+1)) bits placed above
// the fields of earlier sources. When the field does not fit in Bits, the
// source's new tiles receive Reject and are left out of Stencils.
func (g *Generator) Update(renderables []Renderable) {
	if len(renderables) == 0 {
		return
	}
	rs := slices.Clone(renderables)
	slices.SortStableFunc(rs, func(a, b Renderable) int {
		return a.TileID().Compare(b.TileID())
	})

	leaves := make([]leaf, len(rs))
	fresh := make([]bool, len(rs))
	size := 0
	for i, r := range rs {
		id := r.TileID()
		l := leaf{id: id}
		// Sorted by wrap first: tiles of the next wrap can never be children.
		for _, c := range rs[i+1:] {
			cid := c.TileID()
			if cid.Wrap != id.Wrap {
				break
			}
			if cid.IsChildOf(id) {
				l.children = append(l.children, cid.Canonical)
			}
		}
		if existing := g.find(&l); existing != nil {
			l.clip = existing.clip
		} else {
			fresh[i] = true
			size++
		}
		leaves[i] = l
	}

	if size > 0 {
		// Counting starts at 1 so that a tile is distinguishable from the
		// area where no tile was drawn at all.
		bitCount := bits.Len(uint(size))
		if g.bitOffset+bitCount > Bits {
			g.rejected += size
			g.logger.Warn("clip: stencil mask overflow",
				"tiles", size, "bits", bitCount, "offset", g.bitOffset)
			for i := range leaves {
				if fresh[i] {
					leaves[i].clip = Reject
				}
			}
		} else {
			mask := uint8((1<<bitCount - 1) << g.bitOffset)
			count := 1
			for i := range leaves {
				leaves[i].clip.Mask |= mask
				if fresh[i] {
					leaves[i].clip.Reference |= uint8(count << g.bitOffset)
					count++
				}
			}
			g.bitOffset += bitCount
		}
	}

	for i, r := range rs {
		r.SetClip(leaves[i].clip)
		if !leaves[i].clip.Rejected() {
			g.pool = append(g.pool, leaves[i])
		}
	}
}

func (g *Generator) find(l *leaf) *leaf {
	for i := range g.pool {
		if g.pool[i].equal(l) {
			return &g.pool[i]
		}
	}
	return nil
}

// BitsUsed returns the number of stencil bits claimed so far.
func (g *Generator) BitsUsed() int {
	return g.bitOffset
}

// Rejected returns how many tiles were excluded for lack of stencil bits.
func (g *Generator) Rejected() int {
	return g.rejected
}

// Stencils merges the IDs of all sources and returns the stencil writes in
// the order they must be issued. Parents come before their children, and
// each child inherits the parent's bits in fields it does not own itself, so
// writing a child never disturbs the parent's test in another source's
// field. Tiles of one zoom level that end up with the same ID share one
// Stencil.
func (g *Generator) Stencils() []Stencil {
	merged := make(map[tile.UnwrappedID]ID, len(g.pool))
	keys := make([]tile.UnwrappedID, 0, len(g.pool))
	for _, l := range g.pool {
		if m, ok := merged[l.id]; ok {
			merged[l.id] = ID{Reference: m.Reference | l.clip.Reference, Mask: m.Mask | l.clip.Mask}
			continue
		}
		merged[l.id] = l.clip
		keys = append(keys, l.id)
	}
	slices.SortFunc(keys, tile.UnwrappedID.Compare)

	for i, child := range keys {
		cc := merged[child]
		for j := i - 1; j >= 0; j-- {
			parent := keys[j]
			if !child.IsChildOf(parent) {
				continue
			}
			pc := merged[parent]
			free := ^(cc.Mask & pc.Mask)
			cc.Reference |= free & pc.Reference
			cc.Mask |= pc.Mask
		}
		merged[child] = cc
	}

	// Tiles of one zoom never overlap, so a group may span wraps and
	// positions; writing groups in zoom order keeps parents first.
	type groupKey struct {
		id ID
		z  uint8
	}
	var out []Stencil
	index := make(map[groupKey]int)
	for _, k := range keys {
		gk := groupKey{id: merged[k], z: k.Canonical.Z}
		if i, ok := index[gk]; ok {
			out[i].Tiles = append(out[i].Tiles, k)
			continue
		}
		index[gk] = len(out)
		out = append(out, Stencil{ID: gk.id, Tiles: []tile.UnwrappedID{k}})
	}
	slices.SortStableFunc(out, func(a, b Stencil) int {
		return int(a.Tiles[0].Canonical.Z) - int(b.Tiles[0].Canonical.Z)
	})
	return out
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
