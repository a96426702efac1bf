// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tile defines the identifiers of map tiles in a tile pyramid.
//
// A CanonicalID addresses a tile inside the single world copy at zoom Z.
// An UnwrappedID adds the world-wrap index, so that tiles repeated to the
// left or right of the antimeridian stay distinguishable.
package tile

import (
	"fmt"
	"math"
)

// MaxZoom is the deepest zoom level a CanonicalID can address.
const MaxZoom = 31

// CanonicalID identifies a tile within one world copy.
type CanonicalID struct {
	Z uint8
	X uint32
	Y uint32
}

// NewCanonicalID returns the tile at zoom z with coordinates x and y.
// It panics if the coordinates fall outside the 2^z by 2^z grid.
func NewCanonicalID(z uint8, x, y uint32) CanonicalID {
	if z > MaxZoom {
		panic(fmt.Sprintf("tile: zoom %d exceeds %d", z, MaxZoom))
	}
	if dim := uint64(1) << z; uint64(x) >= dim || uint64(y) >= dim {
		panic(fmt.Sprintf("tile: %d/%d/%d outside grid", z, x, y))
	}
	return CanonicalID{Z: z, X: x, Y: y}
}

// IsChildOf reports whether id is a strict descendant of parent.
func (id CanonicalID) IsChildOf(parent CanonicalID) bool {
	if parent.Z >= id.Z {
		return false
	}
	dz := id.Z - parent.Z
	return id.X>>dz == parent.X && id.Y>>dz == parent.Y
}

// ScaledTo returns the ancestor of id at zoom z. If z is not below id.Z the
// id is returned unchanged.
func (id CanonicalID) ScaledTo(z uint8) CanonicalID {
	if z >= id.Z {
		return id
	}
	dz := id.Z - z
	return CanonicalID{Z: z, X: id.X >> dz, Y: id.Y >> dz}
}

// Children returns the four tiles one zoom level below id, in quadrant
// order (top-left, top-right, bottom-left, bottom-right).
func (id CanonicalID) Children() [4]CanonicalID {
	z := id.Z + 1
	x, y := id.X*2, id.Y*2
	return [4]CanonicalID{
		{Z: z, X: x, Y: y},
		{Z: z, X: x + 1, Y: y},
		{Z: z, X: x, Y: y + 1},
		{Z: z, X: x + 1, Y: y + 1},
	}
}

// Compare orders ids by zoom, then x, then y.
func (id CanonicalID) Compare(o CanonicalID) int {
	switch {
	case id.Z != o.Z:
		return cmpInt(int64(id.Z), int64(o.Z))
	case id.X != o.X:
		return cmpInt(int64(id.X), int64(o.X))
	default:
		return cmpInt(int64(id.Y), int64(o.Y))
	}
}

func (id CanonicalID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Z, id.X, id.Y)
}

// UnwrappedID identifies a tile including the world copy it belongs to.
// Wrap 0 is the primary world; -1 is the copy to its west.
type UnwrappedID struct {
	Wrap      int16
	Canonical CanonicalID
}

// NewUnwrappedID builds an id from an unbounded x coordinate, splitting it
// into a wrap index and a canonical x.
func NewUnwrappedID(z uint8, x int64, y uint32) UnwrappedID {
	dim := int64(1) << z
	wrap := int64(math.Floor(float64(x) / float64(dim)))
	cx := x - wrap*dim
	return UnwrappedID{
		Wrap:      int16(wrap), //nolint:gosec // wrap counts stay far below int16 range
		Canonical: NewCanonicalID(z, uint32(cx), y),
	}
}

// IsChildOf reports whether id descends from parent within the same world
// copy. Tiles of different wraps never contain each other.
func (id UnwrappedID) IsChildOf(parent UnwrappedID) bool {
	return id.Wrap == parent.Wrap && id.Canonical.IsChildOf(parent.Canonical)
}

// UnwrappedX returns the x coordinate across world copies.
func (id UnwrappedID) UnwrappedX() int64 {
	return int64(id.Canonical.X) + int64(id.Wrap)*(int64(1)<<id.Canonical.Z)
}

// Compare orders ids by wrap first, then canonically.
func (id UnwrappedID) Compare(o UnwrappedID) int {
	if id.Wrap != o.Wrap {
		return cmpInt(int64(id.Wrap), int64(o.Wrap))
	}
	return id.Canonical.Compare(o.Canonical)
}

func (id UnwrappedID) String() string {
	if id.Wrap == 0 {
		return id.Canonical.String()
	}
	return fmt.Sprintf("%s@%d", id.Canonical, id.Wrap)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
