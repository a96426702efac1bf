// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package clip assigns stencil clip identifiers to overlapping map tiles.
//
// Tiles of one source may overlap: a parent stays visible while its children
// load, and the same tile may be repeated across world copies. Each tile
// receives an ID, a (reference, mask) pair for the stencil test, such that
// after all stencil writes every pixel passes the test of exactly one tile
// per source: the deepest tile covering it.
package clip

import "fmt"

// Bits is the width of the stencil buffer available for clipping.
const Bits = 8

// ID is a stencil (reference, mask) pair.
//
// The zero ID has an empty mask; it matches every pixel and is what the
// area outside all tiles carries.
type ID struct {
	Reference uint8
	Mask      uint8
}

// Reject is assigned to tiles that could not be given an ID within the
// stencil bit budget. It is never written to the stencil buffer and the
// painter turns it into a test that never passes, so the tile over-clips
// instead of bleeding into its neighbours.
var Reject = ID{Reference: 0xFF, Mask: 0}

// Rejected reports whether id is Reject.
func (id ID) Rejected() bool {
	return id.Mask == 0 && id.Reference != 0
}

// Matches reports whether a stencil value passes the equality test of id.
func (id ID) Matches(stencil uint8) bool {
	if id.Rejected() {
		return false
	}
	return stencil&id.Mask == id.Reference&id.Mask
}

// Apply returns the stencil value after writing id over stencil with the
// Replace operation and id.Mask as write mask.
func (id ID) Apply(stencil uint8) uint8 {
	return stencil&^id.Mask | id.Reference&id.Mask
}

func (id ID) String() string {
	if id.Rejected() {
		return "reject"
	}
	return fmt.Sprintf("%08b/%08b", id.Reference, id.Mask)
}
