// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tile

import "testing"

func TestCanonicalIsChildOf(t *testing.T) {
	tests := []struct {
		name   string
		child  CanonicalID
		parent CanonicalID
		want   bool
	}{
		{"direct child", CanonicalID{1, 1, 0}, CanonicalID{0, 0, 0}, true},
		{"grandchild", CanonicalID{3, 5, 2}, CanonicalID{1, 1, 0}, true},
		{"not contained", CanonicalID{3, 1, 2}, CanonicalID{1, 1, 0}, false},
		{"same tile", CanonicalID{2, 1, 1}, CanonicalID{2, 1, 1}, false},
		{"parent deeper", CanonicalID{1, 0, 0}, CanonicalID{2, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.child.IsChildOf(tt.parent); got != tt.want {
				t.Errorf("%v.IsChildOf(%v) = %v, want %v", tt.child, tt.parent, got, tt.want)
			}
		})
	}
}

func TestChildrenAreChildren(t *testing.T) {
	parent := NewCanonicalID(4, 3, 9)
	seen := map[CanonicalID]bool{}
	for _, c := range parent.Children() {
		if !c.IsChildOf(parent) {
			t.Errorf("%v is not a child of %v", c, parent)
		}
		if c.ScaledTo(parent.Z) != parent {
			t.Errorf("%v scaled to z%d = %v, want %v", c, parent.Z, c.ScaledTo(parent.Z), parent)
		}
		seen[c] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 distinct children, got %d", len(seen))
	}
}

func TestNewUnwrappedID(t *testing.T) {
	tests := []struct {
		z    uint8
		x    int64
		wrap int16
		cx   uint32
	}{
		{2, 1, 0, 1},
		{2, 4, 1, 0},
		{2, -1, -1, 3},
		{2, -5, -2, 3},
		{0, 3, 3, 0},
	}
	for _, tt := range tests {
		id := NewUnwrappedID(tt.z, tt.x, 0)
		if id.Wrap != tt.wrap || id.Canonical.X != tt.cx {
			t.Errorf("NewUnwrappedID(%d, %d) = %v, want wrap %d x %d", tt.z, tt.x, id, tt.wrap, tt.cx)
		}
		if id.UnwrappedX() != tt.x {
			t.Errorf("UnwrappedX() = %d, want %d", id.UnwrappedX(), tt.x)
		}
	}
}

func TestUnwrappedChildNeedsSameWrap(t *testing.T) {
	parent := UnwrappedID{Wrap: 0, Canonical: CanonicalID{1, 0, 0}}
	child := UnwrappedID{Wrap: 1, Canonical: CanonicalID{2, 0, 0}}
	if child.IsChildOf(parent) {
		t.Error("tiles from different world copies must not nest")
	}
	child.Wrap = 0
	if !child.IsChildOf(parent) {
		t.Error("expected same-wrap child to nest")
	}
}

func TestUnwrappedCompare(t *testing.T) {
	a := UnwrappedID{Wrap: -1, Canonical: CanonicalID{5, 0, 0}}
	b := UnwrappedID{Wrap: 0, Canonical: CanonicalID{0, 0, 0}}
	c := UnwrappedID{Wrap: 0, Canonical: CanonicalID{1, 0, 1}}
	if a.Compare(b) >= 0 || b.Compare(c) >= 0 || c.Compare(a) <= 0 {
		t.Errorf("unexpected ordering: %v %v %v", a, b, c)
	}
	if b.Compare(b) != 0 {
		t.Error("id must compare equal to itself")
	}
}

func TestString(t *testing.T) {
	if got := (UnwrappedID{Wrap: 0, Canonical: CanonicalID{3, 2, 1}}).String(); got != "3/2/1" {
		t.Errorf("String() = %q", got)
	}
	if got := (UnwrappedID{Wrap: -1, Canonical: CanonicalID{3, 2, 1}}).String(); got != "3/2/1@-1" {
		t.Errorf("String() = %q", got)
	}
}
