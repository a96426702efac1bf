// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "fmt"

// State caches one piece of pipeline state.
//
// Set forwards a value to the backend only when it differs from the cached
// one or the state is dirty. A fresh State is dirty, because nothing is
// known about the backend yet.
type State[T comparable] struct {
	name  string
	value T
	def   T
	dirty bool
	apply func(T) error
	ctx   *Context
}

func (s *State[T]) init(ctx *Context, name string, def T, apply func(T) error) {
	*s = State[T]{name: name, value: def, def: def, dirty: true, apply: apply, ctx: ctx}
}

// Set makes v the current value.
func (s *State[T]) Set(v T) {
	if s.ctx.leased {
		s.ctx.record(fmt.Errorf("%w: set %s", ErrContextLeased, s.name))
		return
	}
	if !s.dirty && v == s.value {
		return
	}
	if err := s.apply(v); err != nil {
		// The backend state is unknown; the next Set must reach it.
		s.dirty = true
		s.ctx.record(fmt.Errorf("gfx: set %s: %w", s.name, err))
		return
	}
	s.value = v
	s.dirty = false
}

// Get returns the cached value.
func (s *State[T]) Get() T {
	return s.value
}

// Reset sets the default value.
func (s *State[T]) Reset() {
	s.Set(s.def)
}

// Default returns the default value.
func (s *State[T]) Default() T {
	return s.def
}

// SetDefault replaces the value Reset restores.
func (s *State[T]) SetDefault(v T) {
	s.def = v
}

// Dirty reports whether the next Set is forwarded regardless of its value.
func (s *State[T]) Dirty() bool {
	return s.dirty
}

// SetDirty forces the next Set to reach the backend.
func (s *State[T]) SetDirty() {
	s.dirty = true
}

// forget updates the cache without a backend call, for objects the backend
// already unbound on deletion.
func (s *State[T]) forget(v T) {
	if s.value == v {
		s.value = s.def
	}
}
