// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader builds the fixed catalog of map programs.
//
// Each program is a WGSL body embedded from shaders/ plus a prelude that is
// generated from the Go-side layout: the uniform struct, texture bindings
// and vertex inputs. Programs are compiled with naga and linked by the
// graphics backend once, when a Set is created.
package shader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/naga"

	"github.com/gogpu/mapgpu/gfx"
)

// Variant selects how fragments are colored.
type Variant uint8

const (
	// Normal renders styled output.
	Normal Variant = iota
	// Overdraw outputs a constant color per fragment, for visualising how
	// often each pixel is drawn.
	Overdraw
)

func (v Variant) String() string {
	if v == Overdraw {
		return "overdraw"
	}
	return "normal"
}

// Compiler turns WGSL into SPIR-V words.
type Compiler func(wgsl string) ([]uint32, error)

// CompileWGSL compiles WGSL with naga.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

type options struct {
	compiler Compiler
	logger   *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithCompiler replaces the naga compiler, for example with a loader of
// precompiled SPIR-V.
func WithCompiler(c Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithLogger sets the logger that reports built programs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Set holds one program per catalog entry, all built for one Variant.
type Set struct {
	variant  Variant
	programs map[string]*Program

	Background   *Program
	Fill         *Program
	FillOutline  *Program
	FillPattern  *Program
	Line         *Program
	Circle       *Program
	Raster       *Program
	SymbolIcon   *Program
	CollisionBox *Program
	ClippingMask *Program
	Debug        *Program
}

// New compiles and links every catalog program for variant. Any failure is
// returned wrapped with the program name; nothing is retried.
func New(ctx *gfx.Context, variant Variant, opts ...Option) (*Set, error) {
	o := options{compiler: CompileWGSL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(nopHandler{})
	}

	s := &Set{variant: variant, programs: make(map[string]*Program, len(catalog))}
	for i := range catalog {
		p, err := build(ctx, &catalog[i], variant, o.compiler)
		if err != nil {
			s.Release(ctx)
			return nil, err
		}
		s.programs[p.name] = p
	}

	s.Background = s.programs[Background]
	s.Fill = s.programs[Fill]
	s.FillOutline = s.programs[FillOutline]
	s.FillPattern = s.programs[FillPattern]
	s.Line = s.programs[Line]
	s.Circle = s.programs[Circle]
	s.Raster = s.programs[Raster]
	s.SymbolIcon = s.programs[SymbolIcon]
	s.CollisionBox = s.programs[CollisionBox]
	s.ClippingMask = s.programs[ClippingMask]
	s.Debug = s.programs[Debug]

	o.logger.Info("shader: programs built", "variant", variant, "count", len(s.programs))
	return s, nil
}

func build(ctx *gfx.Context, d *definition, variant Variant, compile Compiler) (*Program, error) {
	pre, err := prelude(d, variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, d.name, err)
	}
	text, err := body(d.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, d.name, err)
	}
	source := pre + text

	spirv, err := compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, d.name, err)
	}

	layout, err := vertexLayout(d.attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, d.name, err)
	}
	infos, size := blockLayout(d.uniforms)

	id, err := ctx.CreateProgram(&gfx.ProgramDescriptor{
		Label:        d.name,
		WGSL:         source,
		SPIRV:        spirv,
		VertexLayout: layout,
		Uniforms:     infos,
		UniformSize:  size,
		Textures:     d.textures,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLink, d.name, err)
	}

	p := &Program{
		name:     d.name,
		id:       id,
		source:   source,
		layout:   layout,
		textures: d.textures,
		slots:    make(map[string]slot, len(infos)),
		block:    make([]byte, size),
		dirty:    true,
	}
	for i, info := range infos {
		loc := ctx.UniformLocation(id, info.Name)
		if loc < 0 {
			ctx.AbandonProgram(id)
			return nil, fmt.Errorf("%w: %s.%s", ErrUniformNotFound, d.name, info.Name)
		}
		p.slots[info.Name] = slot{info: info, typ: d.uniforms[i].Type, location: loc}
	}
	return p, nil
}

// Variant returns the variant the set was built for.
func (s *Set) Variant() Variant {
	return s.variant
}

// Program returns a program by catalog name.
func (s *Set) Program(name string) (*Program, error) {
	p, ok := s.programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	return p, nil
}

// Release queues every program for deletion.
func (s *Set) Release(ctx *gfx.Context) {
	for name, p := range s.programs {
		ctx.AbandonProgram(p.id)
		delete(s.programs, name)
	}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
