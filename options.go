package mapgpu

import (
	"log/slog"
	"time"

	"github.com/gogpu/mapgpu/animation"
	"github.com/gogpu/mapgpu/shader"
)

// Option configures a Painter during creation.
// Use functional options to customize Painter behavior.
//
// Example:
//
//	// Defaults: lenient GPU errors, 300ms fade, no debug shaders
//	p, err := mapgpu.NewPainter(backend)
//
//	// Debug build: abort frames on GPU errors, enable overdraw shaders
//	p, err := mapgpu.NewPainter(backend,
//		mapgpu.WithStrictErrors(true),
//		mapgpu.WithDebugShaders(true),
//	)
type Option func(*painterOptions)

// painterOptions holds optional configuration for Painter creation.
type painterOptions struct {
	logger       *slog.Logger
	strict       bool
	fade         time.Duration
	clock        func() time.Time
	debugShaders bool
	atlases      []Uploader
	compiler     shader.Compiler
}

// defaultOptions returns the default painter options.
func defaultOptions() painterOptions {
	return painterOptions{
		fade:  animation.DefaultFadeDuration,
		clock: time.Now,
	}
}

// WithLogger sets the logger for this Painter and the components it owns.
// Without it the Painter uses the package logger (see SetLogger) as it is
// at creation time.
func WithLogger(l *slog.Logger) Option {
	return func(o *painterOptions) {
		o.logger = l
	}
}

// WithStrictErrors makes Render abort and return the first GPU error
// recorded by the graphics context. In the default lenient mode the error
// is logged at Warn and the frame continues.
func WithStrictErrors(strict bool) Option {
	return func(o *painterOptions) {
		o.strict = strict
	}
}

// WithFadeDuration sets the raster cross-fade window used in Continuous
// mode. Zero disables fading.
func WithFadeDuration(d time.Duration) Option {
	return func(o *painterOptions) {
		if d >= 0 {
			o.fade = d
		}
	}
}

// WithClock replaces time.Now for NeedsAnimation and for frames that carry
// no timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *painterOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithDebugShaders builds the overdraw shader set next to the normal one,
// enabling the Overdraw debug flag.
func WithDebugShaders(enabled bool) Option {
	return func(o *painterOptions) {
		o.debugShaders = enabled
	}
}

// WithAtlases registers shared textures (sprite, glyph and line atlases)
// that are uploaded at the start of every frame.
func WithAtlases(atlases ...Uploader) Option {
	return func(o *painterOptions) {
		o.atlases = append(o.atlases, atlases...)
	}
}

// WithShaderCompiler replaces the WGSL compiler used for the shader
// catalog.
func WithShaderCompiler(c shader.Compiler) Option {
	return func(o *painterOptions) {
		o.compiler = c
	}
}
