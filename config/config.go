// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads renderer settings from HCL, TOML or YAML files and
// turns them into painter options and a backend configuration.
//
// A settings file in HCL:
//
//	fade_duration = "300ms"
//	strict_errors = true
//	debug         = ["tile-borders", "parse-status"]
//	background    = "#1d2733"
//
//	backend {
//	  name   = "wgpu"
//	  width  = 1024
//	  height = 768
//	  format = "bgra8unorm"
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gputypes"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/mapgpu"
	"github.com/gogpu/mapgpu/backend"
	"github.com/gogpu/mapgpu/gfx"
)

var (
	// ErrUnknownFormat is returned for files whose extension is not one
	// of .hcl, .toml, .yaml or .yml.
	ErrUnknownFormat = errors.New("config: unknown file format")
	// ErrInvalid is returned when a decoded setting has a bad value.
	ErrInvalid = errors.New("config: invalid setting")
)

// Settings is the decoded content of a settings file. Zero values mean
// "use the painter default".
type Settings struct {
	FadeDuration string   `hcl:"fade_duration,optional" toml:"fade_duration" yaml:"fade_duration"`
	StrictErrors bool     `hcl:"strict_errors,optional" toml:"strict_errors" yaml:"strict_errors"`
	DebugShaders bool     `hcl:"debug_shaders,optional" toml:"debug_shaders" yaml:"debug_shaders"`
	Debug        []string `hcl:"debug,optional" toml:"debug" yaml:"debug"`

	// Background overrides the style's background color. It is a
	// #rgb or #rrggbb hex string.
	Background        string   `hcl:"background,optional" toml:"background" yaml:"background"`
	BackgroundOpacity *float64 `hcl:"background_opacity,optional" toml:"background_opacity" yaml:"background_opacity"`

	Backend *BackendSettings `hcl:"backend,block" toml:"backend" yaml:"backend"`
}

// BackendSettings selects and sizes the GPU backend.
type BackendSettings struct {
	Name   string `hcl:"name,optional" toml:"name" yaml:"name"`
	Width  uint32 `hcl:"width,optional" toml:"width" yaml:"width"`
	Height uint32 `hcl:"height,optional" toml:"height" yaml:"height"`
	Format string `hcl:"format,optional" toml:"format" yaml:"format"`
}

// Load reads the settings file at path. The decoder is chosen by the file
// extension.
func Load(path string) (*Settings, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(path, src)
}

// Decode parses src as a settings file named filename and validates the
// result.
func Decode(filename string, src []byte) (*Settings, error) {
	var s Settings
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".hcl":
		if err := hclsimple.Decode(filename, src, evalContext(), &s); err != nil {
			return nil, fmt.Errorf("config: parse HCL from %s: %w", filename, err)
		}
	case ".toml":
		if err := toml.Unmarshal(src, &s); err != nil {
			return nil, fmt.Errorf("config: parse TOML from %s: %w", filename, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(src, &s); err != nil {
			return nil, fmt.Errorf("config: parse YAML from %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// evalContext exposes the debug flag names as variables and a few string
// functions to HCL files.
func evalContext() *hcl.EvalContext {
	flags := map[string]cty.Value{}
	for _, name := range debugFlagNames {
		flags[strings.ReplaceAll(name, "-", "_")] = cty.StringVal(name)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"debug_flag": cty.ObjectVal(flags),
		},
		Functions: map[string]function.Function{
			"lower":  stdlib.LowerFunc,
			"upper":  stdlib.UpperFunc,
			"concat": stdlib.ConcatFunc,
		},
	}
}

var debugFlagNames = []string{"tile-borders", "parse-status", "timestamps", "collision", "overdraw"}

// Validate checks every setting that needs parsing.
func (s *Settings) Validate() error {
	if _, err := s.Fade(); err != nil {
		return err
	}
	if _, err := s.DebugFlags(); err != nil {
		return err
	}
	if _, _, err := s.BackgroundColor(); err != nil {
		return err
	}
	if s.Backend != nil {
		if _, err := s.Backend.TextureFormat(); err != nil {
			return err
		}
	}
	return nil
}

// Fade returns the parsed fade duration, or -1 when it is unset.
func (s *Settings) Fade() (time.Duration, error) {
	if s.FadeDuration == "" {
		return -1, nil
	}
	d, err := time.ParseDuration(s.FadeDuration)
	if err != nil {
		return 0, fmt.Errorf("%w: fade_duration %q: %w", ErrInvalid, s.FadeDuration, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative fade_duration %s", ErrInvalid, d)
	}
	return d, nil
}

// DebugFlags combines the named debug flags.
func (s *Settings) DebugFlags() (mapgpu.DebugFlags, error) {
	var flags mapgpu.DebugFlags
	for _, name := range s.Debug {
		f, ok := mapgpu.ParseDebugFlag(strings.TrimSpace(name))
		if !ok {
			return 0, fmt.Errorf("%w: debug flag %q", ErrInvalid, name)
		}
		flags |= f
	}
	return flags, nil
}

// BackgroundColor returns the premultiplied background override. The
// boolean is false when no override is set.
func (s *Settings) BackgroundColor() (gfx.Color, bool, error) {
	if s.Background == "" {
		return gfx.Color{}, false, nil
	}
	c, err := colorful.Hex(s.Background)
	if err != nil {
		return gfx.Color{}, false, fmt.Errorf("%w: background %q: %w", ErrInvalid, s.Background, err)
	}
	alpha := 1.0
	if s.BackgroundOpacity != nil {
		alpha = *s.BackgroundOpacity
		if alpha < 0 || alpha > 1 {
			return gfx.Color{}, false, fmt.Errorf("%w: background_opacity %g", ErrInvalid, alpha)
		}
	}
	return gfx.Color{
		R: float32(c.R * alpha),
		G: float32(c.G * alpha),
		B: float32(c.B * alpha),
		A: float32(alpha),
	}, true, nil
}

// Options converts the settings to painter options.
func (s *Settings) Options() ([]mapgpu.Option, error) {
	fade, err := s.Fade()
	if err != nil {
		return nil, err
	}
	opts := []mapgpu.Option{
		mapgpu.WithStrictErrors(s.StrictErrors),
		mapgpu.WithDebugShaders(s.DebugShaders),
	}
	if fade >= 0 {
		opts = append(opts, mapgpu.WithFadeDuration(fade))
	}
	return opts, nil
}

// BackendConfig returns the backend name and configuration. The name is
// empty when the file does not pick a backend.
func (s *Settings) BackendConfig() (string, backend.Config, error) {
	if s.Backend == nil {
		return "", backend.Config{}, nil
	}
	format, err := s.Backend.TextureFormat()
	if err != nil {
		return "", backend.Config{}, err
	}
	return s.Backend.Name, backend.Config{
		Width:  s.Backend.Width,
		Height: s.Backend.Height,
		Format: format,
	}, nil
}

var textureFormats = map[string]gputypes.TextureFormat{
	"rgba8unorm": gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm": gputypes.TextureFormatBGRA8Unorm,
}

// TextureFormat returns the color format. An empty name means the backend
// default.
func (b *BackendSettings) TextureFormat() (gputypes.TextureFormat, error) {
	if b.Format == "" {
		return gputypes.TextureFormatUndefined, nil
	}
	f, ok := textureFormats[strings.ToLower(b.Format)]
	if !ok {
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: format %q", ErrInvalid, b.Format)
	}
	return f, nil
}
