package backend

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrInvalidSize is returned for a zero window size.
	ErrInvalidSize = errors.New("backend: invalid window size")
)

// Config describes the window framebuffer of a new backend.
type Config struct {
	Width, Height uint32

	// Format is the color format of the window framebuffer. The zero value
	// selects RGBA8Unorm.
	Format gputypes.TextureFormat

	// Logger receives backend diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Validate reports whether c describes a usable window.
func (c Config) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return ErrInvalidSize
	}
	return nil
}

// ColorFormat returns Format, or RGBA8Unorm when it is unset.
func (c Config) ColorFormat() gputypes.TextureFormat {
	if c.Format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return c.Format
}

// Factory opens a backend for cfg.
type Factory func(cfg Config) (gfx.Backend, error)
