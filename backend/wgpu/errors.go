// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

var (
	// ErrNoAdapter is returned when the selected HAL backend exposes no
	// adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter")

	// ErrNilDevice is returned when a nil device or queue is passed in.
	ErrNilDevice = errors.New("wgpu: nil device or queue")

	// ErrNoHALProvider is returned when a device provider does not expose
	// HAL types.
	ErrNoHALProvider = errors.New("wgpu: provider does not expose HAL types")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("wgpu: backend closed")

	// ErrUnknownResource is returned for an ID the backend did not create or
	// already deleted.
	ErrUnknownResource = errors.New("wgpu: unknown resource")

	// ErrUnsupportedFormat is returned for a texture format the backend
	// cannot upload.
	ErrUnsupportedFormat = errors.New("wgpu: unsupported texture format")

	// ErrDataSize is returned when upload data does not match the texture.
	ErrDataSize = errors.New("wgpu: data size mismatch")

	// ErrInvalidTextureUnit is returned for a texture unit the backend
	// does not have.
	ErrInvalidTextureUnit = errors.New("wgpu: invalid texture unit")

	// ErrNoProgram is returned by Draw without a bound program.
	ErrNoProgram = errors.New("wgpu: no program bound")

	// ErrNoVertexArray is returned by Draw without a bound vertex array.
	ErrNoVertexArray = errors.New("wgpu: no vertex array bound")

	// ErrIncompleteFramebuffer is returned when drawing into a framebuffer
	// without a color attachment.
	ErrIncompleteFramebuffer = errors.New("wgpu: incomplete framebuffer")
)
