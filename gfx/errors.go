// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "errors"

var (
	// ErrContextLeased is recorded when cached state is changed while a
	// lease holds raw access to the backend.
	ErrContextLeased = errors.New("gfx: context is leased")

	// ErrNilBackend is returned by NewContext without a backend.
	ErrNilBackend = errors.New("gfx: nil backend")

	// ErrInvalidSize is returned for zero-sized textures and targets.
	ErrInvalidSize = errors.New("gfx: invalid size")
)

// Framebuffer completeness errors, one per cause.
var (
	ErrFramebufferIncompleteAttachment = errors.New("gfx: framebuffer incomplete attachment")
	ErrFramebufferMissingAttachment    = errors.New("gfx: framebuffer missing attachment")
	ErrFramebufferIncompleteDrawBuffer = errors.New("gfx: framebuffer incomplete draw buffer")
	ErrFramebufferIncompleteReadBuffer = errors.New("gfx: framebuffer incomplete read buffer")
	ErrFramebufferIncompleteDimensions = errors.New("gfx: framebuffer incomplete dimensions")
	ErrFramebufferUnsupported          = errors.New("gfx: framebuffer unsupported")
	ErrFramebufferOther                = errors.New("gfx: framebuffer incomplete")
)
