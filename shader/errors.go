// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import "errors"

var (
	// ErrCompile reports a WGSL program that failed to compile.
	ErrCompile = errors.New("shader: compile failed")

	// ErrLink reports a program the backend failed to link.
	ErrLink = errors.New("shader: link failed")

	// ErrUniformNotFound reports a uniform the linked program does not have.
	ErrUniformNotFound = errors.New("shader: uniform not found")

	// ErrUniformType reports a handle requested with the wrong type.
	ErrUniformType = errors.New("shader: uniform type mismatch")

	// ErrUnknownProgram reports a name that is not in the catalog.
	ErrUnknownProgram = errors.New("shader: unknown program")
)
