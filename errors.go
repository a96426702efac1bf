package mapgpu

import "errors"

var (
	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("mapgpu: painter closed")

	// ErrNoRenderData is returned when Render is called without a snapshot.
	ErrNoRenderData = errors.New("mapgpu: nil render data")

	// ErrNoView is returned when the snapshot has no ViewState.
	ErrNoView = errors.New("mapgpu: render data without view")

	// ErrMissingBucket is returned for a tile layer item without a tile or
	// bucket.
	ErrMissingBucket = errors.New("mapgpu: tile layer item without tile or bucket")

	// ErrUnknownLayer is returned for a layer type the painter cannot draw.
	ErrUnknownLayer = errors.New("mapgpu: unknown layer type")
)
