// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfxtest provides an in-memory gfx.Backend that records calls.
package gfxtest

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
)

// ErrInjected is the default error returned by a method set to fail.
var ErrInjected = errors.New("gfxtest: injected failure")

// Call is one recorded backend call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// State is the backend state as applied by the context.
type State struct {
	Blend         bool
	BlendFunc     gfx.BlendFunc
	BlendColor    gfx.Color
	ColorMask     gfx.ColorMask
	DepthTest     bool
	DepthMask     bool
	DepthFunc     gputypes.CompareFunction
	DepthRange    gfx.DepthRange
	StencilTest   bool
	StencilFunc   gfx.StencilFunc
	StencilMask   uint8
	StencilOp     gfx.StencilOp
	Viewport      gfx.Viewport
	ActiveTexture uint8
	Textures      [gfx.TextureUnits]gfx.TextureID
	Framebuffer   gfx.FramebufferID
	VertexArray   gfx.VertexArrayID
	Program       gfx.ProgramID
}

// Draw is a recorded draw with the state it ran under.
type Draw struct {
	State
	Mode     gputypes.PrimitiveTopology
	First    uint32
	Count    uint32
	Uniforms []byte
}

// Clear is a recorded clear.
type Clear struct {
	State
	Color   *gfx.Color
	Depth   *float32
	Stencil *int32
}

// Texture is a texture held by the recorder.
type Texture struct {
	Desc gfx.TextureDescriptor
	Data []byte
}

// Recorder is a gfx.Backend that keeps every call in memory.
type Recorder struct {
	Calls  []Call
	Draws  []Draw
	Clears []Clear

	// State is the state last applied.
	State State

	Programs     map[gfx.ProgramID]*gfx.ProgramDescriptor
	Textures     map[gfx.TextureID]*Texture
	VertexArrays map[gfx.VertexArrayID]*gfx.VertexArrayDescriptor
	Framebuffers map[gfx.FramebufferID]gfx.TextureID

	// Status is returned by FramebufferStatus.
	Status gfx.FramebufferStatus

	uniforms map[gfx.ProgramID][]byte
	failures map[string]error
	nextID   uint32
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		Programs:     make(map[gfx.ProgramID]*gfx.ProgramDescriptor),
		Textures:     make(map[gfx.TextureID]*Texture),
		VertexArrays: make(map[gfx.VertexArrayID]*gfx.VertexArrayDescriptor),
		Framebuffers: make(map[gfx.FramebufferID]gfx.TextureID),
		uniforms:     make(map[gfx.ProgramID][]byte),
		failures:     make(map[string]error),
	}
}

// Fail makes the named method return err, or ErrInjected when err is nil.
func (r *Recorder) Fail(method string, err error) {
	if err == nil {
		err = ErrInjected
	}
	r.failures[method] = err
}

// Succeed removes a failure set by Fail.
func (r *Recorder) Succeed(method string) {
	delete(r.failures, method)
}

// Count returns how many calls of the named method were recorded.
func (r *Recorder) Count(method string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == method {
			n++
		}
	}
	return n
}

// Names returns the recorded method names in order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Name
	}
	return names
}

// Reset forgets recorded calls, draws and clears. Resources and state stay.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
	r.Clears = nil
}

func (r *Recorder) call(name string, args ...any) error {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	return r.failures[name]
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// Setters leave State unchanged when they fail.

// SetBlend implements gfx.Backend.
func (r *Recorder) SetBlend(v bool) error {
	if err := r.call("SetBlend", v); err != nil {
		return err
	}
	r.State.Blend = v
	return nil
}

// SetBlendFunc implements gfx.Backend.
func (r *Recorder) SetBlendFunc(v gfx.BlendFunc) error {
	if err := r.call("SetBlendFunc", v); err != nil {
		return err
	}
	r.State.BlendFunc = v
	return nil
}

// SetBlendColor implements gfx.Backend.
func (r *Recorder) SetBlendColor(v gfx.Color) error {
	if err := r.call("SetBlendColor", v); err != nil {
		return err
	}
	r.State.BlendColor = v
	return nil
}

// SetColorMask implements gfx.Backend.
func (r *Recorder) SetColorMask(v gfx.ColorMask) error {
	if err := r.call("SetColorMask", v); err != nil {
		return err
	}
	r.State.ColorMask = v
	return nil
}

// SetDepthTest implements gfx.Backend.
func (r *Recorder) SetDepthTest(v bool) error {
	if err := r.call("SetDepthTest", v); err != nil {
		return err
	}
	r.State.DepthTest = v
	return nil
}

// SetDepthMask implements gfx.Backend.
func (r *Recorder) SetDepthMask(v bool) error {
	if err := r.call("SetDepthMask", v); err != nil {
		return err
	}
	r.State.DepthMask = v
	return nil
}

// SetDepthFunc implements gfx.Backend.
func (r *Recorder) SetDepthFunc(v gputypes.CompareFunction) error {
	if err := r.call("SetDepthFunc", v); err != nil {
		return err
	}
	r.State.DepthFunc = v
	return nil
}

// SetDepthRange implements gfx.Backend.
func (r *Recorder) SetDepthRange(v gfx.DepthRange) error {
	if err := r.call("SetDepthRange", v); err != nil {
		return err
	}
	r.State.DepthRange = v
	return nil
}

// SetStencilTest implements gfx.Backend.
func (r *Recorder) SetStencilTest(v bool) error {
	if err := r.call("SetStencilTest", v); err != nil {
		return err
	}
	r.State.StencilTest = v
	return nil
}

// SetStencilFunc implements gfx.Backend.
func (r *Recorder) SetStencilFunc(v gfx.StencilFunc) error {
	if err := r.call("SetStencilFunc", v); err != nil {
		return err
	}
	r.State.StencilFunc = v
	return nil
}

// SetStencilMask implements gfx.Backend.
func (r *Recorder) SetStencilMask(v uint8) error {
	if err := r.call("SetStencilMask", v); err != nil {
		return err
	}
	r.State.StencilMask = v
	return nil
}

// SetStencilOp implements gfx.Backend.
func (r *Recorder) SetStencilOp(v gfx.StencilOp) error {
	if err := r.call("SetStencilOp", v); err != nil {
		return err
	}
	r.State.StencilOp = v
	return nil
}

// SetViewport implements gfx.Backend.
func (r *Recorder) SetViewport(v gfx.Viewport) error {
	if err := r.call("SetViewport", v); err != nil {
		return err
	}
	r.State.Viewport = v
	return nil
}

// SetActiveTexture implements gfx.Backend.
func (r *Recorder) SetActiveTexture(unit uint8) error {
	if err := r.call("SetActiveTexture", unit); err != nil {
		return err
	}
	r.State.ActiveTexture = unit
	return nil
}

// BindTexture implements gfx.Backend.
func (r *Recorder) BindTexture(unit uint8, id gfx.TextureID) error {
	if int(unit) >= len(r.State.Textures) {
		return fmt.Errorf("gfxtest: texture unit %d out of range", unit)
	}
	if err := r.call("BindTexture", unit, id); err != nil {
		return err
	}
	r.State.Textures[unit] = id
	return nil
}

// BindFramebuffer implements gfx.Backend.
func (r *Recorder) BindFramebuffer(id gfx.FramebufferID) error {
	if err := r.call("BindFramebuffer", id); err != nil {
		return err
	}
	r.State.Framebuffer = id
	return nil
}

// BindVertexArray implements gfx.Backend.
func (r *Recorder) BindVertexArray(id gfx.VertexArrayID) error {
	if err := r.call("BindVertexArray", id); err != nil {
		return err
	}
	r.State.VertexArray = id
	return nil
}

// UseProgram implements gfx.Backend.
func (r *Recorder) UseProgram(id gfx.ProgramID) error {
	if err := r.call("UseProgram", id); err != nil {
		return err
	}
	r.State.Program = id
	return nil
}

// Clear implements gfx.Backend.
func (r *Recorder) Clear(v gfx.ClearValues) error {
	c := Clear{State: r.State}
	if v.Color != nil {
		col := *v.Color
		c.Color = &col
	}
	if v.Depth != nil {
		d := *v.Depth
		c.Depth = &d
	}
	if v.Stencil != nil {
		s := *v.Stencil
		c.Stencil = &s
	}
	r.Clears = append(r.Clears, c)
	return r.call("Clear", v)
}

// SetUniforms implements gfx.Backend.
func (r *Recorder) SetUniforms(id gfx.ProgramID, block []byte) error {
	if _, ok := r.Programs[id]; !ok {
		return fmt.Errorf("gfxtest: unknown program %d", id)
	}
	r.uniforms[id] = slices.Clone(block)
	return r.call("SetUniforms", id, len(block))
}

// Draw implements gfx.Backend.
func (r *Recorder) Draw(mode gputypes.PrimitiveTopology, first, count uint32) error {
	r.Draws = append(r.Draws, Draw{
		State:    r.State,
		Mode:     mode,
		First:    first,
		Count:    count,
		Uniforms: r.uniforms[r.State.Program],
	})
	return r.call("Draw", mode, first, count)
}

// Flush implements gfx.Backend.
func (r *Recorder) Flush() error {
	return r.call("Flush")
}

// CreateProgram implements gfx.Backend.
func (r *Recorder) CreateProgram(desc *gfx.ProgramDescriptor) (gfx.ProgramID, error) {
	if err := r.call("CreateProgram", desc.Label); err != nil {
		return 0, err
	}
	id := gfx.ProgramID(r.id())
	d := *desc
	r.Programs[id] = &d
	return id, nil
}

// UniformLocation implements gfx.Backend.
func (r *Recorder) UniformLocation(id gfx.ProgramID, name string) int32 {
	p, ok := r.Programs[id]
	if !ok {
		return -1
	}
	for i, u := range p.Uniforms {
		if u.Name == name {
			return int32(i) //nolint:gosec // uniform counts are tiny
		}
	}
	return -1
}

// CreateVertexArray implements gfx.Backend.
func (r *Recorder) CreateVertexArray(desc *gfx.VertexArrayDescriptor) (gfx.VertexArrayID, error) {
	if err := r.call("CreateVertexArray", desc.Label); err != nil {
		return 0, err
	}
	id := gfx.VertexArrayID(r.id())
	d := *desc
	d.Data = slices.Clone(desc.Data)
	r.VertexArrays[id] = &d
	return id, nil
}

// CreateTexture implements gfx.Backend.
func (r *Recorder) CreateTexture(desc *gfx.TextureDescriptor) (gfx.TextureID, error) {
	if err := r.call("CreateTexture", desc.Label, desc.Width, desc.Height); err != nil {
		return 0, err
	}
	id := gfx.TextureID(r.id())
	r.Textures[id] = &Texture{Desc: *desc}
	return id, nil
}

// UploadTexture implements gfx.Backend.
func (r *Recorder) UploadTexture(id gfx.TextureID, data []byte) error {
	t, ok := r.Textures[id]
	if !ok {
		return fmt.Errorf("gfxtest: unknown texture %d", id)
	}
	if err := r.call("UploadTexture", id, len(data)); err != nil {
		return err
	}
	t.Data = slices.Clone(data)
	return nil
}

// CreateFramebuffer implements gfx.Backend.
func (r *Recorder) CreateFramebuffer() (gfx.FramebufferID, error) {
	if err := r.call("CreateFramebuffer"); err != nil {
		return 0, err
	}
	id := gfx.FramebufferID(r.id())
	r.Framebuffers[id] = 0
	return id, nil
}

// AttachColorTexture implements gfx.Backend.
func (r *Recorder) AttachColorTexture(fb gfx.FramebufferID, tex gfx.TextureID) error {
	if _, ok := r.Framebuffers[fb]; !ok {
		return fmt.Errorf("gfxtest: unknown framebuffer %d", fb)
	}
	if err := r.call("AttachColorTexture", fb, tex); err != nil {
		return err
	}
	r.Framebuffers[fb] = tex
	return nil
}

// FramebufferStatus implements gfx.Backend.
func (r *Recorder) FramebufferStatus(fb gfx.FramebufferID) gfx.FramebufferStatus {
	_ = r.call("FramebufferStatus", fb)
	if tex, ok := r.Framebuffers[fb]; ok && tex == 0 && r.Status == gfx.FramebufferComplete {
		return gfx.FramebufferMissingAttachment
	}
	return r.Status
}

// DeleteProgram implements gfx.Backend.
func (r *Recorder) DeleteProgram(id gfx.ProgramID) {
	_ = r.call("DeleteProgram", id)
	delete(r.Programs, id)
	delete(r.uniforms, id)
}

// DeleteVertexArray implements gfx.Backend.
func (r *Recorder) DeleteVertexArray(id gfx.VertexArrayID) {
	_ = r.call("DeleteVertexArray", id)
	delete(r.VertexArrays, id)
}

// DeleteTexture implements gfx.Backend.
func (r *Recorder) DeleteTexture(id gfx.TextureID) {
	_ = r.call("DeleteTexture", id)
	delete(r.Textures, id)
}

// DeleteFramebuffer implements gfx.Backend.
func (r *Recorder) DeleteFramebuffer(id gfx.FramebufferID) {
	_ = r.call("DeleteFramebuffer", id)
	delete(r.Framebuffers, id)
}

var _ gfx.Backend = (*Recorder)(nil)
