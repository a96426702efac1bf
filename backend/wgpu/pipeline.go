// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/twmb/murmur3"

	"github.com/gogpu/mapgpu/gfx"
)

// pipelineKey is the state WebGPU bakes into a render pipeline. Fields
// that have no effect are normalized away so that equivalent states share
// a pipeline.
type pipelineKey struct {
	program  gfx.ProgramID
	topology gputypes.PrimitiveTopology
	format   gputypes.TextureFormat

	blend     bool
	blendFunc gfx.BlendFunc
	writeMask gputypes.ColorWriteMask

	depthWrite   bool
	depthCompare gputypes.CompareFunction

	stencilCompare   gputypes.CompareFunction
	stencilReadMask  uint8
	stencilWriteMask uint8
	stencilOp        gfx.StencilOp
}

// keyFor derives the pipeline key of a draw from the current state.
func keyFor(st *state, topology gputypes.PrimitiveTopology, format gputypes.TextureFormat) pipelineKey {
	k := pipelineKey{
		program:      st.program,
		topology:     topology,
		format:       format,
		writeMask:    st.colorMask.WriteMask(),
		depthCompare: gputypes.CompareFunctionAlways,
		stencilOp: gfx.StencilOp{
			Fail:      hal.StencilOperationKeep,
			DepthFail: hal.StencilOperationKeep,
			Pass:      hal.StencilOperationKeep,
		},
		stencilCompare: gputypes.CompareFunctionAlways,
	}
	if st.blend {
		k.blend = true
		k.blendFunc = st.blendFunc
	}
	// A disabled depth test also disables depth writes.
	if st.depthTest {
		k.depthCompare = st.depthFunc
		k.depthWrite = st.depthMask
	}
	if st.stencilTest {
		k.stencilCompare = st.stencilFunc.Compare
		k.stencilReadMask = st.stencilFunc.Mask
		k.stencilWriteMask = st.stencilMask
		k.stencilOp = st.stencilOp
	}
	return k
}

// hash returns the murmur3 hash of the key's fields.
func (k *pipelineKey) hash() uint64 {
	var buf [64]byte
	b := buf[:0]
	b = binary.LittleEndian.AppendUint32(b, uint32(k.program))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.topology))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.format))
	b = append(b, boolByte(k.blend))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.blendFunc.Src))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.blendFunc.Dst))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.writeMask))
	b = append(b, boolByte(k.depthWrite))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.depthCompare))
	b = binary.LittleEndian.AppendUint32(b, uint32(k.stencilCompare))
	b = append(b, k.stencilReadMask, k.stencilWriteMask,
		byte(k.stencilOp.Fail), byte(k.stencilOp.DepthFail), byte(k.stencilOp.Pass))
	h := murmur3.New64()
	_, _ = h.Write(b)
	return h.Sum64()
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

type cachedPipeline struct {
	key      pipelineKey
	pipeline hal.RenderPipeline
}

// pipelineCache holds render pipelines by key hash. Keys that collide
// share a bucket.
//
// It is safe for concurrent use: lookups take a read lock and creation
// re-checks under the write lock.
type pipelineCache struct {
	mu      sync.RWMutex
	buckets map[uint64][]cachedPipeline

	hits   uint64
	misses uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{buckets: make(map[uint64][]cachedPipeline)}
}

func (c *pipelineCache) find(h uint64, k pipelineKey) hal.RenderPipeline {
	for _, e := range c.buckets[h] {
		if e.key == k {
			return e.pipeline
		}
	}
	return nil
}

// getOrCreate returns the pipeline of k, creating it for p on a miss.
func (c *pipelineCache) getOrCreate(device hal.Device, k pipelineKey, p *program) (hal.RenderPipeline, error) {
	h := k.hash()

	c.mu.RLock()
	if pl := c.find(h, k); pl != nil {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return pl, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if pl := c.find(h, k); pl != nil {
		atomic.AddUint64(&c.hits, 1)
		return pl, nil
	}
	pl, err := device.CreateRenderPipeline(pipelineDescriptor(k, p))
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline %q: %w", p.label, err)
	}
	c.buckets[h] = append(c.buckets[h], cachedPipeline{key: k, pipeline: pl})
	atomic.AddUint64(&c.misses, 1)
	return pl, nil
}

// evictProgram destroys every pipeline built from program id.
func (c *pipelineCache) evictProgram(device hal.Device, id gfx.ProgramID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h, bucket := range c.buckets {
		kept := bucket[:0]
		for _, e := range bucket {
			if e.key.program == id {
				device.DestroyRenderPipeline(e.pipeline)
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(c.buckets, h)
		} else {
			c.buckets[h] = kept
		}
	}
}

func (c *pipelineCache) destroy(device hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, bucket := range c.buckets {
		for _, e := range bucket {
			device.DestroyRenderPipeline(e.pipeline)
		}
	}
	clear(c.buckets)
}

// Len returns the number of cached pipelines.
func (c *pipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

// Stats returns the hit and miss counts.
func (c *pipelineCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

func pipelineDescriptor(k pipelineKey, p *program) *hal.RenderPipelineDescriptor {
	face := hal.StencilFaceState{
		Compare:     k.stencilCompare,
		FailOp:      k.stencilOp.Fail,
		DepthFailOp: k.stencilOp.DepthFail,
		PassOp:      k.stencilOp.Pass,
	}
	var blend *gputypes.BlendState
	if k.blend {
		c := gputypes.BlendComponent{
			SrcFactor: k.blendFunc.Src,
			DstFactor: k.blendFunc.Dst,
			Operation: gputypes.BlendOperationAdd,
		}
		blend = &gputypes.BlendState{Color: c, Alpha: c}
	}
	return &hal.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: vertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{p.vertexLayout},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  k.topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthStencilFormat,
			DepthWriteEnabled: k.depthWrite,
			DepthCompare:      k.depthCompare,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   uint32(k.stencilReadMask),
			StencilWriteMask:  uint32(k.stencilWriteMask),
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    k.format,
				Blend:     blend,
				WriteMask: k.writeMask,
			}},
		},
	}
}
