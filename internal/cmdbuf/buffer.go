package cmdbuf

import (
	"math"

	"github.com/vireo-engine/rendercore/internal/gpu"
)

// word0 packs [opcode:8][data:24]; commands needing more than 24 bits of
// payload follow up with one or more extra words.
func word0(op Opcode, data uint32) uint32 {
	return uint32(op)<<opShift | (data & opDataMask)
}

// CommandBuffer is an append-only vector of 32-bit words recorded by a
// worker thread and later executed linearly against a bound
// gpu.ResourcePool and gpu.MemoryPool on the GL thread.
type CommandBuffer struct {
	words []uint32

	// lastIndexedArray tracks the vertex array id of the most recent
	// DrawIndexed/DrawBaseVertex so execute() knows when to emit the
	// implicit "end indexed array" on an array change or at End.
	lastIndexedArray gpu.ResourceID
	hasIndexedArray  bool
}

// New returns an empty command buffer with capacity for initialWords
// words preallocated.
func New(initialWords int) *CommandBuffer {
	return &CommandBuffer{words: make([]uint32, 0, initialWords)}
}

func (b *CommandBuffer) append(words ...uint32) {
	b.words = append(b.words, words...)
}

// BeginRenderPass records a render pass start.
func (b *CommandBuffer) BeginRenderPass(pass gpu.ResourceID) error {
	if err := checkWidth("renderpass id", uint64(pass), 24); err != nil {
		return err
	}
	b.append(word0(OpBeginRenderPass, uint32(pass)))
	return nil
}

// BeginSubpass records a subpass advance within the current pass.
func (b *CommandBuffer) BeginSubpass(id uint32) error {
	if err := checkWidth("subpass id", uint64(id), 24); err != nil {
		return err
	}
	b.append(word0(OpBeginSubpass, id))
	return nil
}

// UseProgram records binding a shader program.
func (b *CommandBuffer) UseProgram(prog gpu.ResourceID) error {
	if err := checkWidth("program id", uint64(prog), 24); err != nil {
		return err
	}
	b.append(word0(OpUseProgram, uint32(prog)))
	return nil
}

func (b *CommandBuffer) appendDraw(op Opcode, prim Primitive, array gpu.ResourceID, numVerts uint32) error {
	if err := checkWidth("vertex array id", uint64(array), 24); err != nil {
		return err
	}
	if err := checkWidth("vertex count", uint64(numVerts), 24); err != nil {
		return err
	}
	w1 := uint32(prim)<<drawPrimitiveShift | (numVerts & drawVertsMask)
	b.append(word0(op, uint32(array)), w1)
	return nil
}

// Draw records a non-indexed draw call.
func (b *CommandBuffer) Draw(prim Primitive, vertexArray gpu.ResourceID, numVerts uint32) error {
	return b.appendDraw(OpDraw, prim, vertexArray, numVerts)
}

// DrawIndexed records an indexed draw call.
func (b *CommandBuffer) DrawIndexed(prim Primitive, indexedVertexArray gpu.ResourceID, numIndices uint32) error {
	return b.appendDraw(OpDrawIndexed, prim, indexedVertexArray, numIndices)
}

// DrawBaseVertex records an indexed draw with a base-vertex/offset pair
// appended as two extra words, matching Hamil's drawBaseVertex.
func (b *CommandBuffer) DrawBaseVertex(prim Primitive, indexedVertexArray gpu.ResourceID, num, base, offset uint32) error {
	if err := b.appendDraw(OpDrawBaseVertex, prim, indexedVertexArray, num); err != nil {
		return err
	}
	b.append(base, offset)
	return nil
}

// BufferUpload records a copy from a MemoryPool handle into a GPU
// buffer resource.
func (b *CommandBuffer) BufferUpload(buf gpu.ResourceID, h gpu.Handle, size uint32) error {
	if err := checkWidth("buffer id", uint64(buf), 24); err != nil {
		return err
	}
	if h%gpu.AllocAlign != 0 {
		return &TooLargeError{Field: "memory pool handle alignment", Value: uint64(h), Bits: gpu.AllocAlignShift}
	}
	shifted := uint64(h) >> gpu.AllocAlignShift
	if err := checkWidth("memory pool handle", shifted, 20); err != nil {
		return err
	}
	if err := checkWidth("transfer size", uint64(size), 12); err != nil {
		return err
	}
	w1 := (size&xferSizeMask)<<xferSizeShift | uint32(shifted)&xferHandleMask
	b.append(word0(OpBufferUpload, uint32(buf)), w1)
	return nil
}

func (b *CommandBuffer) pushUniform(kind UniformKind, location uint32, payload uint32) error {
	if err := checkWidth("uniform location", uint64(location), 21); err != nil {
		return err
	}
	data := uint32(kind)<<uniformKindShift | (location & uniformLocMask)
	b.append(word0(OpPushUniform, data), payload)
	return nil
}

// UniformInt records an integer uniform push.
func (b *CommandBuffer) UniformInt(location uint32, value int32) error {
	return b.pushUniform(UniformInt, location, uint32(value))
}

// UniformFloat records a float uniform push.
func (b *CommandBuffer) UniformFloat(location uint32, value float32) error {
	return b.pushUniform(UniformFloat, location, math.Float32bits(value))
}

// UniformSampler records a sampler-unit uniform push.
func (b *CommandBuffer) UniformSampler(location uint32, samplerUnit uint32) error {
	return b.pushUniform(UniformSampler, location, samplerUnit)
}

// UniformVec4 records a vec4 uniform push sourced from a MemoryPool
// handle.
func (b *CommandBuffer) UniformVec4(location uint32, h gpu.Handle) error {
	return b.pushUniform(UniformVec4, location, uint32(h))
}

// UniformMat4x4 records a mat4 uniform push sourced from a MemoryPool
// handle.
func (b *CommandBuffer) UniformMat4x4(location uint32, h gpu.Handle) error {
	return b.pushUniform(UniformMat4x4, location, uint32(h))
}

func (b *CommandBuffer) fenceCommand(op FenceOp, fenceID uint32) error {
	if err := checkWidth("fence id", uint64(fenceID), 23); err != nil {
		return err
	}
	data := uint32(op)<<fenceOpShift | (fenceID & fenceIDMask)
	b.append(word0(OpFence, data))
	return nil
}

// FenceSync records marking a fence on the GPU timeline.
func (b *CommandBuffer) FenceSync(fenceID uint32) error {
	return b.fenceCommand(FenceOpSync, fenceID)
}

// FenceWait records blocking the command stream on a fence.
func (b *CommandBuffer) FenceWait(fenceID uint32) error {
	return b.fenceCommand(FenceOpWait, fenceID)
}

// End appends the terminal command. Every buffer must end with exactly
// one End before Execute is called.
func (b *CommandBuffer) End() {
	b.append(word0(OpEnd, 0))
}

// Reset clears the buffer for reuse, keeping its backing storage.
func (b *CommandBuffer) Reset() {
	b.words = b.words[:0]
	b.hasIndexedArray = false
}

// Words exposes the raw recorded stream, primarily for tests.
func (b *CommandBuffer) Words() []uint32 {
	return b.words
}
