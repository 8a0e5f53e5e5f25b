package cmdbuf

import (
	"fmt"
	"math"

	"github.com/vireo-engine/rendercore/internal/corelog"
	"github.com/vireo-engine/rendercore/internal/gpu"
)

func floatFromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// Executor performs the actual GPU work for each decoded opcode. The
// command buffer itself only knows bit layouts and resource ids; all
// backend-specific calls (OpenGL, in this engine's case) live behind
// this interface so Execute can be unit tested against a fake.
type Executor interface {
	BeginRenderPass(pass gpu.ResourceID)
	BeginSubpass(id uint32)
	UseProgram(prog gpu.ResourceID)
	Draw(prim Primitive, vertexArray gpu.ResourceID, offset, numVerts uint32)
	DrawIndexed(prim Primitive, indexedArray gpu.ResourceID, offset, numIndices uint32)
	DrawBaseVertex(prim Primitive, indexedArray gpu.ResourceID, base, offset, num uint32)
	EndIndexedArray(indexedArray gpu.ResourceID)
	UploadBuffer(buf gpu.ResourceID, data []byte)
	UniformInt(location uint32, value int32)
	UniformFloat(location uint32, value float32)
	UniformSampler(location uint32, unit uint32)
	UniformVec4(location uint32, data []byte)
	UniformMat4x4(location uint32, data []byte)

	// FenceSync/FenceWait resolve the wire fence id (the low 23 bits
	// encoded by CommandBuffer.FenceSync/FenceWait) against whatever
	// registry the executor's owner keeps; the command buffer itself
	// never holds a *fence.Fence; too big to fit the generation-checked
	// gpu.ResourceID this stream's opcodes all otherwise use in 23 bits.
	FenceSync(id uint32)
	FenceWait(id uint32)
}

// Execute runs the buffer linearly against pool/mem, dispatching each
// decoded command to exec. The last command must be OpEnd; an implicit
// "end indexed array" fires on any vertex-array change or at End,
// matching the teacher source's m_last_draw bookkeeping.
func (b *CommandBuffer) Execute(pool *gpu.ResourcePool, mem *gpu.MemoryPool, exec Executor) error {
	if len(b.words) == 0 {
		return nil
	}
	if Opcode(b.words[len(b.words)-1]>>opShift) != OpEnd {
		return fmt.Errorf("%w: command buffer does not end with End", corelog.ErrProgrammer)
	}

	i := 0
	for i < len(b.words) {
		w := b.words[i]
		op := Opcode(w >> opShift)
		data := w & opDataMask

		switch op {
		case OpBeginRenderPass:
			exec.BeginRenderPass(gpu.ResourceID(data))
			i++

		case OpBeginSubpass:
			exec.BeginSubpass(data)
			i++

		case OpUseProgram:
			exec.UseProgram(gpu.ResourceID(data))
			i++

		case OpDraw, OpDrawIndexed:
			w1 := b.words[i+1]
			prim := Primitive((w1 >> drawPrimitiveShift) & drawPrimitiveMask)
			numVerts := w1 & drawVertsMask
			array := gpu.ResourceID(data)

			if op == OpDrawIndexed {
				b.maybeEndIndexed(array, exec)
				exec.DrawIndexed(prim, array, 0, numVerts)
				b.lastIndexedArray = array
				b.hasIndexedArray = true
			} else {
				b.maybeEndIndexed(gpu.Invalid, exec)
				exec.Draw(prim, array, 0, numVerts)
			}
			i += 2

		case OpDrawBaseVertex:
			w1 := b.words[i+1]
			prim := Primitive((w1 >> drawPrimitiveShift) & drawPrimitiveMask)
			num := w1 & drawVertsMask
			array := gpu.ResourceID(data)
			base := b.words[i+2]
			offset := b.words[i+3]

			b.maybeEndIndexed(array, exec)
			exec.DrawBaseVertex(prim, array, base, offset, num)
			b.lastIndexedArray = array
			b.hasIndexedArray = true
			i += 4

		case OpBufferUpload:
			w1 := b.words[i+1]
			size := (w1 >> xferSizeShift) & xferSizeMask
			handle := gpu.Handle((w1 & xferHandleMask) << gpu.AllocAlignShift)
			buf := gpu.ResourceID(data)
			exec.UploadBuffer(buf, mem.Bytes(handle, int(size)))
			i += 2

		case OpPushUniform:
			kind := UniformKind((data >> uniformKindShift) & uniformKindMask)
			location := data & uniformLocMask
			payload := b.words[i+1]
			dispatchUniform(exec, mem, kind, location, payload)
			i += 2

		case OpFence:
			fenceOp := FenceOp((data >> fenceOpShift) & 1)
			fenceID := data & fenceIDMask
			switch fenceOp {
			case FenceOpSync:
				exec.FenceSync(fenceID)
			case FenceOpWait:
				exec.FenceWait(fenceID)
			}
			i++

		case OpEnd:
			b.maybeEndIndexed(gpu.Invalid, exec)
			return nil

		default:
			return fmt.Errorf("%w: unknown opcode %d", corelog.ErrProgrammer, op)
		}
	}
	return nil
}

func (b *CommandBuffer) maybeEndIndexed(next gpu.ResourceID, exec Executor) {
	if !b.hasIndexedArray {
		return
	}
	if b.lastIndexedArray == next {
		return
	}
	exec.EndIndexedArray(b.lastIndexedArray)
	b.hasIndexedArray = false
}

func dispatchUniform(exec Executor, mem *gpu.MemoryPool, kind UniformKind, location, payload uint32) {
	switch kind {
	case UniformInt:
		exec.UniformInt(location, int32(payload))
	case UniformFloat:
		exec.UniformFloat(location, floatFromBits(payload))
	case UniformSampler:
		exec.UniformSampler(location, payload)
	case UniformVec4:
		exec.UniformVec4(location, mem.Bytes(gpu.Handle(payload), 16))
	case UniformMat4x4:
		exec.UniformMat4x4(location, mem.Bytes(gpu.Handle(payload), 64))
	}
}
