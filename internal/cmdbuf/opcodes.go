// Package cmdbuf implements the render core's append-only command buffer
// (spec component C4): a compact bit-packed instruction stream recorded
// off-thread and executed linearly on the GL thread. The encoding is
// ported bit-for-bit from original_source/Hamil's gx/commandbuffer.cpp
// (OpShift/OpDataMask and friends), generalized from Hamil's Vulkan-free
// OpenGL-shaped opcodes to the same shape described in this engine's
// wire contract.
package cmdbuf

import "fmt"

// Opcode identifies one command-buffer instruction.
type Opcode uint8

const (
	OpBeginRenderPass Opcode = iota
	OpBeginSubpass
	OpUseProgram
	OpDraw
	OpDrawIndexed
	OpDrawBaseVertex
	OpBufferUpload
	OpPushUniform
	OpFence
	OpEnd
)

// Primitive enumerates the draw topologies a Draw*/DrawIndexed command
// can request.
type Primitive uint8

const (
	PrimitivePoints Primitive = iota
	PrimitiveLines
	PrimitiveLineLoop
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleFan
	PrimitiveTriangleStrip
)

// UniformKind tags the payload type of a PushUniform command.
type UniformKind uint8

const (
	UniformInt UniformKind = iota
	UniformFloat
	UniformSampler
	UniformVec4
	UniformMat4x4
)

// FenceOp distinguishes the two fence-opcode variants packed into the
// same word.
type FenceOp uint8

const (
	FenceOpSync FenceOp = iota
	FenceOpWait
)

// Bit widths and shifts for word0 ([opcode:8][data:24]).
const (
	opShift   = 24
	opDataMask = (1 << opShift) - 1
)

// Draw-command word1 layout: word1[26:24]=primitive, word1[23:0]=vertex
// count; bits 31:27 are unused.
const (
	drawPrimitiveShift = 24
	drawPrimitiveMask  = 0x7
	drawVertsMask      = (1 << 24) - 1
)

// Buffer-upload word1 layout: [size:12][handle>>4:20].
const (
	xferSizeShift  = 20
	xferSizeMask   = 0xFFF
	xferHandleMask = (1 << 20) - 1
)

// Push-uniform word0-data layout: [kind:3][location:21].
const (
	uniformKindShift = 21
	uniformKindMask  = 0x7
	uniformLocMask   = (1 << 21) - 1
)

// Fence word0-data layout: [op:1][fence id:23].
const (
	fenceOpShift    = 23
	fenceIDMask     = (1 << 23) - 1
)

// TooLargeError reports a value that does not fit the encoded bit width
// for its field, raised at record time as spec requires.
type TooLargeError struct {
	Field string
	Value uint64
	Bits  int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("cmdbuf: %s value %d does not fit in %d bits", e.Field, e.Value, e.Bits)
}

func checkWidth(field string, value uint64, bits int) error {
	if value>>uint(bits) != 0 {
		return &TooLargeError{Field: field, Value: value, Bits: bits}
	}
	return nil
}
