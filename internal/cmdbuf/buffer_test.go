package cmdbuf

import (
	"testing"

	"github.com/vireo-engine/rendercore/internal/gpu"
)

func TestWord0EncodesOpcodeAndData(t *testing.T) {
	w := word0(OpUseProgram, 0x123456)
	if Opcode(w>>opShift) != OpUseProgram {
		t.Fatalf("expected opcode %d, got %d", OpUseProgram, w>>opShift)
	}
	if w&opDataMask != 0x123456 {
		t.Fatalf("expected data 0x123456, got 0x%x", w&opDataMask)
	}
}

func TestDrawEncodesPrimitiveAndVertexCount(t *testing.T) {
	b := New(8)
	if err := b.Draw(PrimitiveTriangles, 7, 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	words := b.Words()
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if gpu.ResourceID(words[0]&opDataMask) != 7 {
		t.Fatalf("expected vertex array id 7 in word0 data, got %d", words[0]&opDataMask)
	}
	prim := Primitive((words[1] >> drawPrimitiveShift) & drawPrimitiveMask)
	if prim != PrimitiveTriangles {
		t.Fatalf("expected primitive Triangles, got %d", prim)
	}
	if words[1]&drawVertsMask != 300 {
		t.Fatalf("expected vertex count 300, got %d", words[1]&drawVertsMask)
	}
}

func TestBufferUploadEncodesHandleAndSize(t *testing.T) {
	b := New(8)
	h := gpu.Handle(0x4000) // aligned to 16
	if err := b.BufferUpload(3, h, 128); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w1 := b.Words()[1]
	size := (w1 >> xferSizeShift) & xferSizeMask
	handle := gpu.Handle((w1 & xferHandleMask) << gpu.AllocAlignShift)
	if size != 128 {
		t.Fatalf("expected size 128, got %d", size)
	}
	if handle != h {
		t.Fatalf("expected handle %d, got %d", h, handle)
	}
}

func TestBufferUploadRejectsUnalignedHandle(t *testing.T) {
	b := New(8)
	if err := b.BufferUpload(3, gpu.Handle(5), 16); err == nil {
		t.Fatalf("expected error for unaligned handle")
	}
}

func TestPushUniformEncodesKindAndLocation(t *testing.T) {
	b := New(8)
	if err := b.UniformInt(12, -7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w0 := b.Words()[0]
	data := w0 & opDataMask
	kind := UniformKind((data >> uniformKindShift) & uniformKindMask)
	loc := data & uniformLocMask
	if kind != UniformInt {
		t.Fatalf("expected kind Int, got %d", kind)
	}
	if loc != 12 {
		t.Fatalf("expected location 12, got %d", loc)
	}
	if int32(b.Words()[1]) != -7 {
		t.Fatalf("expected payload -7, got %d", int32(b.Words()[1]))
	}
}

func TestFenceOpEncodesOpAndID(t *testing.T) {
	b := New(8)
	if err := b.FenceWait(99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := b.Words()[0] & opDataMask
	op := FenceOp((data >> fenceOpShift) & 1)
	id := data & fenceIDMask
	if op != FenceOpWait {
		t.Fatalf("expected FenceOpWait, got %d", op)
	}
	if id != 99 {
		t.Fatalf("expected fence id 99, got %d", id)
	}
}

func TestTooLargeValuesRejectedAtRecordTime(t *testing.T) {
	b := New(8)
	if err := b.UseProgram(gpu.ResourceID(1) << 24); err == nil {
		t.Fatalf("expected too-large error for a 25-bit program id")
	}
	if err := b.BeginSubpass(1 << 24); err == nil {
		t.Fatalf("expected too-large error for a 25-bit subpass id")
	}
	if err := b.FenceSync(1 << 23); err == nil {
		t.Fatalf("expected too-large error for a 24-bit fence id")
	}
}
