package cmdbuf

import (
	"testing"

	"github.com/vireo-engine/rendercore/internal/gpu"
)

type fakeExecutor struct {
	calls      []string
	endedArray []gpu.ResourceID
}

func (f *fakeExecutor) BeginRenderPass(pass gpu.ResourceID)  { f.calls = append(f.calls, "begin-pass") }
func (f *fakeExecutor) BeginSubpass(id uint32)                { f.calls = append(f.calls, "begin-subpass") }
func (f *fakeExecutor) UseProgram(prog gpu.ResourceID)        { f.calls = append(f.calls, "use-program") }
func (f *fakeExecutor) Draw(prim Primitive, vertexArray gpu.ResourceID, offset, numVerts uint32) {
	f.calls = append(f.calls, "draw")
}
func (f *fakeExecutor) DrawIndexed(prim Primitive, indexedArray gpu.ResourceID, offset, numIndices uint32) {
	f.calls = append(f.calls, "draw-indexed")
}
func (f *fakeExecutor) DrawBaseVertex(prim Primitive, indexedArray gpu.ResourceID, base, offset, num uint32) {
	f.calls = append(f.calls, "draw-base-vertex")
}
func (f *fakeExecutor) EndIndexedArray(indexedArray gpu.ResourceID) {
	f.calls = append(f.calls, "end-indexed")
	f.endedArray = append(f.endedArray, indexedArray)
}
func (f *fakeExecutor) UploadBuffer(buf gpu.ResourceID, data []byte) { f.calls = append(f.calls, "upload") }
func (f *fakeExecutor) UniformInt(location uint32, value int32)      { f.calls = append(f.calls, "uniform-int") }
func (f *fakeExecutor) UniformFloat(location uint32, value float32)  { f.calls = append(f.calls, "uniform-float") }
func (f *fakeExecutor) UniformSampler(location uint32, unit uint32)  { f.calls = append(f.calls, "uniform-sampler") }
func (f *fakeExecutor) UniformVec4(location uint32, data []byte)     { f.calls = append(f.calls, "uniform-vec4") }
func (f *fakeExecutor) UniformMat4x4(location uint32, data []byte)   { f.calls = append(f.calls, "uniform-mat4") }
func (f *fakeExecutor) FenceSync(id uint32)                          { f.calls = append(f.calls, "fence-sync") }
func (f *fakeExecutor) FenceWait(id uint32)                          { f.calls = append(f.calls, "fence-wait") }

func TestExecuteRequiresTrailingEnd(t *testing.T) {
	b := New(4)
	if err := b.UseProgram(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pool := gpu.NewResourcePool()
	mem := gpu.NewMemoryPool(64)
	if err := b.Execute(pool, mem, &fakeExecutor{}); err == nil {
		t.Fatalf("expected error executing a buffer without End")
	}
}

func TestExecuteDispatchesInOrder(t *testing.T) {
	b := New(16)
	mustOK(t, b.BeginRenderPass(1))
	mustOK(t, b.UseProgram(2))
	mustOK(t, b.Draw(PrimitiveTriangles, 3, 6))
	b.End()

	pool := gpu.NewResourcePool()
	mem := gpu.NewMemoryPool(64)
	exec := &fakeExecutor{}
	if err := b.Execute(pool, mem, exec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"begin-pass", "use-program", "draw"}
	if len(exec.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, exec.calls)
	}
	for i, c := range want {
		if exec.calls[i] != c {
			t.Fatalf("expected call %d to be %s, got %s", i, c, exec.calls[i])
		}
	}
}

func TestExecuteEndsIndexedArrayOnArrayChange(t *testing.T) {
	b := New(16)
	mustOK(t, b.DrawIndexed(PrimitiveTriangles, 1, 3))
	mustOK(t, b.DrawIndexed(PrimitiveTriangles, 2, 3))
	b.End()

	pool := gpu.NewResourcePool()
	mem := gpu.NewMemoryPool(64)
	exec := &fakeExecutor{}
	if err := b.Execute(pool, mem, exec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(exec.endedArray) != 2 || exec.endedArray[0] != 1 || exec.endedArray[1] != 2 {
		t.Fatalf("expected end-indexed calls for array 1 (on the array change) and array 2 (at End), got %v", exec.endedArray)
	}
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
