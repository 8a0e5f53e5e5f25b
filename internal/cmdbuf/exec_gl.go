package cmdbuf

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/vireo-engine/rendercore/internal/corelog"
	"github.com/vireo-engine/rendercore/internal/fence"
	"github.com/vireo-engine/rendercore/internal/gpu"
)

// GLBackend resolves the render core's ResourceIDs to the native OpenGL
// object names the GLExecutor needs to issue calls. It is supplied by
// internal/render, which owns the ResourcePool and knows how each
// resource class (RenderPass, Program, VertexArray, Buffer) maps to a GL
// name, plus the fence registry a raw wire fence id is looked up in.
type GLBackend interface {
	RenderPassFramebuffer(pass gpu.ResourceID) uint32
	BeginSubpassAttachments(pass gpu.ResourceID, subpass uint32)
	ProgramGLName(prog gpu.ResourceID) uint32
	VertexArrayGLName(array gpu.ResourceID) uint32
	BufferGLName(buf gpu.ResourceID) uint32
	ResolveFence(id uint32) *fence.Fence
}

// glPrimitive maps the wire Primitive enum to GL_* draw mode constants.
var glPrimitive = [...]uint32{
	PrimitivePoints:        gl.POINTS,
	PrimitiveLines:         gl.LINES,
	PrimitiveLineLoop:      gl.LINE_LOOP,
	PrimitiveLineStrip:     gl.LINE_STRIP,
	PrimitiveTriangles:     gl.TRIANGLES,
	PrimitiveTriangleFan:   gl.TRIANGLE_FAN,
	PrimitiveTriangleStrip: gl.TRIANGLE_STRIP,
}

// GLExecutor is the Executor that actually submits work to an OpenGL
// context. All calls must run on the thread that owns the GL context
// (the "GL thread" in spec terms); a GL error surfaced by any call here
// aborts the frame, since there is no way to recover mid-command-stream.
type GLExecutor struct {
	backend GLBackend

	boundProgram       uint32
	currentFramebuffer uint32
}

// NewGLExecutor wraps backend for use as a command buffer Executor.
func NewGLExecutor(backend GLBackend) *GLExecutor {
	return &GLExecutor{backend: backend}
}

func (e *GLExecutor) BeginRenderPass(pass gpu.ResourceID) {
	fb := e.backend.RenderPassFramebuffer(pass)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	e.currentFramebuffer = fb
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (e *GLExecutor) BeginSubpass(id uint32) {
	e.backend.BeginSubpassAttachments(gpu.Invalid, id)
}

func (e *GLExecutor) UseProgram(prog gpu.ResourceID) {
	name := e.backend.ProgramGLName(prog)
	gl.UseProgram(name)
	e.boundProgram = name
}

func (e *GLExecutor) Draw(prim Primitive, vertexArray gpu.ResourceID, offset, numVerts uint32) {
	gl.BindVertexArray(e.backend.VertexArrayGLName(vertexArray))
	gl.DrawArrays(glPrimitive[prim], int32(offset), int32(numVerts))
}

func (e *GLExecutor) DrawIndexed(prim Primitive, indexedArray gpu.ResourceID, offset, numIndices uint32) {
	gl.BindVertexArray(e.backend.VertexArrayGLName(indexedArray))
	gl.DrawElements(glPrimitive[prim], int32(numIndices), gl.UNSIGNED_INT, gl.PtrOffset(int(offset)))
}

func (e *GLExecutor) DrawBaseVertex(prim Primitive, indexedArray gpu.ResourceID, base, offset, num uint32) {
	gl.BindVertexArray(e.backend.VertexArrayGLName(indexedArray))
	gl.DrawElementsBaseVertex(glPrimitive[prim], int32(num), gl.UNSIGNED_INT, gl.PtrOffset(int(offset)), int32(base))
}

func (e *GLExecutor) EndIndexedArray(indexedArray gpu.ResourceID) {
	gl.BindVertexArray(0)
}

func (e *GLExecutor) UploadBuffer(buf gpu.ResourceID, data []byte) {
	name := e.backend.BufferGLName(buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, name)
	if len(data) > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data), gl.Ptr(&data[0]))
	}
}

func (e *GLExecutor) UniformInt(location uint32, value int32) {
	gl.Uniform1i(int32(location), value)
}

func (e *GLExecutor) UniformFloat(location uint32, value float32) {
	gl.Uniform1f(int32(location), value)
}

func (e *GLExecutor) UniformSampler(location uint32, unit uint32) {
	gl.Uniform1i(int32(location), int32(unit))
}

func (e *GLExecutor) UniformVec4(location uint32, data []byte) {
	v := decodeFloat32s(data, 4)
	gl.Uniform4f(int32(location), v[0], v[1], v[2], v[3])
}

func (e *GLExecutor) UniformMat4x4(location uint32, data []byte) {
	v := decodeFloat32s(data, 16)
	var m [16]float32
	copy(m[:], v)
	gl.UniformMatrix4fv(int32(location), 1, false, &m[0])
}

func (e *GLExecutor) FenceSync(id uint32) {
	if f := e.backend.ResolveFence(id); f != nil {
		f.Sync()
	}
}

func (e *GLExecutor) FenceWait(id uint32) {
	if f := e.backend.ResolveFence(id); f != nil {
		f.Wait(fence.WaitTimeout)
	}
}

func decodeFloat32s(data []byte, count int) []float32 {
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// CheckGLError surfaces a pending OpenGL error as a fatal error, per
// spec §7's "GL errors during execute are fatal" policy. Callers invoke
// this after Execute returns, not after every opcode, matching the
// teacher's batched-validation style over per-call error checks.
func CheckGLError() error {
	if err := gl.GetError(); err != gl.NO_ERROR {
		return &GLError{Code: err}
	}
	return nil
}

// GLError wraps a raw GL error code.
type GLError struct {
	Code uint32
}

func (e *GLError) Error() string {
	return corelog.ErrConfiguration.Error() + ": gl error 0x" + itoa(e.Code)
}

func itoa(v uint32) string {
	const hex = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = hex[v&0xF]
		v >>= 4
	}
	return string(buf[i:])
}
