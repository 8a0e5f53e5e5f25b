// Package glbackend is the thin concrete OpenGL layer that resolves the
// render core's backend-agnostic gpu.ResourceIDs to native GL object
// names. internal/render never imports go-gl directly (it only takes
// create closures in render.Config); this package supplies those
// closures and implements cmdbuf.GLBackend, mirroring the way the
// teacher's vulkan package (engine/renderer/vulkan/*) sat behind
// engine/renderer.Backend as the one place that actually called into
// the native graphics API.
package glbackend

import (
	"fmt"
	"sync"

	gl "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/vireo-engine/rendercore/internal/corelog"
	"github.com/vireo-engine/rendercore/internal/gpu"
	"github.com/vireo-engine/rendercore/internal/render"
)

// glFormat maps a gpu.TextureFormat to the GL internal format, upload
// format, and upload type triple glTexImage2D needs.
var glFormat = map[gpu.TextureFormat][3]uint32{
	gpu.TextureFormatRGBA8:    {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	gpu.TextureFormatRGBA16F:  {gl.RGBA16F, gl.RGBA, gl.FLOAT},
	gpu.TextureFormatDepth32F: {gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT},
	gpu.TextureFormatR8:       {gl.R8, gl.RED, gl.UNSIGNED_BYTE},
}

// Backend owns every native GL name the render core's logical resources
// are bound to. It embeds *render.Renderer so it satisfies
// cmdbuf.GLBackend's ResolveFence requirement for free; the rest of the
// interface is resolved against the maps below, which are only ever
// written from the GL thread.
type Backend struct {
	*render.Renderer

	mu           sync.Mutex
	framebuffers map[gpu.ResourceID]uint32
	textures     map[gpu.ResourceID]uint32
	programs     map[gpu.ResourceID]uint32
	vaos         map[gpu.ResourceID]uint32
	buffers      map[gpu.ResourceID]uint32
}

// New wraps r, which must already exist (internal/render.New), behind
// the native GL bindings this package creates on demand.
func New(r *render.Renderer) *Backend {
	return &Backend{
		Renderer:     r,
		framebuffers: make(map[gpu.ResourceID]uint32),
		textures:     make(map[gpu.ResourceID]uint32),
		programs:     make(map[gpu.ResourceID]uint32),
		vaos:         make(map[gpu.ResourceID]uint32),
		buffers:      make(map[gpu.ResourceID]uint32),
	}
}

// CreateRenderTarget allocates the attachment textures and framebuffer
// cfg describes, and is meant to be plugged in directly as
// render.Config.CreateRenderTarget. Must run on the GL thread.
func (b *Backend) CreateRenderTarget(cfg render.RenderTargetConfig) (gpu.ResourceID, []gpu.ResourceID) {
	var fbName uint32
	gl.GenFramebuffers(1, &fbName)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbName)

	attachmentIDs := make([]gpu.ResourceID, 0, len(cfg.Attachments))
	colorIndex := 0
	for _, att := range cfg.Attachments {
		texName := b.createAttachmentTexture(att.Format, cfg.Width, cfg.Height)
		id := gpu.CreateTexture(b.Pool, "", att.Format, cfg.Width, cfg.Height, nil)

		b.mu.Lock()
		b.textures[id] = texName
		b.mu.Unlock()

		attachmentIDs = append(attachmentIDs, id)
		if att.Format == gpu.TextureFormatDepth32F {
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, texName, 0)
			continue
		}
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(colorIndex), gl.TEXTURE_2D, texName, 0)
		colorIndex++
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		corelog.LogError("glbackend: framebuffer incomplete, status 0x%x", status)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	fbID := gpu.Create(b.Pool, "", struct{}{})
	b.mu.Lock()
	b.framebuffers[fbID] = fbName
	b.mu.Unlock()
	return fbID, attachmentIDs
}

func (b *Backend) createAttachmentTexture(format gpu.TextureFormat, width, height int) uint32 {
	var name uint32
	gl.GenTextures(1, &name)
	gl.BindTexture(gl.TEXTURE_2D, name)
	f := glFormat[format]
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(f[0]), int32(width), int32(height), 0, f[1], f[2], nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return name
}

// CreateBuffer allocates an empty GL_UNIFORM_BUFFER of size bytes and is
// meant to be plugged in as render.Config.CreateBuffer.
func (b *Backend) CreateBuffer(size int) gpu.ResourceID {
	var name uint32
	gl.GenBuffers(1, &name)
	gl.BindBuffer(gl.UNIFORM_BUFFER, name)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	id := gpu.CreateBuffer(b.Pool, "", gpu.BufferUsageUniform, size, gpu.IndexTypeNone)
	b.mu.Lock()
	b.buffers[id] = name
	b.mu.Unlock()
	return id
}

// CreateMeshBuffers uploads vertex data (and, if indices is non-empty,
// index data) and returns a vertex-array resource id ready for
// CommandBuffer.Draw/DrawIndexed.
func (b *Backend) CreateMeshBuffers(vertexData []byte, indices []uint32) gpu.ResourceID {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(vertexData) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertexData), gl.Ptr(vertexData), gl.STATIC_DRAW)
	}

	if len(indices) > 0 {
		var ebo uint32
		gl.GenBuffers(1, &ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	id := gpu.Create(b.Pool, "", struct{}{})
	b.mu.Lock()
	b.vaos[id] = vao
	b.mu.Unlock()
	return id
}

// CompileProgram links a vertex+fragment shader pair into a GL program
// and registers it as a resource, meant to back render.Renderer.Program's
// create closure.
func (b *Backend) CompileProgram(vertSrc, fragSrc string) (gpu.ResourceID, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return gpu.Invalid, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return gpu.Invalid, err
	}
	defer gl.DeleteShader(fs)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen)
		gl.GetProgramInfoLog(prog, logLen, nil, &log[0])
		err := fmt.Errorf("%w: program link failed: %s", corelog.ErrConfiguration, string(log))
		corelog.LogError(err.Error())
		return gpu.Invalid, err
	}

	id := gpu.Create(b.Pool, "", struct{}{})
	b.mu.Lock()
	b.programs[id] = prog
	b.mu.Unlock()
	return id, nil
}

func compileShader(src string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		err := fmt.Errorf("%w: shader compile failed: %s", corelog.ErrConfiguration, string(log))
		corelog.LogError(err.Error())
		return 0, err
	}
	return shader, nil
}

// RenderPassFramebuffer satisfies cmdbuf.GLBackend.
func (b *Backend) RenderPassFramebuffer(pass gpu.ResourceID) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.framebuffers[pass]
}

// BeginSubpassAttachments satisfies cmdbuf.GLBackend. OpenGL has no
// native subpass concept; a single framebuffer bind already exposes all
// of its attachments, so there is nothing further to configure here.
func (b *Backend) BeginSubpassAttachments(pass gpu.ResourceID, subpass uint32) {}

// ProgramGLName satisfies cmdbuf.GLBackend.
func (b *Backend) ProgramGLName(prog gpu.ResourceID) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.programs[prog]
}

// VertexArrayGLName satisfies cmdbuf.GLBackend.
func (b *Backend) VertexArrayGLName(array gpu.ResourceID) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vaos[array]
}

// BufferGLName satisfies cmdbuf.GLBackend.
func (b *Backend) BufferGLName(buf gpu.ResourceID) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffers[buf]
}
