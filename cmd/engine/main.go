/*
This is a thin demo binary that wires the render core's packages
together against a real window and GL context. It carries no game
logic of its own; everything interesting lives under internal/.
*/
package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/vireo-engine/rendercore/internal/cmdbuf"
	"github.com/vireo-engine/rendercore/internal/config"
	"github.com/vireo-engine/rendercore/internal/corelog"
	"github.com/vireo-engine/rendercore/internal/ecs"
	"github.com/vireo-engine/rendercore/internal/glbackend"
	"github.com/vireo-engine/rendercore/internal/render"
)

func init() {
	// glfw and GL calls must run pinned to the thread that created the
	// context, the same constraint the teacher's application.go worked
	// around by never hopping goroutines for renderer calls.
	runtime.LockOSThread()
}

const configPath = "engine.toml"

func main() {
	cfg, err := config.Load(configPath)
	if err != nil {
		corelog.LogFatal("loading config: %v", err)
	}

	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		corelog.LogWarn("config hot-reload disabled: %v", err)
	}

	if err := glfw.Init(); err != nil {
		corelog.LogFatal("glfw init: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(1920, 1080, "rendercore demo", nil, nil)
	if err != nil {
		corelog.LogFatal("creating window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		corelog.LogFatal("gl init: %v", err)
	}

	renderer := render.New(render.ConfigFromEngine(cfg))
	backend := glbackend.New(renderer)
	renderer.RenderTargets = render.NewRenderTargetCache(backend.CreateRenderTarget)
	renderer.ConstantBuffers = render.NewConstantBufferCache(backend.CreateBuffer)
	executor := cmdbuf.NewGLExecutor(backend)

	for _, rtCfg := range render.DefaultRenderTargetConfigs(cfg) {
		renderer.RenderTargets.Acquire(rtCfg, renderer.QueryFence())
	}

	store := ecs.NewStore()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	running := true
	go func() {
		<-sigCh
		running = false
	}()

	if watcher != nil {
		defer watcher.Close()
	}

	view := &render.RenderView{Type: render.ViewCamera, Kind: render.RenderForward, Viewport: [4]int{0, 0, 1920, 1080}}
	view.Init(renderer)

	for running && !window.ShouldClose() {
		if watcher != nil {
			select {
			case newCfg := <-watcher.Changed:
				renderer.ApplyChangedRenderTargets(newCfg)
			default:
			}
		}

		renderer.BeginFrame()

		objects := render.ExtractForView(store, view)
		buf, err := render.Record(renderer, view, objects)
		if err != nil {
			corelog.LogError("recording frame: %v", err)
		} else if err := buf.Execute(renderer.Pool, view.ScratchPool(), executor); err != nil {
			corelog.LogError("executing frame: %v", err)
		}
		if err := cmdbuf.CheckGLError(); err != nil {
			corelog.LogFatal("gl error after frame: %v", err)
		}

		renderer.EndFrame()

		window.SwapBuffers()
		glfw.PollEvents()
	}

	renderer.Shutdown()
}
