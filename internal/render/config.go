package render

import (
	"github.com/vireo-engine/rendercore/internal/config"
	"github.com/vireo-engine/rendercore/internal/corelog"
	"github.com/vireo-engine/rendercore/internal/gpu"
)

// ConfigFromEngine copies the sizing fields of an EngineConfig into a
// renderer Config. CreateRenderTarget/CreateBuffer are backend hooks the
// caller still has to supply (they depend on the GL executor), so they
// are left unset here.
func ConfigFromEngine(ec config.EngineConfig) Config {
	return Config{
		WorkerCount:         ec.WorkerCount,
		ScratchPoolBytes:    ec.ScratchPoolBytes,
		VisibilityPoolBytes: ec.VisibilityPoolBytes,
	}
}

var purposeByName = map[string]RenderTargetPurpose{
	"depth_prepass":     PurposeDepthPrepass,
	"moment_shadow_map": PurposeMomentShadowMap,
	"forward_linear_z":  PurposeForwardLinearZ,
	"deferred_gbuffer":  PurposeDeferredGBuffer,
}

// DefaultRenderTargetConfigs converts an EngineConfig's declared render
// targets into RenderTargetConfig values, dropping (and logging) any
// entry naming a purpose this build doesn't recognize rather than
// failing startup over a stale config file.
func DefaultRenderTargetConfigs(ec config.EngineConfig) []RenderTargetConfig {
	out := make([]RenderTargetConfig, 0, len(ec.RenderTargets))
	for _, rt := range ec.RenderTargets {
		purpose, ok := purposeByName[rt.Purpose]
		if !ok {
			corelog.LogWarn("config: unknown render target purpose %q, skipping", rt.Purpose)
			continue
		}
		sampleCount := rt.SampleCount
		if sampleCount <= 0 {
			sampleCount = 1
		}
		out = append(out, RenderTargetConfig{
			Purpose:     purpose,
			SampleCount: sampleCount,
			Width:       rt.Width,
			Height:      rt.Height,
			Attachments: defaultAttachmentsFor(purpose),
		})
	}
	return out
}

func defaultAttachmentsFor(p RenderTargetPurpose) []Attachment {
	switch p {
	case PurposeDepthPrepass:
		return []Attachment{{Format: gpu.TextureFormatDepth32F}}
	case PurposeMomentShadowMap:
		return []Attachment{{Format: gpu.TextureFormatRGBA16F}}
	case PurposeForwardLinearZ:
		return []Attachment{{Format: gpu.TextureFormatRGBA16F}, {Format: gpu.TextureFormatDepth32F}}
	case PurposeDeferredGBuffer:
		return []Attachment{
			{Format: gpu.TextureFormatRGBA8},
			{Format: gpu.TextureFormatRGBA16F},
			{Format: gpu.TextureFormatRGBA8},
			{Format: gpu.TextureFormatDepth32F},
		}
	default:
		return nil
	}
}

// ApplyChangedRenderTargets drops every cached render target, mirroring
// the teacher's RegenerateRenderTargets/renderViewOnEvent flow: a config
// edit that changes resolution or sample count invalidates whatever was
// cached at the old size, so the next RenderTargets.Acquire creates a
// freshly sized target through the same create hook. Nothing here
// re-acquires targets itself.
func (r *Renderer) ApplyChangedRenderTargets(ec config.EngineConfig) {
	_ = DefaultRenderTargetConfigs(ec) // validated up front so a bad config is logged before the cache is dropped
	r.RenderTargets = NewRenderTargetCache(r.RenderTargets.create)
}
