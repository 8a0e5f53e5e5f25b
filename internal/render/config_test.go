package render

import (
	"testing"

	"github.com/vireo-engine/rendercore/internal/config"
)

func TestDefaultRenderTargetConfigsSkipsUnknownPurpose(t *testing.T) {
	ec := config.EngineConfig{
		RenderTargets: []config.RenderTargetDefault{
			{Purpose: "depth_prepass", Width: 1920, Height: 1080},
			{Purpose: "bogus", Width: 100, Height: 100},
		},
	}
	out := DefaultRenderTargetConfigs(ec)
	if len(out) != 1 {
		t.Fatalf("expected 1 recognized render target, got %d", len(out))
	}
	if out[0].Purpose != PurposeDepthPrepass {
		t.Fatalf("expected PurposeDepthPrepass, got %v", out[0].Purpose)
	}
}

func TestConfigFromEngineCopiesSizing(t *testing.T) {
	ec := config.EngineConfig{WorkerCount: 3, ScratchPoolBytes: 4096, VisibilityPoolBytes: 2048}
	c := ConfigFromEngine(ec)
	if c.WorkerCount != 3 || c.ScratchPoolBytes != 4096 || c.VisibilityPoolBytes != 2048 {
		t.Fatalf("unexpected Config from engine config: %+v", c)
	}
}
