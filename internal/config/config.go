// Package config loads engine and render-target defaults from TOML,
// grounded on the teacher's asset loader idiom (engine/assets/loaders,
// which reads a tmp*Config struct with pelletier/go-toml/v2 tags and
// transforms it into the real type). A missing or partially-specified
// file is not an error: every field has a code-supplied default, merged
// in after unmarshaling.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/vireo-engine/rendercore/internal/corelog"
)

// RenderTargetDefault mirrors render.RenderTargetConfig's shape without
// importing the render package, since config sits below it in the
// dependency graph; render.DefaultRenderTargetConfigs (or an equivalent
// adapter at the call site) converts this into a real
// render.RenderTargetConfig.
type RenderTargetDefault struct {
	Purpose     string `toml:"purpose"`
	SampleCount int    `toml:"sample_count"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
}

// EngineConfig holds the engine's startup tunables: worker pool sizing,
// ECS chunk byte budget, per-view scratch/visibility memory pool sizes,
// and the set of render targets to pre-create. ChunkBytes is not read by
// the ECS store, whose chunk budget is a fixed constant, and
// VisibilityPoolBytes is not read by render.New: both of a view's memory
// pools come from one cache sized by ScratchPoolBytes.
type EngineConfig struct {
	WorkerCount         int                   `toml:"worker_count"`
	ChunkBytes          int                   `toml:"chunk_bytes"`
	ScratchPoolBytes    int                   `toml:"scratch_pool_bytes"`
	VisibilityPoolBytes int                   `toml:"visibility_pool_bytes"`
	RenderTargets       []RenderTargetDefault `toml:"render_target"`
}

// Defaults returns the engine configuration used when no file is
// present, or to fill in fields a partial file omits.
func Defaults() EngineConfig {
	return EngineConfig{
		WorkerCount:         0, // 0 means render.New falls back to runtime.NumCPU()
		ChunkBytes:          16 << 10,
		ScratchPoolBytes:    1 << 20,
		VisibilityPoolBytes: 1 << 18,
		RenderTargets: []RenderTargetDefault{
			{Purpose: "depth_prepass", SampleCount: 1, Width: 1920, Height: 1080},
			{Purpose: "forward_linear_z", SampleCount: 1, Width: 1920, Height: 1080},
		},
	}
}

// Load reads path and overlays it onto Defaults(). A missing file
// returns the defaults unchanged rather than an error, matching the
// teacher's loaders returning a usable zero-ish value instead of
// refusing to start the engine over a missing asset.
func Load(path string) (EngineConfig, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		corelog.LogWarn("config file %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c EngineConfig) validate() error {
	for _, rt := range c.RenderTargets {
		if rt.Width <= 0 || rt.Height <= 0 {
			return corelog.ErrConfiguration
		}
	}
	return nil
}
