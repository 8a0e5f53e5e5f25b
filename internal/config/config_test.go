package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
worker_count = 4
chunk_bytes = 32768
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 32768, cfg.ChunkBytes)
	// Fields the file didn't mention keep their defaults.
	assert.Equal(t, Defaults().ScratchPoolBytes, cfg.ScratchPoolBytes)
}

func TestLoadRejectsInvalidRenderTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[render_target]]
purpose = "depth_prepass"
width = 0
height = 1080
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestWatcherPublishesReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("worker_count = 2\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 2, w.Current().WorkerCount)

	require.NoError(t, os.WriteFile(path, []byte("worker_count = 8\n"), 0o644))

	select {
	case cfg := <-w.Changed:
		assert.Equal(t, 8, cfg.WorkerCount)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
	assert.Equal(t, 8, w.Current().WorkerCount)
}
