package pluginhost

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/nodecast/playcore/internal/config"
)

func testManager(t *testing.T, dir string) *Manager {
	t.Helper()
	cfg := config.PluginHostConfig{
		PluginDir:          dir,
		HandshakeTimeout:   time.Second,
		RestartOnCrash:     true,
		MaxRestartAttempts: 3,
	}
	return NewManager(cfg, hclog.NewNullLogger())
}

func TestStartCreatesMissingPluginDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "plugins")
	m := testManager(t, dir)

	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestStartLeavesExistingPluginDirAlone(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "keepme")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	m := testManager(t, dir)
	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown()

	_, err := os.Stat(marker)
	require.NoError(t, err)
}

func TestLoadRendererMissingBinaryReturnsError(t *testing.T) {
	dir := t.TempDir()
	m := testManager(t, dir)
	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown()

	_, err := m.LoadRenderer("missing-renderer", "does-not-exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "plugin binary not found")
}

func TestLoadMediaSourceMissingBinaryReturnsError(t *testing.T) {
	dir := t.TempDir()
	m := testManager(t, dir)
	require.NoError(t, m.Start(context.Background()))
	defer m.Shutdown()

	_, err := m.LoadMediaSource("missing-source", "does-not-exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "plugin binary not found")
}

func TestRunningFalseForUnknownPlugin(t *testing.T) {
	m := testManager(t, t.TempDir())
	require.False(t, m.Running("nope"))
}

func TestShutdownIsIdempotentWithNoPluginsLoaded(t *testing.T) {
	m := testManager(t, t.TempDir())
	require.NoError(t, m.Start(context.Background()))
	m.Shutdown()
	m.Shutdown()
}
