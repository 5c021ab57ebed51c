package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	c := DefaultConfig()
	c.Server.Port = 0
	assert.Error(t, c.Validate())
}

func TestValidateRejectsMaxBufferBelowMin(t *testing.T) {
	c := DefaultConfig()
	c.LoadControl.MaxBufferUs = c.LoadControl.MinBufferUs - 1
	assert.Error(t, c.Validate())
}

func TestLoadConfigAppliesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	err := os.WriteFile(path, []byte(`
server:
  port: 9090
engine:
  rendering_interval_ms: 20
`), 0o644)
	require.NoError(t, err)

	m := NewManager()
	require.NoError(t, m.LoadConfig(path))
	cfg := m.Get()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(20), cfg.Engine.RenderingIntervalMs)
}

func TestLoadConfigEnvOverridesDefault(t *testing.T) {
	t.Setenv("PLAYCORE_PORT", "7777")
	m := NewManager()
	require.NoError(t, m.LoadConfig(""))
	assert.Equal(t, 7777, m.Get().Server.Port)
}

func TestLoadConfigParsesDurationEnvOverride(t *testing.T) {
	t.Setenv("PLAYCORE_READ_TIMEOUT", "5s")
	m := NewManager()
	require.NoError(t, m.LoadConfig(""))
	assert.Equal(t, 5*time.Second, m.Get().Server.ReadTimeout)
}

func TestAddWatcherNotifiedOnReload(t *testing.T) {
	m := NewManager()
	done := make(chan struct{})
	var oldPort, newPort int
	m.AddWatcher(func(oldConfig, newConfig *Config) {
		oldPort = oldConfig.Server.Port
		newPort = newConfig.Server.Port
		close(done)
	})

	t.Setenv("PLAYCORE_PORT", "9999")
	require.NoError(t, m.LoadConfig(""))
	<-done
	assert.Equal(t, 8080, oldPort)
	assert.Equal(t, 9999, newPort)
}
