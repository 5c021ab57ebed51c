package pluginhost

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/nodecast/playcore/internal/config"
	"github.com/nodecast/playcore/internal/engine"
)

// loadedPlugin tracks one running plugin process: its go-plugin client, the
// Kind it was registered as, and the restart bookkeeping needed to honor
// PluginHostConfig.RestartOnCrash/MaxRestartAttempts.
type loadedPlugin struct {
	id       string
	kind     Kind
	path     string
	client   *goplugin.Client
	restarts int
}

// Manager discovers plugin binaries under a directory, launches them behind
// Handshake, and restarts crashed processes up to a configured attempt
// limit, the way viewra's ExternalPluginManager discovers, loads, and
// monitors external plugin binaries.
type Manager struct {
	cfg    config.PluginHostConfig
	logger hclog.Logger

	mu      sync.RWMutex
	plugins map[string]*loadedPlugin

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager returns a Manager governed by cfg, logging through logger (a
// named hclog.Logger, matching the teacher's per-plugin m.logger.Named(id)
// convention).
func NewManager(cfg config.PluginHostConfig, logger hclog.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		logger:  logger,
		plugins: make(map[string]*loadedPlugin),
	}
}

// Start ensures cfg.PluginDir exists, creating it if missing; it neither
// scans the directory nor loads any binary. Loading is driven by
// LoadRenderer/LoadMediaSource as the engine needs a concrete collaborator.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)
	if _, err := os.Stat(m.cfg.PluginDir); os.IsNotExist(err) {
		m.logger.Info("plugin directory does not exist, creating", "dir", m.cfg.PluginDir)
		return os.MkdirAll(m.cfg.PluginDir, 0o755)
	}
	return nil
}

// Shutdown kills every running plugin process.
func (m *Manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.plugins {
		m.logger.Info("stopping plugin", "plugin", id)
		p.client.Kill()
	}
	m.plugins = make(map[string]*loadedPlugin)
}

// LoadRenderer launches the binary at binaryName (resolved under
// cfg.PluginDir) and returns the engine.Renderer it dispenses.
func (m *Manager) LoadRenderer(id, binaryName string) (engine.Renderer, error) {
	raw, err := m.load(id, binaryName, KindRenderer)
	if err != nil {
		return nil, err
	}
	r, ok := raw.(engine.Renderer)
	if !ok {
		return nil, fmt.Errorf("pluginhost: plugin %s did not dispense an engine.Renderer", id)
	}
	return r, nil
}

// LoadMediaSource launches the binary at binaryName and returns the
// engine.MediaSource it dispenses.
func (m *Manager) LoadMediaSource(id, binaryName string) (engine.MediaSource, error) {
	raw, err := m.load(id, binaryName, KindMediaSource)
	if err != nil {
		return nil, err
	}
	s, ok := raw.(engine.MediaSource)
	if !ok {
		return nil, fmt.Errorf("pluginhost: plugin %s did not dispense an engine.MediaSource", id)
	}
	return s, nil
}

func (m *Manager) load(id, binaryName string, kind Kind) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.plugins[id]; ok {
		return m.dispense(existing)
	}

	binaryPath := filepath.Join(m.cfg.PluginDir, binaryName)
	if _, err := os.Stat(binaryPath); err != nil {
		return nil, fmt.Errorf("pluginhost: plugin binary not found: %s", binaryPath)
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          pluginMap(),
		Cmd:              exec.Command(binaryPath),
		Logger:           m.logger.Named(id),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		StartTimeout:     m.cfg.HandshakeTimeout,
	})

	lp := &loadedPlugin{id: id, kind: kind, path: binaryPath, client: client}
	raw, err := m.dispense(lp)
	if err != nil {
		client.Kill()
		return nil, err
	}

	m.plugins[id] = lp
	m.monitor(lp)
	return raw, nil
}

func (m *Manager) dispense(lp *loadedPlugin) (interface{}, error) {
	rpcClient, err := lp.client.Client()
	if err != nil {
		return nil, fmt.Errorf("pluginhost: connecting to plugin %s: %w", lp.id, err)
	}
	raw, err := rpcClient.Dispense(string(lp.kind))
	if err != nil {
		return nil, fmt.Errorf("pluginhost: dispensing %s from plugin %s: %w", lp.kind, lp.id, err)
	}
	return raw, nil
}

// monitor polls the client for process exit and restarts it, honoring
// RestartOnCrash/MaxRestartAttempts, mirroring viewra's monitorPluginProcess.
func (m *Manager) monitor(lp *loadedPlugin) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				if !lp.client.Exited() {
					continue
				}
				m.handleCrash(lp)
				return
			}
		}
	}()
}

func (m *Manager) handleCrash(lp *loadedPlugin) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Warn("plugin process exited unexpectedly", "plugin", lp.id)
	delete(m.plugins, lp.id)

	if !m.cfg.RestartOnCrash || lp.restarts >= m.cfg.MaxRestartAttempts {
		m.logger.Error("plugin will not be restarted", "plugin", lp.id, "restarts", lp.restarts)
		return
	}

	lp.restarts++
	m.logger.Info("restarting crashed plugin", "plugin", lp.id, "attempt", lp.restarts)

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          pluginMap(),
		Cmd:              exec.Command(lp.path),
		Logger:           m.logger.Named(lp.id),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		StartTimeout:     m.cfg.HandshakeTimeout,
	})
	restarted := &loadedPlugin{id: lp.id, kind: lp.kind, path: lp.path, client: client, restarts: lp.restarts}
	if _, err := m.dispense(restarted); err != nil {
		m.logger.Error("failed to restart plugin", "plugin", lp.id, "error", err)
		client.Kill()
		return
	}
	m.plugins[lp.id] = restarted
	m.monitor(restarted)
}

// Running reports whether id currently has a live process.
func (m *Manager) Running(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lp, ok := m.plugins[id]
	return ok && !lp.client.Exited()
}
