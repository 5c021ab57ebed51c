// Package config loads playcore's configuration: the engine's fixed
// scheduling intervals, buffering policy, the HTTP/WS control surface, and
// persistence, from a YAML or JSON file with environment-variable overrides
// and struct-tag defaults, in the shape of viewra's internal/config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	Engine      EngineConfig      `yaml:"engine" json:"engine"`
	LoadControl LoadControlConfig `yaml:"load_control" json:"load_control"`
	Seek        SeekConfig        `yaml:"seek" json:"seek"`
	History     HistoryConfig     `yaml:"history" json:"history"`
	PluginHost  PluginHostConfig  `yaml:"plugin_host" json:"plugin_host"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// ServerConfig holds the internal/httpapi listener configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"PLAYCORE_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" json:"port" env:"PLAYCORE_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" env:"PLAYCORE_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" env:"PLAYCORE_WRITE_TIMEOUT" default:"30s"`
	EnableCORS   bool          `yaml:"enable_cors" json:"enable_cors" env:"PLAYCORE_ENABLE_CORS" default:"true"`
}

// EngineConfig mirrors internal/engine.EngineConfig's scheduling intervals
// and back-buffer policy, loaded here so a deployment can tune them without
// a rebuild.
type EngineConfig struct {
	RenderingIntervalMs          int64 `yaml:"rendering_interval_ms" json:"rendering_interval_ms" env:"PLAYCORE_RENDERING_INTERVAL_MS" default:"10"`
	IdleIntervalMs               int64 `yaml:"idle_interval_ms" json:"idle_interval_ms" env:"PLAYCORE_IDLE_INTERVAL_MS" default:"1000"`
	PreparingSourceIntervalMs    int64 `yaml:"preparing_source_interval_ms" json:"preparing_source_interval_ms" env:"PLAYCORE_PREPARING_SOURCE_INTERVAL_MS" default:"10"`
	BackBufferDurationUs         int64 `yaml:"back_buffer_duration_us" json:"back_buffer_duration_us" env:"PLAYCORE_BACK_BUFFER_DURATION_US" default:"0"`
	RetainBackBufferFromKeyframe bool  `yaml:"retain_back_buffer_from_keyframe" json:"retain_back_buffer_from_keyframe" env:"PLAYCORE_RETAIN_BACK_BUFFER_FROM_KEYFRAME" default:"false"`
}

// LoadControlConfig feeds internal/engine.NewDefaultLoadControl.
type LoadControlConfig struct {
	MinBufferUs             int64  `yaml:"min_buffer_us" json:"min_buffer_us" env:"PLAYCORE_MIN_BUFFER_US" default:"15000000"`
	MaxBufferUs             int64  `yaml:"max_buffer_us" json:"max_buffer_us" env:"PLAYCORE_MAX_BUFFER_US" default:"50000000"`
	PlaybackBufferUs        int64  `yaml:"playback_buffer_us" json:"playback_buffer_us" env:"PLAYCORE_PLAYBACK_BUFFER_US" default:"2500000"`
	MinAvailableMemoryBytes uint64 `yaml:"min_available_memory_bytes" json:"min_available_memory_bytes" env:"PLAYCORE_MIN_AVAILABLE_MEMORY_BYTES" default:"536870912"`
}

// SeekConfig feeds internal/engine.SeekParameters (SPEC_FULL.md §C.2); the
// engine stores the tolerances but no seek consults them.
type SeekConfig struct {
	ToleranceBeforeUs int64 `yaml:"tolerance_before_us" json:"tolerance_before_us" env:"PLAYCORE_SEEK_TOLERANCE_BEFORE_US" default:"0"`
	ToleranceAfterUs  int64 `yaml:"tolerance_after_us" json:"tolerance_after_us" env:"PLAYCORE_SEEK_TOLERANCE_AFTER_US" default:"0"`
}

// HistoryConfig selects internal/history's backing database.
type HistoryConfig struct {
	Driver   string `yaml:"driver" json:"driver" env:"PLAYCORE_HISTORY_DRIVER" default:"sqlite"`
	DSN      string `yaml:"dsn" json:"dsn" env:"PLAYCORE_HISTORY_DSN" default:"playcore_history.db"`
}

// PluginHostConfig governs internal/pluginhost's go-plugin process
// supervision.
type PluginHostConfig struct {
	PluginDir          string        `yaml:"plugin_dir" json:"plugin_dir" env:"PLAYCORE_PLUGIN_DIR" default:"./plugins"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout" json:"handshake_timeout" env:"PLAYCORE_PLUGIN_HANDSHAKE_TIMEOUT" default:"10s"`
	RestartOnCrash     bool          `yaml:"restart_on_crash" json:"restart_on_crash" env:"PLAYCORE_PLUGIN_RESTART_ON_CRASH" default:"true"`
	MaxRestartAttempts int           `yaml:"max_restart_attempts" json:"max_restart_attempts" env:"PLAYCORE_PLUGIN_MAX_RESTARTS" default:"3"`
}

// LoggingConfig controls the hclog/internal-logger output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"PLAYCORE_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" json:"format" env:"PLAYCORE_LOG_FORMAT" default:"json"`
}

// Manager owns the current Config and notifies Watchers when it reloads.
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	watchers   []Watcher
}

// Watcher is invoked, in its own goroutine, whenever LoadConfig replaces the
// active configuration.
type Watcher func(oldConfig, newConfig *Config)

var (
	global     *Manager
	globalOnce sync.Once
)

// GetManager returns the process-wide configuration manager.
func GetManager() *Manager {
	globalOnce.Do(func() {
		global = NewManager()
	})
	return global
}

// NewManager returns a Manager holding DefaultConfig.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// DefaultConfig returns a Config with every field.yaml default literal
// applied, matching the `default:"..."` tags above.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   true,
		},
		Engine: EngineConfig{
			RenderingIntervalMs:       10,
			IdleIntervalMs:            1000,
			PreparingSourceIntervalMs: 10,
		},
		LoadControl: LoadControlConfig{
			MinBufferUs:             15_000_000,
			MaxBufferUs:             50_000_000,
			PlaybackBufferUs:        2_500_000,
			MinAvailableMemoryBytes: 512 * 1024 * 1024,
		},
		History: HistoryConfig{
			Driver: "sqlite",
			DSN:    "playcore_history.db",
		},
		PluginHost: PluginHostConfig{
			PluginDir:          "./plugins",
			HandshakeTimeout:   10 * time.Second,
			RestartOnCrash:     true,
			MaxRestartAttempts: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from path (if it exists), applies
// environment-variable overrides, validates the result, and swaps it in.
// Watchers are notified with the previous and new config.
func (m *Manager) LoadConfig(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := *m.config
	m.configPath = path

	next := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(path, next); err != nil {
				return fmt.Errorf("load config from file: %w", err)
			}
		}
	}
	if err := loadFromEnv(reflect.ValueOf(next).Elem()); err != nil {
		return fmt.Errorf("load config from environment: %w", err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	m.config = next
	for _, w := range m.watchers {
		go w(&oldConfig, next)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := *m.config
	return &cp
}

// AddWatcher registers w to be called on every subsequent LoadConfig.
func (m *Manager) AddWatcher(w Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, w)
}

// Validate checks the configuration's invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Engine.RenderingIntervalMs <= 0 {
		return fmt.Errorf("engine.rendering_interval_ms: must be positive")
	}
	if c.Engine.IdleIntervalMs <= 0 {
		return fmt.Errorf("engine.idle_interval_ms: must be positive")
	}
	if c.LoadControl.MinBufferUs < 0 || c.LoadControl.MaxBufferUs < c.LoadControl.MinBufferUs {
		return fmt.Errorf("load_control: max_buffer_us must be >= min_buffer_us")
	}
	if c.LoadControl.PlaybackBufferUs < 0 || c.LoadControl.PlaybackBufferUs > c.LoadControl.MaxBufferUs {
		return fmt.Errorf("load_control.playback_buffer_us: must be between 0 and max_buffer_us")
	}
	if c.Seek.ToleranceBeforeUs < 0 || c.Seek.ToleranceAfterUs < 0 {
		return fmt.Errorf("seek: tolerances must be non-negative")
	}
	if c.History.Driver != "sqlite" && c.History.Driver != "postgres" {
		return fmt.Errorf("history.driver: unsupported driver %q", c.History.Driver)
	}
	if c.PluginHost.MaxRestartAttempts < 0 {
		return fmt.Errorf("plugin_host.max_restart_attempts: must be non-negative")
	}
	return nil
}

func loadFromFile(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".json":
		return json.Unmarshal(data, out)
	default:
		return fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
	}
}

// loadFromEnv walks v's fields, recursing into nested structs, and applies
// an `env` tag's value where the corresponding environment variable is
// actually set. Unlike viewra's internal/config (whose env loader also
// falls back to the `default` struct tag, silently re-stomping whatever a
// config file just set), defaults are applied once by DefaultConfig()
// before a file or environment override is layered on; an unset
// environment variable here must leave the field as the file left it.
func loadFromEnv(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			if err := loadFromEnv(field); err != nil {
				return err
			}
			continue
		}
		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		value := os.Getenv(envTag)
		if value == "" {
			continue
		}
		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("field %s: %w", fieldType.Name, err)
		}
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field kind: %v", field.Kind())
	}
	return nil
}

// Get returns the process-wide configuration.
func Get() *Config { return GetManager().Get() }

// Load loads the process-wide configuration from path.
func Load(path string) error { return GetManager().LoadConfig(path) }
