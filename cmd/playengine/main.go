// Command playengine wires the playback engine, its history store, plugin
// host, and HTTP/WebSocket control surface together into one runnable
// server, the way viewra's cmd/viewra/main.go wires its module system and
// internal/server into one process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nodecast/playcore/internal/clock"
	"github.com/nodecast/playcore/internal/config"
	"github.com/nodecast/playcore/internal/engine"
	"github.com/nodecast/playcore/internal/events"
	"github.com/nodecast/playcore/internal/history"
	"github.com/nodecast/playcore/internal/httpapi"
	"github.com/nodecast/playcore/internal/idgen"
	"github.com/nodecast/playcore/internal/logger"
	"github.com/nodecast/playcore/internal/pluginhost"
)

func main() {
	configPath := os.Getenv("PLAYCORE_CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./playcore.yaml"); err == nil {
			configPath = "./playcore.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		logger.Warn("failed to load configuration from %s: %v, using defaults", configPath, err)
	} else if configPath != "" {
		logger.Info("configuration loaded from: %s", configPath)
	} else {
		logger.Info("using default configuration")
	}
	cfg := config.Get()

	log := hclog.New(&hclog.LoggerOptions{
		Name:       "playengine",
		Level:      hclog.LevelFromString(cfg.Logging.Level),
		JSONFormat: cfg.Logging.Format == "json",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openHistoryDB(cfg.History)
	if err != nil {
		log.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	historyStore := history.NewStore(db)
	if err := historyStore.Migrate(ctx); err != nil {
		log.Error("failed to migrate history schema", "error", err)
		os.Exit(1)
	}

	bus := events.NewBus(256)
	if err := bus.Start(ctx); err != nil {
		log.Error("failed to start event bus", "error", err)
		os.Exit(1)
	}

	plugins := pluginhost.NewManager(cfg.PluginHost, log)
	if err := plugins.Start(ctx); err != nil {
		log.Error("failed to start plugin host", "error", err)
		os.Exit(1)
	}

	sessionID := idgen.NewMessageID()
	listener := events.NewEngineListener(bus, sessionID)
	loadControl := engine.NewDefaultLoadControl(
		cfg.LoadControl.MinBufferUs,
		cfg.LoadControl.MaxBufferUs,
		cfg.LoadControl.PlaybackBufferUs,
		cfg.LoadControl.MinAvailableMemoryBytes,
	)
	engineCfg := engine.EngineConfig{
		RenderingIntervalMs:          cfg.Engine.RenderingIntervalMs,
		IdleIntervalMs:               cfg.Engine.IdleIntervalMs,
		PreparingSourceIntervalMs:    cfg.Engine.PreparingSourceIntervalMs,
		BackBufferDurationUs:         cfg.Engine.BackBufferDurationUs,
		RetainBackBufferFromKeyframe: cfg.Engine.RetainBackBufferFromKeyframe,
	}

	e := engine.New(clock.NewSystemClock(), engineCfg, nil, nil, loadControl, listener, log)
	e.SetSeekParameters(engine.SeekParameters{
		ToleranceBeforeUs: cfg.Seek.ToleranceBeforeUs,
		ToleranceAfterUs:  cfg.Seek.ToleranceAfterUs,
	})

	recordSessionHistory(ctx, bus, historyStore, sessionID)

	handler := httpapi.NewHandler(e, plugins, bus, log)
	server := httpapi.NewServer(cfg.Server, handler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("http server shutdown error", "error", err)
		}
		e.Release()
		plugins.Shutdown()
		if err := bus.Stop(shutdownCtx); err != nil {
			log.Error("event bus shutdown error", "error", err)
		}
		cancel()
	}()

	log.Info("starting playengine server", "addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("server shutdown complete")
}

func openHistoryDB(cfg config.HistoryConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	}
}

// recordSessionHistory starts a Session row for sessionID and subscribes to
// the Bus so that PLAYBACK_INFO_CHANGED events carrying a non-internal
// discontinuity, and error events, update it, the additive instrumentation
// SPEC_FULL.md §C.1 describes.
func recordSessionHistory(ctx context.Context, bus *events.Bus, store *history.Store, sessionID string) {
	if err := store.StartSession(ctx, sessionID, "", 0, time.Now()); err != nil {
		logger.Warn("failed to start history session %s: %v", sessionID, err)
	}

	bus.Subscribe(events.Filter{Types: []events.Type{events.TypePlaybackInfoChanged}}, func(e events.Event) error {
		data, ok := e.Data.(events.PlaybackInfoChangedData)
		if !ok {
			return nil
		}
		if data.HasDiscontinuity && data.DiscontinuityReason != engine.DiscontinuityNone && data.DiscontinuityReason != engine.DiscontinuityInternal {
			return store.RecordDiscontinuity(ctx, sessionID, data.DiscontinuityReason, data.Info.PositionUs, time.Now())
		}
		return nil
	})

	bus.Subscribe(events.Filter{Types: []events.Type{events.TypeError}}, func(e events.Event) error {
		exc, ok := e.Data.(*engine.PlaybackException)
		if !ok {
			return nil
		}
		return store.RecordError(ctx, sessionID, exc)
	})
}
