package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodecast/playcore/internal/clock"
	"github.com/nodecast/playcore/internal/config"
	"github.com/nodecast/playcore/internal/engine"
	"github.com/nodecast/playcore/internal/events"
	"github.com/nodecast/playcore/internal/pluginhost"
)

type fakeRenderer struct{}

func (fakeRenderer) TrackType() engine.TrackType { return engine.TrackAudio }
func (fakeRenderer) Enable(engine.RendererConfiguration, []interface{}, engine.SampleStream, int64, bool, int64) error {
	return nil
}
func (fakeRenderer) Start()                     {}
func (fakeRenderer) Stop()                      {}
func (fakeRenderer) Disable()                   {}
func (fakeRenderer) Reset()                     {}
func (fakeRenderer) ReplaceStream([]interface{}, engine.SampleStream, int64) error { return nil }
func (fakeRenderer) Render(int64, int64) error  { return nil }
func (fakeRenderer) IsReady() bool              { return true }
func (fakeRenderer) IsEnded() bool              { return false }
func (fakeRenderer) HasReadStreamToEnd() bool   { return false }
func (fakeRenderer) SetCurrentStreamFinal()     {}
func (fakeRenderer) ResetPosition(int64)        {}
func (fakeRenderer) GetReadingPositionUs() int64 { return 0 }
func (fakeRenderer) SetOperatingRate(float64) error { return nil }
func (fakeRenderer) MediaClock() engine.RendererClock { return nil }

type alwaysReadyLoadControl struct{}

func (alwaysReadyLoadControl) ShouldContinueLoading(int64, float64) bool { return true }
func (alwaysReadyLoadControl) ShouldStartPlayback(int64, float64) bool   { return true }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	vc := clock.NewVirtualClock()
	e := engine.New(vc, engine.DefaultEngineConfig(), []engine.Renderer{fakeRenderer{}}, nil, alwaysReadyLoadControl{}, nil, nil)
	bus := events.NewBus(16)
	plugins := pluginhost.NewManager(config.PluginHostConfig{PluginDir: t.TempDir()}, hclog.NewNullLogger())
	h := NewHandler(e, plugins, bus, hclog.NewNullLogger())
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080, EnableCORS: true}, h)
}

func TestGetPlaybackInfoReturnsIdleSnapshot(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/playback/info", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var info engine.PlaybackInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, engine.StateIdle, info.PlaybackState)
}

func TestPrepareWithMissingPluginBinaryReturnsServiceUnavailable(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(prepareRequest{SourceID: "main", Binary: "does-not-exist"})
	req := httptest.NewRequest(http.MethodPost, "/v1/playback/prepare", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetRepeatModeRejectsUnknownMode(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(repeatModeRequest{Mode: "sideways"})
	req := httptest.NewRequest(http.MethodPut, "/v1/playback/repeat-mode", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetRepeatModeAcceptsKnownMode(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(repeatModeRequest{Mode: "all"})
	req := httptest.NewRequest(http.MethodPut, "/v1/playback/repeat-mode", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSetPlaybackParametersAccepted(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(engine.PlaybackParameters{Speed: 1.5, Pitch: 1})
	req := httptest.NewRequest(http.MethodPut, "/v1/playback/parameters", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestCorsPreflightReturnsNoContent(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/playback/info", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
