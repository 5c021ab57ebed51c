package pluginhost

import (
	"fmt"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/nodecast/playcore/internal/engine"
)

// RendererPlugin is the host-side half of a go-plugin net/rpc Plugin that
// dispenses an engine.Renderer. The plugin binary itself implements Server;
// the host only ever calls Client.
type RendererPlugin struct{}

func (p *RendererPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return nil, fmt.Errorf("pluginhost: Server is implemented by the plugin binary, not the host")
}

func (p *RendererPlugin) Client(b *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCRenderer{client: c}, nil
}

// RPCRenderer adapts a net/rpc connection to an external renderer process
// into engine.Renderer. Every method is one blocking RPC call; formats,
// stream, and config cross the wire as opaque gob-encoded values exactly as
// the engine treats them internally (it never inspects their contents),
// matching the "external collaborator, only interface specified" contract
// engine/renderer.go documents.
type RPCRenderer struct {
	client *rpc.Client
}

type enableArgs struct {
	Config           engine.RendererConfiguration
	Formats          []interface{}
	Stream           engine.SampleStream
	StartPositionUs  int64
	Joining          bool
	RendererOffsetUs int64
}

type replaceStreamArgs struct {
	Formats          []interface{}
	Stream           engine.SampleStream
	RendererOffsetUs int64
}

type renderArgs struct {
	PositionUs        int64
	ElapsedRealtimeUs int64
}

type boolReply struct{ Value bool }
type int64Reply struct{ Value int64 }
type trackTypeReply struct{ Value int }
type hasClockReply struct{ Value bool }

func (r *RPCRenderer) call(method string, args, reply interface{}) error {
	if err := r.client.Call("Renderer."+method, args, reply); err != nil {
		return fmt.Errorf("pluginhost: renderer.%s: %w", method, err)
	}
	return nil
}

func (r *RPCRenderer) TrackType() engine.TrackType {
	var reply trackTypeReply
	if err := r.call("TrackType", struct{}{}, &reply); err != nil {
		return engine.TrackNone
	}
	return engine.TrackType(reply.Value)
}

func (r *RPCRenderer) Enable(config engine.RendererConfiguration, formats []interface{}, stream engine.SampleStream, startPositionUs int64, joining bool, rendererOffsetUs int64) error {
	return r.call("Enable", enableArgs{
		Config: config, Formats: formats, Stream: stream,
		StartPositionUs: startPositionUs, Joining: joining, RendererOffsetUs: rendererOffsetUs,
	}, &struct{}{})
}

func (r *RPCRenderer) Start() { _ = r.call("Start", struct{}{}, &struct{}{}) }
func (r *RPCRenderer) Stop()  { _ = r.call("Stop", struct{}{}, &struct{}{}) }
func (r *RPCRenderer) Disable() { _ = r.call("Disable", struct{}{}, &struct{}{}) }
func (r *RPCRenderer) Reset()   { _ = r.call("Reset", struct{}{}, &struct{}{}) }

func (r *RPCRenderer) ReplaceStream(formats []interface{}, stream engine.SampleStream, rendererOffsetUs int64) error {
	return r.call("ReplaceStream", replaceStreamArgs{Formats: formats, Stream: stream, RendererOffsetUs: rendererOffsetUs}, &struct{}{})
}

func (r *RPCRenderer) Render(positionUs, elapsedRealtimeUs int64) error {
	return r.call("Render", renderArgs{PositionUs: positionUs, ElapsedRealtimeUs: elapsedRealtimeUs}, &struct{}{})
}

func (r *RPCRenderer) IsReady() bool {
	var reply boolReply
	_ = r.call("IsReady", struct{}{}, &reply)
	return reply.Value
}

func (r *RPCRenderer) IsEnded() bool {
	var reply boolReply
	_ = r.call("IsEnded", struct{}{}, &reply)
	return reply.Value
}

func (r *RPCRenderer) HasReadStreamToEnd() bool {
	var reply boolReply
	_ = r.call("HasReadStreamToEnd", struct{}{}, &reply)
	return reply.Value
}

func (r *RPCRenderer) SetCurrentStreamFinal() { _ = r.call("SetCurrentStreamFinal", struct{}{}, &struct{}{}) }

func (r *RPCRenderer) ResetPosition(us int64) {
	_ = r.call("ResetPosition", struct{ PositionUs int64 }{PositionUs: us}, &struct{}{})
}

func (r *RPCRenderer) GetReadingPositionUs() int64 {
	var reply int64Reply
	_ = r.call("GetReadingPositionUs", struct{}{}, &reply)
	return reply.Value
}

func (r *RPCRenderer) SetOperatingRate(speed float64) error {
	return r.call("SetOperatingRate", struct{ Speed float64 }{Speed: speed}, &struct{}{})
}

// MediaClock returns r itself, proxying RendererClock calls over the same
// connection, if the remote process reports clock capability (typically the
// audio renderer's hardware clock); otherwise nil, matching the in-process
// contract that most renderers have no RendererClock.
func (r *RPCRenderer) MediaClock() engine.RendererClock {
	var reply hasClockReply
	if err := r.call("HasMediaClock", struct{}{}, &reply); err != nil || !reply.Value {
		return nil
	}
	return r
}

func (r *RPCRenderer) PositionUs() (int64, bool) {
	var reply struct {
		PositionUs int64
		OK         bool
	}
	if err := r.call("ClockPositionUs", struct{}{}, &reply); err != nil {
		return 0, false
	}
	return reply.PositionUs, reply.OK
}

func (r *RPCRenderer) SetPlaybackParameters(p engine.PlaybackParameters) engine.PlaybackParameters {
	var reply engine.PlaybackParameters
	if err := r.call("ClockSetPlaybackParameters", p, &reply); err != nil {
		return p
	}
	return reply
}

func (r *RPCRenderer) PlaybackParameters() engine.PlaybackParameters {
	var reply engine.PlaybackParameters
	_ = r.call("ClockPlaybackParameters", struct{}{}, &reply)
	return reply
}

var _ engine.Renderer = (*RPCRenderer)(nil)
var _ engine.RendererClock = (*RPCRenderer)(nil)
