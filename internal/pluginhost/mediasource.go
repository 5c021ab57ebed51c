package pluginhost

import (
	"fmt"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/nodecast/playcore/internal/engine"
)

// MediaSourcePlugin is the host-side half of a go-plugin net/rpc Plugin
// that dispenses an engine.MediaSource.
type MediaSourcePlugin struct{}

func (p *MediaSourcePlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return nil, fmt.Errorf("pluginhost: Server is implemented by the plugin binary, not the host")
}

func (p *MediaSourcePlugin) Client(b *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCMediaSource{client: c}, nil
}

// RPCMediaSource adapts a net/rpc connection to an external source process
// into engine.MediaSource. CreatePeriod returns an RPCMediaPeriod bound to
// the same connection, keyed by a plugin-assigned period handle so the
// remote process can multiplex several periods over one connection.
type RPCMediaSource struct {
	client *rpc.Client
}

type prepareReply struct {
	Timeline *engine.Timeline
	Manifest interface{}
}

func (s *RPCMediaSource) Prepare(onSourceInfoRefreshed func(timeline *engine.Timeline, manifest interface{})) error {
	var reply prepareReply
	if err := s.client.Call("MediaSource.Prepare", struct{}{}, &reply); err != nil {
		return fmt.Errorf("pluginhost: mediasource.Prepare: %w", err)
	}
	onSourceInfoRefreshed(reply.Timeline, reply.Manifest)
	return nil
}

func (s *RPCMediaSource) CreatePeriod(id engine.MediaPeriodID) engine.MediaPeriod {
	var reply struct{ Handle string }
	if err := s.client.Call("MediaSource.CreatePeriod", id, &reply); err != nil {
		return nil
	}
	return &RPCMediaPeriod{client: s.client, handle: reply.Handle}
}

func (s *RPCMediaSource) ReleasePeriod(p engine.MediaPeriod) {
	rp, ok := p.(*RPCMediaPeriod)
	if !ok {
		return
	}
	_ = s.client.Call("MediaSource.ReleasePeriod", struct{ Handle string }{Handle: rp.handle}, &struct{}{})
}

func (s *RPCMediaSource) Release() {
	_ = s.client.Call("MediaSource.Release", struct{}{}, &struct{}{})
}

// RPCMediaPeriod adapts one remote period, identified by handle, to
// engine.MediaPeriod.
type RPCMediaPeriod struct {
	client *rpc.Client
	handle string
}

func (p *RPCMediaPeriod) call(method string, args, reply interface{}) error {
	if err := p.client.Call("MediaPeriod."+method, withHandle{Handle: p.handle, Args: args}, reply); err != nil {
		return fmt.Errorf("pluginhost: mediaperiod.%s: %w", method, err)
	}
	return nil
}

// withHandle wraps any per-call args with the period handle the remote
// process uses to look up which period a call targets.
type withHandle struct {
	Handle string
	Args   interface{}
}

func (p *RPCMediaPeriod) Prepare(onPrepared func(period engine.MediaPeriod)) error {
	if err := p.call("Prepare", struct{}{}, &struct{}{}); err != nil {
		return err
	}
	onPrepared(p)
	return nil
}

func (p *RPCMediaPeriod) MaybeThrowPrepareError() error {
	var reply struct{ Error string }
	if err := p.call("MaybeThrowPrepareError", struct{}{}, &reply); err != nil {
		return err
	}
	if reply.Error != "" {
		return fmt.Errorf("pluginhost: remote prepare error: %s", reply.Error)
	}
	return nil
}

func (p *RPCMediaPeriod) GetTrackGroups() interface{} {
	var reply struct{ TrackGroups interface{} }
	_ = p.call("GetTrackGroups", struct{}{}, &reply)
	return reply.TrackGroups
}

func (p *RPCMediaPeriod) SelectTracks(selection interface{}, positionUs int64) (engine.SampleStream, int64, error) {
	var reply struct {
		Stream     engine.SampleStream
		PositionUs int64
	}
	if err := p.call("SelectTracks", struct {
		Selection  interface{}
		PositionUs int64
	}{Selection: selection, PositionUs: positionUs}, &reply); err != nil {
		return nil, positionUs, err
	}
	return reply.Stream, reply.PositionUs, nil
}

func (p *RPCMediaPeriod) DiscardBuffer(positionUs int64, toKeyframe bool) {
	_ = p.call("DiscardBuffer", struct {
		PositionUs int64
		ToKeyframe bool
	}{PositionUs: positionUs, ToKeyframe: toKeyframe}, &struct{}{})
}

func (p *RPCMediaPeriod) ReadDiscontinuity() *int64 {
	var reply struct {
		PositionUs int64
		Present    bool
	}
	if err := p.call("ReadDiscontinuity", struct{}{}, &reply); err != nil || !reply.Present {
		return nil
	}
	return &reply.PositionUs
}

func (p *RPCMediaPeriod) GetBufferedPositionUs() int64 {
	var reply int64Reply
	_ = p.call("GetBufferedPositionUs", struct{}{}, &reply)
	return reply.Value
}

func (p *RPCMediaPeriod) ContinueLoading(positionUs int64) bool {
	var reply boolReply
	_ = p.call("ContinueLoading", struct{ PositionUs int64 }{PositionUs: positionUs}, &reply)
	return reply.Value
}

func (p *RPCMediaPeriod) GetNextLoadPositionUs() int64 {
	var reply int64Reply
	_ = p.call("GetNextLoadPositionUs", struct{}{}, &reply)
	return reply.Value
}

func (p *RPCMediaPeriod) ReevaluateBuffer(positionUs int64) {
	_ = p.call("ReevaluateBuffer", struct{ PositionUs int64 }{PositionUs: positionUs}, &struct{}{})
}

func (p *RPCMediaPeriod) SeekTo(positionUs int64) (int64, error) {
	var reply int64Reply
	if err := p.call("SeekTo", struct{ PositionUs int64 }{PositionUs: positionUs}, &reply); err != nil {
		return positionUs, err
	}
	return reply.Value, nil
}

func (p *RPCMediaPeriod) GetAdjustedSeekPositionUs(positionUs int64) int64 {
	var reply int64Reply
	_ = p.call("GetAdjustedSeekPositionUs", struct{ PositionUs int64 }{PositionUs: positionUs}, &reply)
	return reply.Value
}

func (p *RPCMediaPeriod) IsLoading() bool {
	var reply boolReply
	_ = p.call("IsLoading", struct{}{}, &reply)
	return reply.Value
}

var _ engine.MediaSource = (*RPCMediaSource)(nil)
var _ engine.MediaPeriod = (*RPCMediaPeriod)(nil)
