package engine

import (
	"github.com/hashicorp/go-hclog"

	"github.com/nodecast/playcore/internal/clock"
	"github.com/nodecast/playcore/internal/handler"
)

// Message identifiers the worker's handler.Wrapper dispatches on. Naming
// and message set follow spec.md §4.6.
const (
	msgPrepare int = iota
	msgSetPlayWhenReady
	msgSetRepeatMode
	msgSetShuffleEnabled
	msgDoSomeWork
	msgSeekTo
	msgSetPlaybackParameters
	msgSetSeekParameters
	msgSetForegroundMode
	msgStop
	msgPeriodPrepared
	msgRefreshSourceInfo
	msgSourceContinueLoadingRequested
	msgTrackSelectionInvalidated
	msgPlaybackParametersChangedInternal
	msgSendMessage
	msgSendMessageToTargetThread
	msgRelease
)

// EngineConfig holds the engine's fixed scheduling intervals and buffering
// policy. internal/config loads these from YAML; DefaultEngineConfig gives
// the values spec.md names directly.
type EngineConfig struct {
	RenderingIntervalMs          int64
	IdleIntervalMs               int64
	PreparingSourceIntervalMs    int64
	BackBufferDurationUs         int64
	RetainBackBufferFromKeyframe bool
}

// DefaultEngineConfig returns the interval values spec.md §4.6 names.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RenderingIntervalMs:       10,
		IdleIntervalMs:            1000,
		PreparingSourceIntervalMs: 10,
	}
}

// SeekParameters describes how far a seek may land before or after the
// requested position. The engine stores the value set through
// SetSeekParameters, but no seek, explicit or internal, consults it: every
// seek lands exactly on the resolved position.
type SeekParameters struct {
	ToleranceBeforeUs int64
	ToleranceAfterUs  int64
}

// SeekParametersExact requires landing exactly on the requested position.
var SeekParametersExact = SeekParameters{}

// EventListener receives the engine's published state changes. Analogous to
// viewra's dashboard event publication, but scoped to this engine's own
// external_handler delivery per spec.md §4.7.
type EventListener interface {
	OnPlaybackInfoChanged(operationAcks int, reason DiscontinuityReason, hasDiscontinuity bool, info PlaybackInfo)
}

type prepareArgs struct {
	source        MediaSource
	resetPosition bool
	resetState    bool
}

type seekArgs struct {
	timeline    *Timeline
	windowIndex int
	positionUs  int64
}

type refreshArgs struct {
	timeline *Timeline
	manifest interface{}
}

type foregroundArgs struct {
	enabled bool
	ack     chan struct{}
}

type releaseArgs struct {
	ack chan struct{}
}

// PlaybackEngine is the cooperative single-threaded scheduler: the message
// set of spec.md §4.6 consumed one at a time on its own clock.Clock worker,
// driving a MediaPeriodQueue and a set of Renderers and publishing
// PlaybackInfo snapshots to an EventListener.
type PlaybackEngine struct {
	cfg EngineConfig
	log hclog.Logger

	clock   clock.Clock
	worker  *handler.Wrapper
	publish *handler.Wrapper // posts to the listener's own handler

	listener EventListener

	mediaSource   MediaSource
	queue         *MediaPeriodQueue
	mediaClock    *MediaClock
	renderers     []*RendererHolder
	trackSelector TrackSelector
	loadControl   LoadControl
	pending       *PendingMessageQueue

	playWhenReady      bool
	repeatMode         RepeatMode
	shuffleModeEnabled bool
	seekParameters     SeekParameters
	foregroundMode     bool

	playbackInfo PlaybackInfo
	update       *PlaybackInfoUpdate

	rendererPositionUs int64
	lastPositionUs     int64
	boundPeriodUID     PeriodUID
	released           bool
}

// New returns a PlaybackEngine driven by c, with renderers enabled against
// trackSelector's selections and loadControl governing buffering. listener
// receives PLAYBACK_INFO_CHANGED publications; it may be nil in tests that
// only assert on GetPlaybackInfo.
func New(c clock.Clock, cfg EngineConfig, renderers []Renderer, trackSelector TrackSelector, loadControl LoadControl, listener EventListener, log hclog.Logger) *PlaybackEngine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	e := &PlaybackEngine{
		cfg:           cfg,
		log:           log.Named("engine"),
		clock:         c,
		queue:         NewMediaPeriodQueue(),
		mediaClock:    NewMediaClock(c),
		trackSelector: trackSelector,
		loadControl:   loadControl,
		pending:       NewPendingMessageQueue(),
		listener:      listener,
		playbackInfo:  NewPlaybackInfo(),
		foregroundMode: true,
	}
	e.update = NewPlaybackInfoUpdate(e.playbackInfo)
	for _, r := range renderers {
		e.renderers = append(e.renderers, NewRendererHolder(r))
	}
	e.worker = handler.New(c, e.handleMessage)
	return e
}

// Looper exposes the worker identity for "same thread" checks. The engine
// itself never compares it with PlayerMessage.Handler.
func (e *PlaybackEngine) Looper() interface{} { return e.worker.Looper() }

// GetPlaybackInfo returns the most recently published snapshot. Safe to
// call from any goroutine; see spec.md §5 on positionUs publication.
func (e *PlaybackEngine) GetPlaybackInfo() PlaybackInfo { return e.playbackInfo }

// Prepare begins a new playback session against source.
func (e *PlaybackEngine) Prepare(source MediaSource, resetPosition, resetState bool) {
	e.worker.SendMessage(msgPrepare, prepareArgs{source: source, resetPosition: resetPosition, resetState: resetState})
}

// SetPlayWhenReady toggles user intent to play.
func (e *PlaybackEngine) SetPlayWhenReady(playWhenReady bool) {
	e.worker.SendMessage(msgSetPlayWhenReady, playWhenReady)
}

// SetRepeatMode applies mode.
func (e *PlaybackEngine) SetRepeatMode(mode RepeatMode) {
	e.worker.SendMessage(msgSetRepeatMode, mode)
}

// SetShuffleModeEnabled toggles shuffle navigation.
func (e *PlaybackEngine) SetShuffleModeEnabled(enabled bool) {
	e.worker.SendMessage(msgSetShuffleEnabled, enabled)
}

// SeekTo requests a seek within timeline to (windowIndex, positionUs).
func (e *PlaybackEngine) SeekTo(timeline *Timeline, windowIndex int, positionUs int64) {
	e.worker.SendMessage(msgSeekTo, seekArgs{timeline: timeline, windowIndex: windowIndex, positionUs: positionUs})
}

// SetPlaybackParameters applies new speed/pitch.
func (e *PlaybackEngine) SetPlaybackParameters(params PlaybackParameters) {
	e.worker.SendMessage(msgSetPlaybackParameters, params)
}

// SetSeekParameters applies new seek tolerance.
func (e *PlaybackEngine) SetSeekParameters(params SeekParameters) {
	e.worker.SendMessage(msgSetSeekParameters, params)
}

// SetForegroundMode toggles foreground mode, blocking the caller until the
// worker has processed the change.
func (e *PlaybackEngine) SetForegroundMode(enabled bool) {
	ack := make(chan struct{})
	e.worker.SendMessage(msgSetForegroundMode, foregroundArgs{enabled: enabled, ack: ack})
	<-ack
}

// Stop halts playback, optionally resetting position.
func (e *PlaybackEngine) Stop(resetPosition bool) {
	e.worker.SendMessage(msgStop, resetPosition)
}

// SendPlayerMessage schedules msg for delivery once playback reaches its
// target position.
func (e *PlaybackEngine) SendPlayerMessage(msg *PlayerMessage) {
	e.worker.SendMessage(msgSendMessage, msg)
}

// Release terminates the worker, blocking the caller until fully released.
func (e *PlaybackEngine) Release() {
	ack := make(chan struct{})
	e.worker.SendMessage(msgRelease, releaseArgs{ack: ack})
	<-ack
}

// reportError logs exc and forwards it to the listener if it implements
// PlayerErrorListener; e.listener may be nil or may not implement it, in
// which case the error is only logged.
func (e *PlaybackEngine) reportError(exc *PlaybackException) {
	e.log.Error(exc.Error())
	if l, ok := e.listener.(PlayerErrorListener); ok {
		l.OnPlayerError(exc)
	}
}

// onSourceInfoRefreshed is passed to MediaSource.Prepare as its refresh
// callback; it hops back onto the worker before touching any engine state.
func (e *PlaybackEngine) onSourceInfoRefreshed(timeline *Timeline, manifest interface{}) {
	e.worker.SendMessage(msgRefreshSourceInfo, refreshArgs{timeline: timeline, manifest: manifest})
}

func (e *PlaybackEngine) handleMessage(what int, arg interface{}) {
	if e.released && what != msgRelease {
		return
	}
	switch what {
	case msgPrepare:
		e.onPrepare(arg.(prepareArgs))
	case msgSetPlayWhenReady:
		e.playWhenReady = arg.(bool)
		e.update.IncrementOperationAcks(1)
		e.maybeStartRenderers()
	case msgSetRepeatMode:
		mode := arg.(RepeatMode)
		e.repeatMode = mode
		if !e.queue.UpdateRepeatMode(mode) {
			e.reseekInternal()
		}
		e.update.IncrementOperationAcks(1)
	case msgSetShuffleEnabled:
		enabled := arg.(bool)
		e.shuffleModeEnabled = enabled
		if !e.queue.UpdateShuffleModeEnabled(enabled) {
			e.reseekInternal()
		}
		e.update.IncrementOperationAcks(1)
	case msgDoSomeWork:
		e.doSomeWork()
	case msgSeekTo:
		e.onSeekTo(arg.(seekArgs))
	case msgSetPlaybackParameters:
		params := arg.(PlaybackParameters)
		e.mediaClock.SetPlaybackParameters(params)
		e.update.IncrementOperationAcks(1)
	case msgSetSeekParameters:
		e.seekParameters = arg.(SeekParameters)
		e.update.IncrementOperationAcks(1)
	case msgSetForegroundMode:
		e.onSetForegroundMode(arg.(foregroundArgs))
	case msgStop:
		e.onStop(arg.(bool))
	case msgPeriodPrepared:
		e.onPeriodPrepared(arg.(MediaPeriod))
	case msgRefreshSourceInfo:
		e.onRefreshSourceInfo(arg.(refreshArgs))
	case msgSourceContinueLoadingRequested:
		e.scheduleWorkSoon()
	case msgTrackSelectionInvalidated:
		e.scheduleWorkSoon()
	case msgPlaybackParametersChangedInternal:
		// MediaClock already applied the change; nothing further to do
		// besides republish on next tick.
	case msgSendMessage:
		e.pending.Add(e.playbackInfo.Timeline, arg.(*PlayerMessage))
	case msgSendMessageToTargetThread:
		msg := arg.(*PlayerMessage)
		if msg.Target != nil {
			_ = msg.Target(msg.Payload)
		}
		msg.MarkAsProcessed(true)
	case msgRelease:
		e.onRelease(arg.(releaseArgs))
	}
	e.maybePublish()
}

func (e *PlaybackEngine) onPrepare(args prepareArgs) {
	if args.resetState {
		e.queue.Clear(false)
		e.pending = NewPendingMessageQueue()
	}
	e.mediaSource = args.source
	e.playbackInfo = e.playbackInfo.WithPlaybackState(StateBuffering)
	e.update.SetPlaybackInfo(e.playbackInfo)
	e.update.IncrementOperationAcks(1)
	if e.mediaSource != nil {
		_ = e.mediaSource.Prepare(e.onSourceInfoRefreshed)
	}
	e.scheduleWorkSoon()
}

func (e *PlaybackEngine) onRefreshSourceInfo(args refreshArgs) {
	e.queue.SetTimeline(args.timeline)
	e.playbackInfo = e.playbackInfo.WithTimeline(args.timeline)
	e.playbackInfo.Manifest = args.manifest
	e.update.SetPlaybackInfo(e.playbackInfo)
	e.pending.ResolveAll(args.timeline)
	e.scheduleWorkSoon()
}

func (e *PlaybackEngine) onPeriodPrepared(mp MediaPeriod) {
	for h := e.queue.GetFrontPeriod(); h != nil; h = h.next {
		if h.MediaPeriod == mp {
			h.Prepared = true
			break
		}
	}
	e.scheduleWorkSoon()
}

func (e *PlaybackEngine) onSeekTo(args seekArgs) {
	uid, posUs, ok := args.timeline.GetPeriodPosition(args.windowIndex, args.positionUs)
	if !ok {
		e.update.SetPositionDiscontinuity(DiscontinuitySeekAdjustment)
		e.playbackInfo = e.playbackInfo.WithPositions(TimeUnset, TimeUnset, e.playbackInfo.BufferedPositionUs, e.playbackInfo.TotalBufferedDurationUs)
		e.update.SetPlaybackInfo(e.playbackInfo)
		e.update.IncrementOperationAcks(1)
		return
	}
	id := e.queue.ResolveMediaPeriodIdForAds(uid, posUs)
	current := e.playbackInfo.PlayingPeriodID
	if current.Equal(id) && roundToMs(posUs) == roundToMs(e.playbackInfo.PositionUs) {
		e.update.IncrementOperationAcks(1)
		return
	}
	e.seekToPeriodPosition(id, posUs, DiscontinuitySeek)
	e.update.IncrementOperationAcks(1)
}

func roundToMs(us int64) int64 { return us / 1000 }

func (e *PlaybackEngine) reseekInternal() {
	if !e.queue.HasPlayingPeriod() {
		return
	}
	id := e.queue.GetPlayingPeriod().Info.ID
	e.seekToPeriodPosition(id, e.playbackInfo.PositionUs, DiscontinuityInternal)
}

func (e *PlaybackEngine) seekToPeriodPosition(id MediaPeriodID, positionUs int64, reason DiscontinuityReason) {
	e.queue.Clear(true)
	e.mediaClock.ResetPosition(positionUs)
	e.rendererPositionUs = positionUs
	e.lastPositionUs = positionUs
	e.playbackInfo = e.playbackInfo.WithPlayingPeriod(id, positionUs).WithPositions(positionUs, positionUs, positionUs, 0)
	e.update.SetPlaybackInfo(e.playbackInfo)
	e.update.SetPositionDiscontinuity(reason)
	e.scheduleWorkSoon()
}

func (e *PlaybackEngine) onSetForegroundMode(args foregroundArgs) {
	e.foregroundMode = args.enabled
	if !args.enabled {
		for _, h := range e.renderers {
			if h.State == RendererDisabled {
				h.Reset()
			}
		}
	}
	close(args.ack)
}

func (e *PlaybackEngine) onStop(resetPosition bool) {
	for _, h := range e.renderers {
		h.Stop()
		h.Disable()
	}
	e.playbackInfo = e.playbackInfo.WithPlaybackState(StateIdle)
	if resetPosition {
		e.queue.Clear(false)
		e.mediaSource = nil
		e.playbackInfo = e.playbackInfo.WithPlayingPeriod(MediaPeriodID{}, 0).WithPositions(0, 0, 0, 0)
	}
	e.update.SetPlaybackInfo(e.playbackInfo)
	e.update.IncrementOperationAcks(1)
}

func (e *PlaybackEngine) onRelease(args releaseArgs) {
	for _, h := range e.renderers {
		h.Reset()
	}
	if e.mediaSource != nil {
		e.mediaSource.Release()
	}
	e.queue.Clear(false)
	e.released = true
	close(args.ack)
}

func (e *PlaybackEngine) maybeStartRenderers() {
	for _, h := range e.renderers {
		if h.State == RendererEnabled {
			if e.playWhenReady {
				h.Start()
			}
		} else if h.State == RendererStarted && !e.playWhenReady {
			h.Stop()
		}
	}
	if e.playWhenReady {
		e.mediaClock.Start()
	} else {
		e.mediaClock.Stop()
	}
	e.scheduleWorkSoon()
}

// nextMediaPeriodInfoToEnqueue computes the info for the period the queue
// should load next. When the queue is empty and the engine already knows
// its playing period (e.g. immediately after a seek cleared the queue), it
// resumes from that known id/position rather than defaulting to the first
// period of the timeline.
func (e *PlaybackEngine) nextMediaPeriodInfoToEnqueue() *MediaPeriodInfo {
	if e.queue.GetLoadingPeriod() == nil && e.playbackInfo.PlayingPeriodID.PeriodUID != "" {
		id := e.playbackInfo.PlayingPeriodID
		idx := e.queue.timeline.GetIndexOfPeriod(id.PeriodUID)
		isLastInTimeline := idx == IndexUnset
		if idx != IndexUnset {
			isLastInTimeline = e.queue.timeline.GetNextPeriodIndex(idx, e.repeatMode, e.shuffleModeEnabled) == IndexUnset
		}
		return &MediaPeriodInfo{
			ID:                         id,
			StartPositionUs:            e.playbackInfo.PositionUs,
			RequestedContentPositionUs: e.playbackInfo.PositionUs,
			DurationUs:                 e.queue.periodDurationUs(id.PeriodUID),
			IsLastInTimeline:           isLastInTimeline,
		}
	}
	return e.queue.GetNextMediaPeriodInfo(e.rendererPositionUs)
}

// bindRenderersToPeriod enables every renderer against h, the way the
// engine binds SampleStreams to renderers on a period transition. Track
// selection itself is an external collaborator's responsibility
// (TrackSelector); this binds with nil formats/stream as a placeholder
// until a concrete TrackSelector result is wired in.
func (e *PlaybackEngine) bindRenderersToPeriod(h *MediaPeriodHolder) {
	for _, rh := range e.renderers {
		if rh.State != RendererDisabled {
			rh.Disable()
		}
		if err := rh.Enable(nil, nil, nil, h.Info.StartPositionUs, false, h.RendererOffsetUs, h.Info.ID); err != nil {
			e.log.Warn("renderer enable failed", "error", err)
			continue
		}
		if e.playWhenReady {
			rh.Start()
		}
	}
}

func (e *PlaybackEngine) scheduleWorkSoon() {
	e.worker.RemoveMessages(msgDoSomeWork)
	e.worker.SendEmptyMessage(msgDoSomeWork)
}

func (e *PlaybackEngine) scheduleWorkAfter(delayMs int64) {
	e.worker.RemoveMessages(msgDoSomeWork)
	e.worker.PostDelayed(func() { e.worker.SendEmptyMessage(msgDoSomeWork) }, delayMs)
}

// doSomeWork is one scheduler tick, per spec.md §4.6. Its order: reevaluate
// the loading buffer and enqueue the next period, advance the playing and
// reading cursors, continue loading, then sync position and render, then
// apply the ENDED/READY/BUFFERING transition.
func (e *PlaybackEngine) doSomeWork() {
	e.queue.ReevaluateBuffer(e.rendererPositionUs)

	if e.mediaSource != nil && e.queue.ShouldLoadNextMediaPeriod() {
		info := e.nextMediaPeriodInfoToEnqueue()
		if info != nil {
			mp := e.queue.EnqueueNextMediaPeriod(e.mediaSource, *info)
			e.playbackInfo = e.playbackInfo.WithLoadingPeriod(info.ID)
			e.update.SetPlaybackInfo(e.playbackInfo)
			if err := mp.Prepare(func(prepared MediaPeriod) {
				e.worker.SendMessage(msgPeriodPrepared, prepared)
			}); err != nil {
				e.reportError(NewSourceError("period prepare failed", err))
			}
		}
	}

	e.advancePlayingPeriodIfReady()
	e.maybeAdvanceReadingPeriod()

	if loading := e.queue.GetLoadingPeriod(); loading != nil {
		e.maybeContinueLoading(loading)
	}

	if !e.queue.HasPlayingPeriod() {
		e.scheduleWorkAfter(e.cfg.PreparingSourceIntervalMs)
		return
	}

	playing := e.queue.GetPlayingPeriod()
	if e.boundPeriodUID != playing.Info.ID.PeriodUID {
		e.bindRenderersToPeriod(playing)
		e.boundPeriodUID = playing.Info.ID.PeriodUID
		e.playbackInfo = e.playbackInfo.WithPlayingPeriod(playing.Info.ID, playing.Info.StartPositionUs)
		e.update.SetPlaybackInfo(e.playbackInfo)
	}
	if d := playing.MediaPeriod.ReadDiscontinuity(); d != nil {
		e.rendererPositionUs = *d
		e.mediaClock.ResetPosition(*d)
		e.update.SetPositionDiscontinuity(DiscontinuityInternal)
	} else {
		e.rendererPositionUs = e.mediaClock.SyncAndGetPositionUs()
	}
	newPositionUs := e.rendererPositionUs - playing.RendererOffsetUs

	playingIdx := e.queue.timeline.GetIndexOfPeriod(playing.Info.ID.PeriodUID)
	e.pending.DeliverUpTo(playingIdx, e.lastPositionUs, playingIdx, newPositionUs)
	e.lastPositionUs = newPositionUs

	playing.MediaPeriod.DiscardBuffer(newPositionUs-e.cfg.BackBufferDurationUs, e.cfg.RetainBackBufferFromKeyframe)

	wallClockElapsedUs := e.clock.ElapsedRealtimeMs() * 1000
	enabledCount := 0
	renderersEnded := true
	renderersReadyOrEnded := true
	for i, h := range e.renderers {
		if h.State == RendererDisabled {
			continue
		}
		enabledCount++
		if h.State == RendererStarted {
			if err := h.Renderer.Render(e.rendererPositionUs, wallClockElapsedUs); err != nil {
				e.reportError(NewRendererError("render failed", i, err))
			}
		}
		ended := h.Renderer.IsEnded()
		renderersEnded = renderersEnded && ended
		readyOrEnded := ended || h.Renderer.IsReady() || h.WaitingForNextStream
		renderersReadyOrEnded = renderersReadyOrEnded && readyOrEnded
	}

	bufferedPositionUs := playing.MediaPeriod.GetBufferedPositionUs()
	totalBufferedDurationUs := bufferedPositionUs - newPositionUs
	e.playbackInfo = e.playbackInfo.WithPositions(newPositionUs, newPositionUs, bufferedPositionUs, totalBufferedDurationUs)

	durationUs := playing.Info.DurationUs
	switch {
	case renderersEnded && (durationUs == TimeUnset || durationUs <= newPositionUs) && playing.Info.IsLastInTimeline:
		e.playbackInfo = e.playbackInfo.WithPlaybackState(StateEnded)
		e.stopRenderers()
	case e.playbackInfo.PlaybackState == StateReady && !e.renderersSatisfied(playing, newPositionUs, enabledCount, renderersReadyOrEnded):
		e.playbackInfo = e.playbackInfo.WithPlaybackState(StateBuffering)
	case e.playbackInfo.PlaybackState == StateBuffering && e.shouldTransitionToReady(playing, newPositionUs, enabledCount, renderersReadyOrEnded, totalBufferedDurationUs):
		e.playbackInfo = e.playbackInfo.WithPlaybackState(StateReady)
	}
	e.update.SetPlaybackInfo(e.playbackInfo)

	if e.playWhenReady {
		e.scheduleWorkAfter(e.cfg.RenderingIntervalMs)
	} else {
		e.scheduleWorkAfter(e.cfg.IdleIntervalMs)
	}
}

// maybeContinueLoading asks loading's MediaPeriod to load further data if
// loadControl agrees there is room, mirroring maybeContinueLoading's
// TIME_END_OF_SOURCE short-circuit.
func (e *PlaybackEngine) maybeContinueLoading(loading *MediaPeriodHolder) {
	nextLoadPositionUs := loading.MediaPeriod.GetNextLoadPositionUs()
	if nextLoadPositionUs == TimeEndOfSource {
		e.playbackInfo = e.playbackInfo.WithIsLoading(false)
		return
	}
	bufferedDurationUs := nextLoadPositionUs - e.rendererPositionUs
	if e.loadControl == nil {
		return
	}
	shouldContinue := e.loadControl.ShouldContinueLoading(bufferedDurationUs, e.mediaClock.PlaybackParameters().Speed)
	e.playbackInfo = e.playbackInfo.WithIsLoading(shouldContinue)
	if shouldContinue {
		loading.MediaPeriod.ContinueLoading(e.rendererPositionUs)
	}
}

// isTimelineReady reports whether playback at positionUs within playing can
// proceed without renderer input: either playing's duration hasn't been
// reached yet, or a prepared (or ad) successor is already lined up.
func (e *PlaybackEngine) isTimelineReady(playing *MediaPeriodHolder, positionUs int64) bool {
	durationUs := playing.Info.DurationUs
	if durationUs == TimeUnset || positionUs < durationUs {
		return true
	}
	next := playing.next
	return next != nil && (next.Prepared || next.Info.ID.IsAd())
}

// renderersSatisfied reports whether the currently enabled renderers (or,
// absent any, the timeline itself) are ready to keep playback at READY.
func (e *PlaybackEngine) renderersSatisfied(playing *MediaPeriodHolder, positionUs int64, enabledCount int, renderersReadyOrEnded bool) bool {
	if enabledCount == 0 {
		return e.isTimelineReady(playing, positionUs)
	}
	return renderersReadyOrEnded
}

// shouldTransitionToReady reports whether BUFFERING should give way to
// READY: renderers satisfied, and either nothing is loading or loadControl
// says start anyway. Unlike original_source this doesn't special-case a
// fully-buffered loading period (isFullyBuffered/bufferedToEnd) — the
// engine doesn't track per-period fill state, so the loading case always
// defers to loadControl.ShouldStartPlayback.
func (e *PlaybackEngine) shouldTransitionToReady(playing *MediaPeriodHolder, positionUs int64, enabledCount int, renderersReadyOrEnded bool, totalBufferedDurationUs int64) bool {
	if !e.renderersSatisfied(playing, positionUs, enabledCount, renderersReadyOrEnded) {
		return false
	}
	if !e.playbackInfo.IsLoading {
		return true
	}
	if e.loadControl == nil {
		return false
	}
	return e.loadControl.ShouldStartPlayback(totalBufferedDurationUs, e.mediaClock.PlaybackParameters().Speed)
}

// stopRenderers stops every started renderer without disabling it, on
// transition to ENDED.
func (e *PlaybackEngine) stopRenderers() {
	for _, h := range e.renderers {
		h.Stop()
	}
}

// maybeAdvanceReadingPeriod advances the reading cursor once every enabled
// renderer has read its current stream to end, rebinding renderers whose
// stream identity survives the transition via ReplaceStream and draining
// the rest via MarkStreamFinal — the stream-replace-vs-drain branching
// updatePeriods performs on every reading-period advance.
func (e *PlaybackEngine) maybeAdvanceReadingPeriod() {
	reading := e.queue.GetReadingPeriod()
	if reading == nil {
		return
	}
	if reading.Info.IsLastInTimeline {
		for _, h := range e.renderers {
			if h.State == RendererDisabled || h.WaitingForNextStream {
				continue
			}
			if h.Renderer.HasReadStreamToEnd() {
				h.MarkStreamFinal()
			}
		}
		return
	}
	next := reading.next
	if next == nil || !next.Prepared {
		return
	}
	for _, h := range e.renderers {
		if h.State == RendererDisabled {
			continue
		}
		if !h.Renderer.HasReadStreamToEnd() {
			return
		}
	}
	e.queue.AdvanceReadingPeriod()
	for i, h := range e.renderers {
		if h.State == RendererDisabled {
			continue
		}
		if h.SurvivesTransition(next.Info.ID) {
			if err := h.Renderer.ReplaceStream(nil, nil, next.RendererOffsetUs); err != nil {
				e.reportError(NewRendererError("replace stream failed", i, err))
			}
			continue
		}
		h.MarkStreamFinal()
	}
}

func (e *PlaybackEngine) advancePlayingPeriodIfReady() {
	for e.playWhenReady {
		playing := e.queue.GetPlayingPeriod()
		if playing == nil {
			return
		}
		next := playing.next
		if next == nil || !next.Prepared {
			return
		}
		startInRendererTime := next.RendererOffsetUs
		if e.rendererPositionUs < startInRendererTime {
			return
		}
		advanced := e.queue.AdvancePlayingPeriod()
		reason := DiscontinuityPeriodTransition
		if playing.Info.ID.IsAd() || advanced.Info.ID.IsAd() {
			reason = DiscontinuityAdInsertion
		}
		e.playbackInfo = e.playbackInfo.WithPlayingPeriod(advanced.Info.ID, advanced.Info.StartPositionUs)
		e.update.SetPositionDiscontinuity(reason)
	}
}

func (e *PlaybackEngine) maybePublish() {
	if !e.update.HasPendingChange() {
		return
	}
	acks := e.update.OperationAcks()
	reason, hasDiscontinuity := e.update.DiscontinuityInfo()
	info := e.update.PlaybackInfo
	e.playbackInfo = info
	e.update.Reset()
	if e.listener != nil {
		e.listener.OnPlaybackInfoChanged(acks, reason, hasDiscontinuity, info)
	}
}
