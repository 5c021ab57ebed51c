package engine

// MaxQueuedPeriods bounds how far the queue will load ahead of playback.
const MaxQueuedPeriods = 100

// MediaPeriodInfo describes one period instance the queue wants prepared:
// its identity, where within the period playback starts, and its known
// duration.
type MediaPeriodInfo struct {
	ID                         MediaPeriodID
	StartPositionUs            int64
	RequestedContentPositionUs int64
	DurationUs                 int64
	IsLastInTimeline           bool
}

// MediaPeriodHolder is one node in the queue's linked list: a period that
// has been requested from the MediaSource, possibly still loading.
type MediaPeriodHolder struct {
	Info                MediaPeriodInfo
	MediaPeriod         MediaPeriod
	RendererOffsetUs    int64
	Prepared            bool
	TrackSelectorResult interface{}

	source   MediaSource
	released bool
	next     *MediaPeriodHolder
}

// release returns h's MediaPeriod to the MediaSource that created it.
// Idempotent: safe to call on a holder that may already have been released
// by a previous rotation.
func (h *MediaPeriodHolder) release() {
	if h.released {
		return
	}
	h.released = true
	if h.source != nil {
		h.source.ReleasePeriod(h.MediaPeriod)
	}
}

// PeriodID is a convenience accessor over Info.ID.
func (h *MediaPeriodHolder) PeriodID() MediaPeriodID { return h.Info.ID }

// MediaPeriodQueue owns the ordered chain of MediaPeriodHolders and the
// playing/reading/loading cursors into it. The holder containing the
// playing period is always the front of the chain; the loading holder is
// always the tail; the reading cursor lies between them inclusive.
type MediaPeriodQueue struct {
	timeline           *Timeline
	repeatMode         RepeatMode
	shuffleModeEnabled bool

	playing *MediaPeriodHolder
	reading *MediaPeriodHolder
	loading *MediaPeriodHolder
	length  int
}

// NewMediaPeriodQueue returns an empty queue over an empty timeline.
func NewMediaPeriodQueue() *MediaPeriodQueue {
	return &MediaPeriodQueue{timeline: NewTimeline(nil, nil)}
}

// SetTimeline updates the timeline reference used to compute successor
// periods; it does not itself touch the holder chain (UpdateQueuedPeriods
// does that).
func (q *MediaPeriodQueue) SetTimeline(t *Timeline) {
	q.timeline = t
}

// UpdateRepeatMode applies mode. Returns false when the loading holder's
// period is no longer in the timeline (the engine must then reseek the
// current position to reconverge). It does not compare queued successors
// against the new mode, so a successor the new mode would not pick stays
// queued and the call returns true.
func (q *MediaPeriodQueue) UpdateRepeatMode(mode RepeatMode) bool {
	q.repeatMode = mode
	return q.successorStillValid()
}

// UpdateShuffleModeEnabled applies enabled, with the same invalidation
// contract as UpdateRepeatMode.
func (q *MediaPeriodQueue) UpdateShuffleModeEnabled(enabled bool) bool {
	q.shuffleModeEnabled = enabled
	return q.successorStillValid()
}

func (q *MediaPeriodQueue) successorStillValid() bool {
	if q.loading == nil {
		return true
	}
	idx := q.timeline.GetIndexOfPeriod(q.loading.Info.ID.PeriodUID)
	if idx == IndexUnset {
		return false
	}
	return true
}

// ShouldLoadNextMediaPeriod reports whether the queue has room and an
// adjacent period exists to load.
func (q *MediaPeriodQueue) ShouldLoadNextMediaPeriod() bool {
	if q.length >= MaxQueuedPeriods {
		return false
	}
	if q.loading == nil {
		return q.playing == nil && !q.timeline.IsEmpty()
	}
	return q.nextPeriodIndexAfter(q.loading.Info.ID.PeriodUID) != IndexUnset
}

func (q *MediaPeriodQueue) nextPeriodIndexAfter(uid PeriodUID) int {
	idx := q.timeline.GetIndexOfPeriod(uid)
	if idx == IndexUnset {
		return IndexUnset
	}
	return q.timeline.GetNextPeriodIndex(idx, q.repeatMode, q.shuffleModeEnabled)
}

// GetNextMediaPeriodInfo computes the MediaPeriodInfo for the period that
// should be enqueued after the current loading holder (or the very first
// period, if the queue is empty), resolving ad insertion via
// ResolveMediaPeriodIdForAds. Returns nil if there is no successor.
func (q *MediaPeriodQueue) GetNextMediaPeriodInfo(rendererPositionUs int64) *MediaPeriodInfo {
	if q.loading == nil {
		if q.timeline.IsEmpty() {
			return nil
		}
		uid, posUs, ok := q.timeline.GetPeriodPosition(0, TimeUnset)
		if !ok {
			return nil
		}
		id := q.ResolveMediaPeriodIdForAds(uid, posUs)
		return &MediaPeriodInfo{
			ID:                         id,
			StartPositionUs:            posUs,
			RequestedContentPositionUs: posUs,
			DurationUs:                 q.periodDurationUs(uid),
			IsLastInTimeline:           q.timeline.GetNextPeriodIndex(0, q.repeatMode, q.shuffleModeEnabled) == IndexUnset,
		}
	}

	prevIdx := q.timeline.GetIndexOfPeriod(q.loading.Info.ID.PeriodUID)
	if prevIdx == IndexUnset {
		return nil
	}
	prev := q.timeline.GetPeriod(prevIdx)

	if q.loading.Info.ID.IsAd() {
		// Another ad in the same group, or content resuming at the ad's
		// content position.
		group := prev.AdGroups[q.loading.Info.ID.AdGroupIndex]
		nextAdIndex := q.loading.Info.ID.AdIndexInGroup + 1
		if nextAdIndex < group.AdCount() {
			id := NewAdMediaPeriodID(prev.UID, q.loading.Info.ID.AdGroupIndex, nextAdIndex)
			return &MediaPeriodInfo{ID: id, StartPositionUs: 0, RequestedContentPositionUs: group.TimeUs, DurationUs: group.AdDurationsUs[nextAdIndex]}
		}
		id := NewContentMediaPeriodID(prev.UID).WithNextAdGroupIndex(q.nextAdGroupIndexAfter(prev, q.loading.Info.ID.AdGroupIndex))
		return &MediaPeriodInfo{ID: id, StartPositionUs: group.TimeUs, RequestedContentPositionUs: group.TimeUs, DurationUs: q.periodDurationUs(prev.UID)}
	}

	nextIdx := q.timeline.GetNextPeriodIndex(prevIdx, q.repeatMode, q.shuffleModeEnabled)
	if nextIdx == IndexUnset {
		return nil
	}
	nextPeriod := q.timeline.GetPeriod(nextIdx)
	id := q.ResolveMediaPeriodIdForAds(nextPeriod.UID, 0)
	return &MediaPeriodInfo{
		ID:                         id,
		StartPositionUs:            0,
		RequestedContentPositionUs: 0,
		DurationUs:                 nextPeriod.DurationUs,
		IsLastInTimeline:           q.timeline.GetNextPeriodIndex(nextIdx, q.repeatMode, q.shuffleModeEnabled) == IndexUnset,
	}
}

func (q *MediaPeriodQueue) periodDurationUs(uid PeriodUID) int64 {
	p, ok := q.timeline.GetPeriodByUID(uid)
	if !ok {
		return TimeUnset
	}
	return p.DurationUs
}

// ResolveMediaPeriodIdForAds picks the first unplayed ad group of the
// period at or before contentPositionUs, returning an ad id for it; if none
// is due, returns a content id carrying the index of the next ad group that
// will interrupt playback (or IndexUnset if none remain).
func (q *MediaPeriodQueue) ResolveMediaPeriodIdForAds(periodUID PeriodUID, contentPositionUs int64) MediaPeriodID {
	p, ok := q.timeline.GetPeriodByUID(periodUID)
	if !ok {
		return NewContentMediaPeriodID(periodUID)
	}
	for i, g := range p.AdGroups {
		if !g.HasUnplayedAd() {
			continue
		}
		if g.TimeUs != TimeUnset && g.TimeUs <= contentPositionUs {
			return NewAdMediaPeriodID(periodUID, i, firstUnplayedAdIndex(g))
		}
	}
	return NewContentMediaPeriodID(periodUID).WithNextAdGroupIndex(q.nextAdGroupIndexAfter(p, -1))
}

func firstUnplayedAdIndex(g AdGroup) int {
	return g.PlayedAdCount
}

func (q *MediaPeriodQueue) nextAdGroupIndexAfter(p Period, afterIndex int) int {
	for i := afterIndex + 1; i < len(p.AdGroups); i++ {
		if p.AdGroups[i].HasUnplayedAd() {
			return i
		}
	}
	return IndexUnset
}

// EnqueueNextMediaPeriod requests info's period from source and appends a
// new holder to the tail. Precondition: ShouldLoadNextMediaPeriod() held.
func (q *MediaPeriodQueue) EnqueueNextMediaPeriod(source MediaSource, info MediaPeriodInfo) MediaPeriod {
	offset := int64(0)
	if q.loading != nil {
		offset = q.loading.RendererOffsetUs + q.loading.Info.DurationUs
	}
	mp := source.CreatePeriod(info.ID)
	holder := &MediaPeriodHolder{Info: info, MediaPeriod: mp, RendererOffsetUs: offset, source: source}

	if q.playing == nil {
		q.playing = holder
		q.reading = holder
	} else {
		q.loading.next = holder
	}
	q.loading = holder
	q.length++
	return mp
}

// AdvancePlayingPeriod rotates the playing cursor to its successor,
// releasing the old playing holder (it has rotated out of the queue).
// Precondition: a prepared successor exists.
func (q *MediaPeriodQueue) AdvancePlayingPeriod() *MediaPeriodHolder {
	if q.playing == nil || q.playing.next == nil {
		return nil
	}
	old := q.playing
	q.playing = q.playing.next
	q.length--
	old.release()
	return q.playing
}

// AdvanceReadingPeriod rotates the reading cursor to its successor.
func (q *MediaPeriodQueue) AdvanceReadingPeriod() *MediaPeriodHolder {
	if q.reading == nil || q.reading.next == nil {
		return nil
	}
	q.reading = q.reading.next
	return q.reading
}

// RemoveAfter releases every holder strictly after target, clipping the
// chain's tail back to target. Returns true if the reading or loading
// cursor was clipped, so the engine knows streams must be recreated.
func (q *MediaPeriodQueue) RemoveAfter(target *MediaPeriodHolder) bool {
	if target == nil {
		return false
	}
	clipped := false
	removedCount := 0
	for h := target.next; h != nil; {
		if h == q.reading || h == q.loading {
			clipped = true
		}
		removedCount++
		next := h.next
		h.release()
		h = next
	}
	target.next = nil
	q.loading = target
	if clipped {
		q.reading = target
	}
	q.length -= removedCount
	return clipped
}

// Clear releases all holders. If keepFrontPeriodUID is true, the playing
// period's uid is preserved as a marker for position masking even though
// the chain itself is emptied (the caller re-enqueues fresh holders against
// the preserved uid).
func (q *MediaPeriodQueue) Clear(keepFrontPeriodUID bool) PeriodUID {
	var frontUID PeriodUID
	if keepFrontPeriodUID && q.playing != nil {
		frontUID = q.playing.Info.ID.PeriodUID
	}
	for h := q.playing; h != nil; {
		next := h.next
		h.release()
		h = next
	}
	q.playing = nil
	q.reading = nil
	q.loading = nil
	q.length = 0
	return frontUID
}

// ReevaluateBuffer lets the loading holder's MediaPeriod discard chunks
// that are no longer needed given the current renderer position.
func (q *MediaPeriodQueue) ReevaluateBuffer(rendererPositionUs int64) {
	if q.loading != nil {
		q.loading.MediaPeriod.ReevaluateBuffer(rendererPositionUs)
	}
}

// UpdateQueuedPeriods checks each queued holder's period uid against the
// current timeline; it does not recompute or modify any holder's Info.
// Returns false if an already-read holder's period became incompatible
// with the new timeline, signalling the engine must reseek.
func (q *MediaPeriodQueue) UpdateQueuedPeriods(rendererPositionUs, maxRendererReadPositionUs int64) bool {
	for h := q.playing; h != nil; h = h.next {
		idx := q.timeline.GetIndexOfPeriod(h.Info.ID.PeriodUID)
		if idx == IndexUnset {
			return h == q.playing || rendererPositionUs > maxRendererReadPositionUs
		}
	}
	return true
}

func (q *MediaPeriodQueue) GetPlayingPeriod() *MediaPeriodHolder { return q.playing }
func (q *MediaPeriodQueue) GetReadingPeriod() *MediaPeriodHolder { return q.reading }
func (q *MediaPeriodQueue) GetLoadingPeriod() *MediaPeriodHolder { return q.loading }
func (q *MediaPeriodQueue) GetFrontPeriod() *MediaPeriodHolder   { return q.playing }
func (q *MediaPeriodQueue) HasPlayingPeriod() bool               { return q.playing != nil }

// IsLoading reports whether mp is the currently-loading holder's period.
func (q *MediaPeriodQueue) IsLoading(mp MediaPeriod) bool {
	return q.loading != nil && q.loading.MediaPeriod == mp
}

// Length reports the number of queued holders.
func (q *MediaPeriodQueue) Length() int { return q.length }
