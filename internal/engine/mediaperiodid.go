package engine

// MediaPeriodID locates one media period instance — content or ad — within
// the current timeline. Two ids are equal iff every field matches.
type MediaPeriodID struct {
	PeriodUID         PeriodUID
	AdGroupIndex      int // -1 when this id is not an ad
	AdIndexInGroup    int // -1 when this id is not an ad
	NextAdGroupIndex  int // -1 when unset; the ad group a content id must stop before
}

// NewContentMediaPeriodID returns a non-ad id for periodUID.
func NewContentMediaPeriodID(periodUID PeriodUID) MediaPeriodID {
	return MediaPeriodID{PeriodUID: periodUID, AdGroupIndex: -1, AdIndexInGroup: -1, NextAdGroupIndex: -1}
}

// NewAdMediaPeriodID returns an ad id for the given period/ad-group/ad.
func NewAdMediaPeriodID(periodUID PeriodUID, adGroupIndex, adIndexInGroup int) MediaPeriodID {
	return MediaPeriodID{PeriodUID: periodUID, AdGroupIndex: adGroupIndex, AdIndexInGroup: adIndexInGroup, NextAdGroupIndex: -1}
}

// IsAd reports whether this id identifies an ad period.
func (id MediaPeriodID) IsAd() bool { return id.AdGroupIndex != -1 }

// Equal reports whether id and other locate the same period instance.
func (id MediaPeriodID) Equal(other MediaPeriodID) bool {
	return id.PeriodUID == other.PeriodUID &&
		id.AdGroupIndex == other.AdGroupIndex &&
		id.AdIndexInGroup == other.AdIndexInGroup &&
		id.NextAdGroupIndex == other.NextAdGroupIndex
}

// WithNextAdGroupIndex returns a copy of id carrying nextAdGroupIndex, used
// for content ids so the queue knows where the next ad break will interrupt
// playback.
func (id MediaPeriodID) WithNextAdGroupIndex(nextAdGroupIndex int) MediaPeriodID {
	id.NextAdGroupIndex = nextAdGroupIndex
	return id
}
