package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentMediaPeriodIDIsNotAd(t *testing.T) {
	id := NewContentMediaPeriodID("p0")
	assert.False(t, id.IsAd())
	assert.Equal(t, -1, id.NextAdGroupIndex)
}

func TestAdMediaPeriodIDIsAd(t *testing.T) {
	id := NewAdMediaPeriodID("p0", 0, 1)
	assert.True(t, id.IsAd())
}

func TestEqualComparesAllFields(t *testing.T) {
	a := NewContentMediaPeriodID("p0").WithNextAdGroupIndex(2)
	b := NewContentMediaPeriodID("p0").WithNextAdGroupIndex(2)
	c := NewContentMediaPeriodID("p0")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestWithNextAdGroupIndexIsImmutable(t *testing.T) {
	base := NewContentMediaPeriodID("p0")
	updated := base.WithNextAdGroupIndex(3)
	assert.Equal(t, -1, base.NextAdGroupIndex)
	assert.Equal(t, 3, updated.NextAdGroupIndex)
}
