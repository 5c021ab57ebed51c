package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVirtualClockOrdersByDeadlineThenInsertion(t *testing.T) {
	c := NewVirtualClock()
	var order []string

	c.Schedule(20, func() { order = append(order, "b-at-20") })
	c.Schedule(10, func() { order = append(order, "a-at-10") })
	c.Schedule(10, func() { order = append(order, "a2-at-10") })

	c.AdvanceTime(25)

	assert.Equal(t, []string{"a-at-10", "a2-at-10", "b-at-20"}, order)
	assert.Equal(t, int64(25), c.ElapsedRealtimeMs())
}

func TestVirtualClockDoesNotFireFutureTasks(t *testing.T) {
	c := NewVirtualClock()
	fired := false
	c.Schedule(100, func() { fired = true })

	c.AdvanceTime(50)
	assert.False(t, fired)
	assert.Equal(t, 1, c.PendingCount())

	c.AdvanceTime(50)
	assert.True(t, fired)
	assert.Equal(t, 0, c.PendingCount())
}

func TestVirtualClockRescheduleDuringAdvance(t *testing.T) {
	c := NewVirtualClock()
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 3 {
			c.Schedule(c.ElapsedRealtimeMs()+10, tick)
		}
	}
	c.Schedule(10, tick)

	c.AdvanceTime(100)
	assert.Equal(t, 3, ticks)
}
