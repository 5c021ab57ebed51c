package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nodecast/playcore/internal/clock"
)

func TestWrapperDeliversInFIFOOrder(t *testing.T) {
	vc := clock.NewVirtualClock()
	var got []int
	w := New(vc, func(what int, arg interface{}) {
		got = append(got, what)
	})

	w.SendEmptyMessage(1)
	w.SendEmptyMessage(2)
	w.SendEmptyMessageAtTime(3, 50)

	vc.AdvanceTime(100)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestRemoveMessagesCancelsPending(t *testing.T) {
	vc := clock.NewVirtualClock()
	var got []int
	w := New(vc, func(what int, arg interface{}) {
		got = append(got, what)
	})

	w.SendEmptyMessageAtTime(7, 50)
	w.RemoveMessages(7)
	vc.AdvanceTime(100)

	assert.Empty(t, got)
}

func TestRemoveMessagesIsPerWhat(t *testing.T) {
	vc := clock.NewVirtualClock()
	var got []int
	w := New(vc, func(what int, arg interface{}) {
		got = append(got, what)
	})

	w.SendEmptyMessageAtTime(1, 10)
	w.SendEmptyMessageAtTime(2, 10)
	w.RemoveMessages(1)
	vc.AdvanceTime(20)

	assert.Equal(t, []int{2}, got)
}

func TestPostDelayedRunsOnClock(t *testing.T) {
	vc := clock.NewVirtualClock()
	w := New(vc, func(int, interface{}) {})
	ran := false
	w.PostDelayed(func() { ran = true }, 30)

	vc.AdvanceTime(20)
	assert.False(t, ran)
	vc.AdvanceTime(20)
	assert.True(t, ran)
}
