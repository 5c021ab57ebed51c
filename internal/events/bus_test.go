package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	b := NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	defer b.Stop(context.Background())

	received := make(chan Event, 1)
	b.Subscribe(Filter{Types: []Type{TypePlaybackInfoChanged}}, func(e Event) error {
		received <- e
		return nil
	})

	require.NoError(t, b.Publish(ctx, NewEvent(TypePlaybackInfoChanged, "engine", "buffering")))

	select {
	case e := <-received:
		assert.Equal(t, TypePlaybackInfoChanged, e.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSubscriberFilterExcludesNonMatchingType(t *testing.T) {
	b := NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	defer b.Stop(context.Background())

	received := make(chan Event, 1)
	b.Subscribe(Filter{Types: []Type{TypeError}}, func(e Event) error {
		received <- e
		return nil
	})

	require.NoError(t, b.Publish(ctx, NewEvent(TypePlaybackInfoChanged, "engine", nil)))

	select {
	case <-received:
		t.Fatal("filtered event should not have been delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	defer b.Stop(context.Background())

	received := make(chan Event, 1)
	id := b.Subscribe(Filter{}, func(e Event) error {
		received <- e
		return nil
	})
	b.Unsubscribe(id)

	require.NoError(t, b.Publish(ctx, NewEvent(TypeError, "engine", nil)))
	select {
	case <-received:
		t.Fatal("unsubscribed handler should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishBeforeStartFails(t *testing.T) {
	b := NewBus(8)
	err := b.Publish(context.Background(), NewEvent(TypeError, "engine", nil))
	assert.Error(t, err)
}

func TestGetStatsCountsPublishedEvents(t *testing.T) {
	b := NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	defer b.Stop(context.Background())

	done := make(chan struct{})
	b.Subscribe(Filter{}, func(Event) error { close(done); return nil })
	require.NoError(t, b.Publish(ctx, NewEvent(TypePlaybackInfoChanged, "engine", nil)))
	<-done

	stats := b.GetStats()
	assert.Equal(t, int64(1), stats.TotalEvents)
	assert.Equal(t, 1, stats.ActiveSubscriptions)
}
