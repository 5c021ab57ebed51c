package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nodecast/playcore/internal/logger"
)

// Bus fans published Events out to every Subscription whose Filter matches,
// on its own dispatch goroutine, the way viewra's eventBus decouples
// publishers from subscriber handlers via a buffered channel.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	events        chan Event
	running       bool
	stopCh        chan struct{}
	wg            sync.WaitGroup
	stats         Stats
}

// NewBus returns a Bus with the given channel buffer size.
func NewBus(bufferSize int) *Bus {
	return &Bus{
		subscriptions: make(map[string]*Subscription),
		events:        make(chan Event, bufferSize),
		stats:         Stats{EventsByType: make(map[Type]int64)},
	}
}

// Start begins the dispatch goroutine. Calling Start twice is an error.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return fmt.Errorf("events: bus already running")
	}
	b.running = true
	b.stopCh = make(chan struct{})
	b.wg.Add(1)
	go b.dispatchLoop(ctx)
	return nil
}

// Stop closes the event channel and waits for the dispatch goroutine to
// drain it, or for ctx to expire.
func (b *Bus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.stopCh)
	close(b.events)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish enqueues event for dispatch, blocking until there is buffer room
// or ctx is done.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return fmt.Errorf("events: bus is not running")
	}
	select {
	case b.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAsync enqueues event without blocking, dropping it if the buffer
// is full. Used by the engine's tick, which must never block on a slow
// subscriber.
func (b *Bus) PublishAsync(event Event) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return fmt.Errorf("events: bus is not running")
	}
	select {
	case b.events <- event:
		return nil
	default:
		return fmt.Errorf("events: buffer full, dropped %s", event.Type)
	}
}

// Subscribe registers handler against filter and returns the Subscription
// id needed to Unsubscribe.
func (b *Bus) Subscribe(filter Filter, handler Handler) string {
	id := uuid.New().String()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[id] = &Subscription{ID: id, Filter: filter, Handler: handler}
	return id
}

// Unsubscribe removes a Subscription. A missing id is a no-op.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscriptions, id)
}

// GetStats returns a snapshot of the Bus's lifetime counters.
func (b *Bus) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	byType := make(map[Type]int64, len(b.stats.EventsByType))
	for k, v := range b.stats.EventsByType {
		byType[k] = v
	}
	return Stats{
		TotalEvents:         b.stats.TotalEvents,
		EventsByType:        byType,
		ActiveSubscriptions: len(b.subscriptions),
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case event, ok := <-b.events:
			if !ok {
				return
			}
			b.deliver(event)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bus) deliver(event Event) {
	b.mu.Lock()
	b.stats.TotalEvents++
	b.stats.EventsByType[event.Type]++
	subs := make([]*Subscription, 0, len(b.subscriptions))
	for _, s := range b.subscriptions {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		if !s.Filter.matches(event) {
			continue
		}
		if err := s.Handler(event); err != nil {
			logger.Warn("event handler failed: type=%s subscription=%s error=%v", event.Type, s.ID, err)
		}
	}
}
