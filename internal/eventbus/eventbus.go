package eventbus

import (
	"sync"
	"time"

	"github.com/TheRVAAccountant/resource-allocator/core/model"
)

// Event is implemented by all run lifecycle events published on the bus.
type Event interface{ event() }

// RunStarted is published when an allocation run begins.
type RunStarted struct {
	RequestID string
	Files     map[string]string
	Time      time.Time
}

// RunCompleted is published after a run finished, whatever its status.
type RunCompleted struct {
	RequestID          string
	Status             model.Status
	AllocatedCount     int
	UnallocatedCount   int
	DuplicateConflicts int
	Time               time.Time
}

// RunFailed is published when a run aborts before producing a result.
type RunFailed struct {
	RequestID string
	Err       error
	Time      time.Time
}

func (RunStarted) event()   {}
func (RunCompleted) event() {}
func (RunFailed) event()    {}

// Bus is a fan-out publish/subscribe bus for run events. A desktop front end
// subscribes to it to refresh views while a run executes on a worker thread.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// New creates a new Bus.
func New() *Bus { return &Bus{} }

// Publish sends the event to all subscribers. Delivery is non-blocking: a
// subscriber with a full buffer misses the event.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
