package jobs

import (
	"sync"
)

// Broker fans job state changes out to subscribers. Slow subscribers miss
// events instead of blocking job execution, polling stays authoritative.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

func NewBroker() *Broker {
	return &Broker{
		subs: map[int]chan Event{},
	}
}

func (b *Broker) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, buffer)
	b.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
