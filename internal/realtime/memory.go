package realtime

import (
	"context"
	"sync"

	"github.com/Saba3939/mood-harbor/internal/metrics"
)

// MemoryBus is an in-process Bus for tests and single-node runs. Each
// subscriber gets a buffered queue drained by its own goroutine; a full
// queue drops the event, matching the channel's best-effort contract.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[int]*memSub
	next int
}

type memSub struct {
	events []string
	ch     chan Event
	done   chan struct{}
}

const memSubBuffer = 64

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]*memSub)}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) {
	b.mu.Lock()
	targets := make([]*memSub, 0, len(b.subs))
	for _, s := range b.subs {
		if matches(s.events, ev.Event) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		select {
		case s.ch <- ev:
		default: // subscriber is behind, drop
		}
	}
	metrics.EventsPublished.WithLabelValues(ev.Event).Inc()
}

func (b *MemoryBus) Subscribe(events []string, h Handler) (cancel func()) {
	s := &memSub{
		events: events,
		ch:     make(chan Event, memSubBuffer),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = s
	b.mu.Unlock()

	go func() {
		for {
			select {
			case ev := <-s.ch:
				select {
				case <-s.done:
					return
				default:
				}
				h(ev)
			case <-s.done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(s.done)
		})
	}
}
