package infrastructure

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"landingCms/internal/modules/homepage/application/port"
)

// ErrBusClosed is returned when subscribing to a closed bus.
var ErrBusClosed = errors.New("invalidation bus is closed")

// BusStats is a snapshot of the bus counters.
type BusStats struct {
	Published   uint64
	Delivered   uint64
	Panics      uint64
	Subscribers int
}

// InvalidationBus fans ConfigChanged events out to every subscriber. Each subscriber owns
// an unbounded queue drained by its own goroutine, so a slow listener never blocks Publish
// and every listener sees every event in publication order.
type InvalidationBus struct {
	mu          sync.Mutex
	subscribers map[uint64]*subscription
	nextID      uint64
	sequence    uint64
	closed      bool
	wg          sync.WaitGroup

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

func NewInvalidationBus() *InvalidationBus {
	return &InvalidationBus{subscribers: make(map[uint64]*subscription)}
}

// Publish stamps event with the next sequence number and queues it for every subscriber.
// Publishing on a closed bus drops the event.
func (b *InvalidationBus) Publish(event port.ConfigChanged) port.ConfigChanged {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		slog.Warn("invalidation published on closed bus", slog.String("reason", event.Reason))
		return event
	}
	b.sequence++
	event.Sequence = b.sequence
	for _, sub := range b.subscribers {
		sub.enqueue(event)
	}
	b.published.Add(1)
	slog.Debug("invalidation published",
		slog.Uint64("sequence", event.Sequence),
		slog.String("origin", event.Origin),
		slog.String("reason", event.Reason),
		slog.Int("subscribers", len(b.subscribers)),
	)
	return event
}

// Subscribe registers handler. Events published before the call are not replayed.
func (b *InvalidationBus) Subscribe(handler port.ConfigChangedHandler) (port.Unsubscribe, error) {
	if handler == nil {
		return nil, errors.New("invalidation handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		handler: handler,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		bus:     b,
	}
	b.subscribers[sub.id] = sub
	b.wg.Add(1)
	go sub.run(&b.wg)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}, nil
}

// Stats returns the current counters.
func (b *InvalidationBus) Stats() BusStats {
	b.mu.Lock()
	subscribers := len(b.subscribers)
	b.mu.Unlock()
	return BusStats{
		Published:   b.published.Load(),
		Delivered:   b.delivered.Load(),
		Panics:      b.panics.Load(),
		Subscribers: subscribers,
	}
}

// Close detaches every subscriber and waits for in-flight handlers to return. Queued
// events that were not delivered yet are discarded. It must not be called from a handler.
func (b *InvalidationBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.done)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *InvalidationBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	close(sub.done)
	delete(b.subscribers, id)
}

type subscription struct {
	id      uint64
	handler port.ConfigChangedHandler
	bus     *InvalidationBus

	mu    sync.Mutex
	queue []port.ConfigChanged
	wake  chan struct{}
	done  chan struct{}
}

func (s *subscription) enqueue(event port.ConfigChanged) {
	s.mu.Lock()
	s.queue = append(s.queue, event)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			event := s.queue[0]
			s.queue[0] = port.ConfigChanged{}
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			default:
			}
			s.deliver(event)
		}
	}
}

func (s *subscription) deliver(event port.ConfigChanged) {
	defer func() {
		if r := recover(); r != nil {
			s.bus.panics.Add(1)
			slog.Error("invalidation handler panicked",
				slog.Uint64("subscriber", s.id),
				slog.Uint64("sequence", event.Sequence),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	s.handler(event)
	s.bus.delivered.Add(1)
}

var _ port.InvalidationBus = (*InvalidationBus)(nil)
