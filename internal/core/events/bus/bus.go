package bus

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
)

var _ Publisher = (*Bus)(nil)

// Subscription is a registered handler. Cancel it to stop delivery.
type Subscription struct {
	typ     Type
	all     bool
	handler Handler
	active  atomic.Bool
	bus     *Bus
}

// Cancel deregisters the handler. Repeated calls are no-ops.
func (s *Subscription) Cancel() {
	if s.active.CompareAndSwap(true, false) {
		s.bus.remove(s)
	}
}

// Bus delivers events synchronously in the publisher's goroutine, to handlers in
// subscription order. Safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	byType    map[Type][]*Subscription
	wildcard  []*Subscription
	observers []Observer
	metrics   Metrics
}

func New() *Bus {
	return &Bus{byType: make(map[Type][]*Subscription)}
}

// Subscribe registers h for events of type t.
func (b *Bus) Subscribe(t Type, h Handler) *Subscription {
	s := b.newSub(t, false, h)
	b.mu.Lock()
	b.byType[t] = append(b.byType[t], s)
	b.mu.Unlock()
	return s
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) *Subscription {
	s := b.newSub("", true, h)
	b.mu.Lock()
	b.wildcard = append(b.wildcard, s)
	b.mu.Unlock()
	return s
}

func (b *Bus) newSub(t Type, all bool, h Handler) *Subscription {
	s := &Subscription{typ: t, all: all, handler: h, bus: b}
	s.active.Store(true)
	return s
}

// Unsubscribe cancels s. Nil is accepted.
func (b *Bus) Unsubscribe(s *Subscription) {
	if s != nil {
		s.Cancel()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.all {
		b.wildcard = slices.DeleteFunc(b.wildcard, func(x *Subscription) bool { return x == s })
		return
	}
	list := slices.DeleteFunc(b.byType[s.typ], func(x *Subscription) bool { return x == s })
	if len(list) == 0 {
		delete(b.byType, s.typ)
	} else {
		b.byType[s.typ] = list
	}
}

// Publish delivers ev to typed subscribers, then wildcard subscribers.
func (b *Bus) Publish(ev Event) error {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.byType[ev.Type])+len(b.wildcard))
	subs = append(subs, b.byType[ev.Type]...)
	subs = append(subs, b.wildcard...)
	observers := slices.Clone(b.observers)
	b.mu.RUnlock()

	for _, o := range observers {
		o.OnPublish(ev)
	}

	var errs []error
	delivered := 0
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		delivered++
		if err := s.handler(ev); err != nil {
			errs = append(errs, err)
		}
	}
	all := errors.Join(errs...)

	for _, o := range observers {
		o.OnDelivered(ev, delivered, all)
	}
	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	b.metrics.SubscribersActive = uint64(b.countLocked())
	b.mu.Unlock()
	return all
}

// AddObserver registers o for every subsequent publish.
func (b *Bus) AddObserver(o Observer) {
	b.mu.Lock()
	b.observers = append(b.observers, o)
	b.mu.Unlock()
}

func (b *Bus) RemoveObserver(o Observer) {
	b.mu.Lock()
	b.observers = slices.DeleteFunc(b.observers, func(x Observer) bool { return x == o })
	b.mu.Unlock()
}

func (b *Bus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLocked()
}

func (b *Bus) countLocked() int {
	n := len(b.wildcard)
	for _, l := range b.byType {
		n += len(l)
	}
	return n
}
