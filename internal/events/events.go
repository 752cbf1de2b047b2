package events

import (
	"sync"
	"time"
)

const (
	TableCalendar  = "calendar"
	TableBookings  = "bookings"
	TableGuestbook = "guestbook"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent signals that rows of a table changed. Consumers must not
// assume anything beyond "something changed in this table": the resync
// policy is a wholesale refetch, never a delta merge.
type ChangeEvent struct {
	Table string
	Op    string
	At    time.Time
}

// Handler reacts to a change event. Handlers run synchronously on the
// publishing goroutine; the subscriber decides its own concurrency model.
type Handler func(ChangeEvent)

// Publisher is the write side of the change feed, implemented by Bus and
// satisfied by nil-safe no-ops in tests.
type Publisher interface {
	Publish(ChangeEvent)
}

// Subscription identifies one registered handler so it can be torn down.
// A subscription that is never cancelled keeps its handler reachable for
// the lifetime of the bus.
type Subscription struct {
	table string
	id    uint64
}

// Bus provides in-process per-table pub/sub for change events.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]Handler)}
}

// Subscribe registers a handler for one table's change feed and returns the
// subscription used to cancel it.
func (b *Bus) Subscribe(table string, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.subs[table] == nil {
		b.subs[table] = make(map[uint64]Handler)
	}
	b.subs[table][b.nextID] = handler

	return &Subscription{table: table, id: b.nextID}
}

// Unsubscribe removes a previously registered handler. Safe to call with a
// nil or already-cancelled subscription.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[sub.table], sub.id)
}

// Publish notifies every subscriber of the event's table.
func (b *Bus) Publish(event ChangeEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[event.Table]))
	for _, h := range b.subs[event.Table] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
