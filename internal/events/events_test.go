package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesTableSubscribers(t *testing.T) {
	bus := NewBus()

	var calendarSeen, bookingsSeen int
	bus.Subscribe(TableCalendar, func(ChangeEvent) { calendarSeen++ })
	bus.Subscribe(TableBookings, func(ChangeEvent) { bookingsSeen++ })

	bus.Publish(ChangeEvent{Table: TableCalendar, Op: OpUpdate})
	bus.Publish(ChangeEvent{Table: TableCalendar, Op: OpUpdate})
	bus.Publish(ChangeEvent{Table: TableBookings, Op: OpInsert})

	assert.Equal(t, 2, calendarSeen)
	assert.Equal(t, 1, bookingsSeen)
}

func TestBus_PublishSetsTimestamp(t *testing.T) {
	bus := NewBus()

	var got ChangeEvent
	bus.Subscribe(TableBookings, func(e ChangeEvent) { got = e })
	bus.Publish(ChangeEvent{Table: TableBookings, Op: OpDelete})

	require.False(t, got.At.IsZero())
	assert.Equal(t, OpDelete, got.Op)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var seen int
	sub := bus.Subscribe(TableCalendar, func(ChangeEvent) { seen++ })
	bus.Publish(ChangeEvent{Table: TableCalendar, Op: OpUpdate})

	bus.Unsubscribe(sub)
	bus.Publish(ChangeEvent{Table: TableCalendar, Op: OpUpdate})

	assert.Equal(t, 1, seen)

	// Double-unsubscribe and nil are no-ops.
	bus.Unsubscribe(sub)
	bus.Unsubscribe(nil)
}

func TestBus_MultipleSubscribersSameTable(t *testing.T) {
	bus := NewBus()

	var first, second int
	bus.Subscribe(TableGuestbook, func(ChangeEvent) { first++ })
	subSecond := bus.Subscribe(TableGuestbook, func(ChangeEvent) { second++ })

	bus.Publish(ChangeEvent{Table: TableGuestbook, Op: OpInsert})
	bus.Unsubscribe(subSecond)
	bus.Publish(ChangeEvent{Table: TableGuestbook, Op: OpInsert})

	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}
