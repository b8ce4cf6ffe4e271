package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishesToAllSubscribers(t *testing.T) {
	// Setup ---
	bus := NewBus()
	first, unsubscribeFirst := bus.Subscribe(1)
	second, unsubscribeSecond := bus.Subscribe(1)
	defer unsubscribeFirst()
	defer unsubscribeSecond()
	d := Delivery{}
	d.Reminder.ID = 42

	// Exercise ---
	bus.Publish(d)

	// Verify ---
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, d, <-first)
	assert.Equal(t, d, <-second)
}

func TestBusDropsWhenSubscriberIsSlow(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Delivery{})
	bus.Publish(Delivery{})

	assert.Len(t, ch, 1)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(0)

	unsubscribe()
	unsubscribe()
	bus.Publish(Delivery{})

	_, ok := <-ch
	assert.False(t, ok)
}

func TestBusClose(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(0)

	bus.Close()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestPromptActions(t *testing.T) {
	actions := PromptActions()

	require.Len(t, actions, 5)
	assert.Equal(t, 5, actions[0].SnoozeMinutes)
	assert.Equal(t, 10, actions[1].SnoozeMinutes)
	assert.Equal(t, 30, actions[2].SnoozeMinutes)
	assert.Equal(t, ActionSnoozeCustom, actions[3].Kind)
	assert.Equal(t, ActionDismiss, actions[4].Kind)
}
