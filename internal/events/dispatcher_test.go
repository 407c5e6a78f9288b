package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var received []Event
	d.Subscribe(EventClaimCreated, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})
	d.Subscribe(EventCaseAssigned, func(_ context.Context, e Event) error {
		t.Fatal("handler for other event type should not fire")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventClaimCreated, CaseID: 10})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, int64(10), received[0].CaseID)
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls int
	d.Subscribe(EventCaseEscalated, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventCaseEscalated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventCaseEscalated})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventClaimUpdated}))
}
