package events

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestEmitDeliversToSubscribers(t *testing.T) {
	e := NewEmitter()
	var got []Event
	e.Subscribe(EventItemBought, func(ev Event) { got = append(got, ev) })
	e.Subscribe(EventItemBought, func(ev Event) { got = append(got, ev) })
	e.Subscribe(EventItemOnSale, func(ev Event) {
		t.Error("handler invoked for a different event type")
	})

	e.Emit(Event{Type: EventItemBought, Data: map[string]any{"asset_id": uint32(1)}})

	require.Len(t, got, 2)
	require.Equal(t, EventItemBought, got[0].Type)
	require.Equal(t, uint32(1), got[0].Data["asset_id"])
}

func TestEmitWithoutSubscribersIsNoop(t *testing.T) {
	e := NewEmitter()
	e.Emit(Event{Type: EventReviewReceived})
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	e := NewEmitter()
	delivered := false
	e.Subscribe(EventSaleCancelled, func(Event) { panic("boom") })
	e.Subscribe(EventSaleCancelled, func(Event) { delivered = true })

	e.Emit(Event{Type: EventSaleCancelled})
	require.True(t, delivered)
}

func TestPanicReportedThroughAttachedLogger(t *testing.T) {
	e := NewEmitter()
	var buf bytes.Buffer
	e.SetLogger(zerolog.New(&buf))
	e.Subscribe(EventItemOnSale, func(Event) { panic("boom") })

	e.Emit(Event{Type: EventItemOnSale})

	require.Contains(t, buf.String(), "event handler panicked")
	require.Contains(t, buf.String(), string(EventItemOnSale))
}
