package events

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	ch1, cancel1 := bus.Subscribe(8)
	ch2, cancel2 := bus.Subscribe(8)
	defer cancel1()
	defer cancel2()

	bus.Emit(Event{Type: VarianceApplied, Module: "variance"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, VarianceApplied, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Emit(Event{Type: SignalSkipped})
	bus.Emit(Event{Type: SignalSkipped}) // dropped, must not block

	ev := <-ch
	assert.Equal(t, SignalSkipped, ev.Type)
	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	_, cancel := bus.Subscribe(4)
	assert.Equal(t, 1, bus.SubscriberCount())
	cancel()
	assert.Equal(t, 0, bus.SubscriberCount())
	cancel() // double cancel is safe
}

func TestManagerEmitTyped(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	mgr := NewManager(bus, zerolog.Nop())

	ch, cancel := bus.Subscribe(4)
	defer cancel()

	mgr.EmitTyped("variance", &SignalSkippedData{
		PersonalityID: "p-1",
		SignalID:      "s-1",
		Probability:   0.08,
		Reason:        "news window",
	})

	select {
	case ev := <-ch:
		require.Equal(t, SignalSkipped, ev.Type)
		data, ok := ev.Data.(*SignalSkippedData)
		require.True(t, ok)
		assert.Equal(t, "p-1", data.PersonalityID)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
