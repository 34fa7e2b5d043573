package events_test

import (
	"testing"
	"time"

	"github.com/micro-nova/ws281x-go/internal/events"
	"github.com/micro-nova/ws281x-go/internal/models"
)

func TestBusSubscribePublish(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("test1")

	seq := bus.Publish(events.KindFrame, models.State{Driver: "mock", Frames: 3})

	select {
	case got := <-ch:
		if got.Kind != events.KindFrame {
			t.Errorf("kind = %q, want %q", got.Kind, events.KindFrame)
		}
		if got.State.Frames != 3 {
			t.Errorf("frames = %d, want 3", got.State.Frames)
		}
		if got.Seq != seq {
			t.Errorf("seq = %d, want %d", got.Seq, seq)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusSequenceIncreases(t *testing.T) {
	bus := events.NewBus()
	a := bus.Publish(events.KindState, models.State{})
	b := bus.Publish(events.KindState, models.State{})
	if b <= a {
		t.Errorf("seq %d after %d, want increasing", b, a)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("test-unsub")

	bus.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}
	// Unsubscribing twice is harmless.
	bus.Unsubscribe(ch)
}

func TestBusDuplicateIDsAreIndependent(t *testing.T) {
	bus := events.NewBus()
	first := bus.Subscribe("dup")
	second := bus.Subscribe("dup")
	if n := bus.SubscriberCount(); n != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", n)
	}

	bus.Unsubscribe(first)
	if _, ok := <-first; ok {
		t.Error("first channel still open after its Unsubscribe")
	}
	bus.Publish(events.KindFrame, models.State{Frames: 1})
	select {
	case ev, ok := <-second:
		if !ok {
			t.Fatal("second channel closed by the first subscriber's Unsubscribe")
		}
		if ev.State.Frames != 1 {
			t.Errorf("frames = %d, want 1", ev.State.Frames)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("second subscriber received nothing")
	}
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("SubscriberCount = %d, want 1", n)
	}
}

func TestBusDropsEventsWhenFull(t *testing.T) {
	bus := events.NewBus()
	slow := bus.Subscribe("slow-reader")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(events.KindFrame, models.State{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked for too long (should drop events)")
	}
	if d := bus.Dropped(); d != 12 {
		t.Errorf("Dropped = %d, want 12", d)
	}
	bus.Unsubscribe(slow)
}

func TestBusSubscriberCount(t *testing.T) {
	bus := events.NewBus()
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
	s1 := bus.Subscribe("s1")
	bus.Subscribe("s2")
	if n := bus.SubscriberCount(); n != 2 {
		t.Errorf("expected 2 subscribers, got %d", n)
	}
	bus.Unsubscribe(s1)
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}
