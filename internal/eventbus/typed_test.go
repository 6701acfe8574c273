package eventbus

import "testing"

type planned struct {
	id    string
	stops int
}

func TestTypedBusFanOut(t *testing.T) {
	bus := NewTyped[planned]()
	recorder := bus.Subscribe()
	collector := bus.Subscribe()
	bus.Publish(planned{id: "r1", stops: 2})
	for name, ch := range map[string]<-chan planned{"recorder": recorder, "collector": collector} {
		if got := <-ch; got.id != "r1" || got.stops != 2 {
			t.Fatalf("%s received %+v", name, got)
		}
	}
}

func TestTypedBusUnsubscribeKeepsOthers(t *testing.T) {
	bus := NewTyped[planned]()
	gone := bus.Subscribe()
	kept := bus.Subscribe()
	bus.Unsubscribe(gone)
	bus.Publish(planned{id: "r2"})
	if _, ok := <-gone; ok {
		t.Fatalf("unsubscribed channel still open")
	}
	if got := <-kept; got.id != "r2" {
		t.Fatalf("remaining subscriber received %+v", got)
	}
}

func TestTypedBusCloseThenUnsubscribe(t *testing.T) {
	bus := NewTyped[planned](WithBuffer(0))
	ch := bus.Subscribe()
	bus.Publish(planned{id: "lost"})
	if bus.Dropped() != 1 {
		t.Fatalf("unbuffered subscriber should miss the event, dropped=%d", bus.Dropped())
	}
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
