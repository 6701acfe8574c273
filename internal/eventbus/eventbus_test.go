package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	var bus EventBus = New()
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestBusDropsWhenSubscriberLags(t *testing.T) {
	bus := New(WithBuffer(1))
	ch := bus.Subscribe()
	bus.Publish(1)
	bus.Publish(2)
	if got := <-ch; got != 1 {
		t.Fatalf("expected first event, got %v", got)
	}
	if bus.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", bus.Dropped())
	}
}

func TestBusSubscribeAfterClose(t *testing.T) {
	bus := New()
	bus.Close()
	bus.Close()
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected closed channel")
	}
	bus.Publish("ignored")
}
