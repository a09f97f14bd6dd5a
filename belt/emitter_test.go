package belt

import (
	"reflect"
	"testing"
)

func TestEmitterOrderAndOff(t *testing.T) {
	e := NewEmitter()
	var calls []string
	e.On("update", func(float64) { calls = append(calls, "a") })
	id := e.On("update", func(float64) { calls = append(calls, "b") })
	e.On("update", func(float64) { calls = append(calls, "c") })

	if !e.Emit("update", 1) {
		t.Fatal("expected listeners")
	}
	if !e.Off("update", id) {
		t.Fatal("expected b to be removed")
	}
	if e.Off("update", id) {
		t.Error("second Off should report nothing removed")
	}
	e.Emit("update", 2)

	want := []string{"a", "b", "c", "a", "c"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("got %v, want %v", calls, want)
	}
}

func TestEmitterOnce(t *testing.T) {
	e := NewEmitter()
	count := 0
	e.Once("update", func(float64) { count++ })
	e.Emit("update", 0)
	e.Emit("update", 0)
	if count != 1 {
		t.Errorf("once listener called %d times", count)
	}
	if n := e.ListenerCount("update"); n != 0 {
		t.Errorf("expected no listeners left, got %d", n)
	}
}

func TestEmitterWithoutListeners(t *testing.T) {
	e := NewEmitter()
	if e.Emit("nothing", 1) {
		t.Error("Emit should report no listeners")
	}
}

func TestEmitterListenerMaySubscribe(t *testing.T) {
	e := NewEmitter()
	e.On("update", func(float64) {
		e.On("other", func(float64) {})
	})
	e.Emit("update", 0)
	if got := e.EventNames(); !reflect.DeepEqual(got, []string{"other", "update"}) {
		t.Errorf("got %v", got)
	}
	e.RemoveAll("update")
	if got := e.EventNames(); !reflect.DeepEqual(got, []string{"other"}) {
		t.Errorf("got %v", got)
	}
}

func TestEmitterPayload(t *testing.T) {
	e := NewEmitter()
	var got float64
	e.On("update", func(v float64) { got = v })
	e.Emit("update", 0.75)
	if got != 0.75 {
		t.Errorf("got %v", got)
	}
}

func TestEmitterOnAllOffAll(t *testing.T) {
	e := NewEmitter()
	var calls []string
	subs := e.OnAll(map[string]Listener{
		"update": func(float64) { calls = append(calls, "update") },
		"done":   func(float64) { calls = append(calls, "done") },
	})
	if len(subs) != 2 || subs["done"] >= subs["update"] {
		t.Fatalf("expected subscriptions in name order, got %v", subs)
	}

	e.Emit("update", 0)
	e.Emit("done", 0)
	if !reflect.DeepEqual(calls, []string{"update", "done"}) {
		t.Errorf("got %v", calls)
	}

	if n := e.OffAll(subs); n != 2 {
		t.Errorf("removed %d", n)
	}
	if n := e.OffAll(subs); n != 0 {
		t.Errorf("second OffAll removed %d", n)
	}
	if got := e.EventNames(); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}
