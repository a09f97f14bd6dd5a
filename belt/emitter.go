package belt

import (
	"sort"
	"sync"
)

// Listener receives the payload of an emitted event.
type Listener func(value float64)

// Subscription identifies a registered listener so it can be removed.
type Subscription uint64

type registration struct {
	id   Subscription
	fn   Listener
	once bool
}

// Emitter maps event names to ordered listener lists.
type Emitter struct {
	mu     sync.Mutex
	nextID Subscription
	events map[string][]registration
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	e := new(Emitter)
	e.events = make(map[string][]registration)
	return e
}

// On appends fn to the listeners of event.
func (e *Emitter) On(event string, fn Listener) Subscription {
	return e.add(event, fn, false)
}

// Once appends fn to the listeners of event; it is removed after its first call.
func (e *Emitter) Once(event string, fn Listener) Subscription {
	return e.add(event, fn, true)
}

func (e *Emitter) add(event string, fn Listener, once bool) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.events[event] = append(e.events[event], registration{id: e.nextID, fn: fn, once: once})
	return e.nextID
}

// Off removes the listener registered under id. It reports whether a
// listener was removed.
func (e *Emitter) Off(event string, id Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	regs := e.events[event]
	for i, r := range regs {
		if r.id == id {
			e.events[event] = append(regs[:i:i], regs[i+1:]...)
			if len(e.events[event]) == 0 {
				delete(e.events, event)
			}
			return true
		}
	}
	return false
}

// OnAll registers one listener per event name, in sorted name order, and
// returns their subscriptions keyed the same way.
func (e *Emitter) OnAll(listeners map[string]Listener) map[string]Subscription {
	names := make([]string, 0, len(listeners))
	for name := range listeners {
		names = append(names, name)
	}
	sort.Strings(names)

	subs := make(map[string]Subscription, len(listeners))
	for _, name := range names {
		subs[name] = e.On(name, listeners[name])
	}
	return subs
}

// OffAll removes the subscriptions returned by OnAll. It returns how many
// were still registered.
func (e *Emitter) OffAll(subs map[string]Subscription) int {
	removed := 0
	for name, id := range subs {
		if e.Off(name, id) {
			removed++
		}
	}
	return removed
}

// RemoveAll drops every listener of event.
func (e *Emitter) RemoveAll(event string) {
	e.mu.Lock()
	delete(e.events, event)
	e.mu.Unlock()
}

// Emit calls the listeners of event in registration order and reports
// whether there were any. Listeners run without the emitter lock held.
func (e *Emitter) Emit(event string, value float64) bool {
	e.mu.Lock()
	regs := e.events[event]
	if len(regs) == 0 {
		e.mu.Unlock()
		return false
	}
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)

	kept := regs[:0:0]
	for _, r := range regs {
		if !r.once {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(e.events, event)
	} else {
		e.events[event] = kept
	}
	e.mu.Unlock()

	for _, r := range snapshot {
		r.fn(value)
	}
	return true
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events[event])
}

// EventNames returns the events that have listeners, sorted.
func (e *Emitter) EventNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.events))
	for name := range e.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
