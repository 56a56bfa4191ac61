package grove

import "strings"

// Handler receives the data passed to Trigger. Data is nil when the event
// carries no payload.
type Handler func(data any)

// listener is a single registration in an Evented registry.
type listener struct {
	id     uint64
	target *Evented
	fn     Handler
}

// binding records a listener this object registered on another source so
// Debind can remove it.
type binding struct {
	source *Evented
	event  string
}

// listenerIDCounter is a plain counter (no atomic, grove is single-threaded).
var listenerIDCounter uint64

// Evented is a per-object synchronous event registry. Entities, stages,
// components and game state embed it. A triggered event runs every bound
// handler in registration order before Trigger returns.
type Evented struct {
	listeners map[string][]listener
	binds     []binding
}

// Listener identifies one registration returned by On and OnTarget.
type Listener struct {
	source *Evented
	events []string
	id     uint64
}

// Remove unbinds the registration. Safe to call more than once.
func (l Listener) Remove() {
	if l.source == nil {
		return
	}
	for _, ev := range l.events {
		l.source.removeWhere(ev, func(ln listener) bool { return ln.id == l.id })
	}
}

// On binds fn to one or more comma-separated event names.
func (ev *Evented) On(events string, fn Handler) Listener {
	return ev.OnTarget(events, nil, fn)
}

// OnTarget binds fn on behalf of target. The registration is recorded on
// target so target.Debind removes it; OffTarget removes every listener
// bound for target.
func (ev *Evented) OnTarget(events string, target *Evented, fn Handler) Listener {
	if fn == nil {
		panic("grove: nil event handler")
	}
	listenerIDCounter++
	l := Listener{source: ev, id: listenerIDCounter}
	for _, name := range splitEvents(events) {
		if ev.listeners == nil {
			ev.listeners = make(map[string][]listener)
		}
		ev.listeners[name] = append(ev.listeners[name], listener{id: l.id, target: target, fn: fn})
		if target != nil {
			target.binds = append(target.binds, binding{source: ev, event: name})
		}
		l.events = append(l.events, name)
	}
	return l
}

// Trigger runs every handler bound to event, in registration order.
// Handlers bound or removed during dispatch take effect on the next Trigger.
func (ev *Evented) Trigger(event string, data any) {
	ls := ev.listeners[event]
	for i := range ls {
		ls[i].fn(data)
	}
}

// Off removes every handler bound to event.
func (ev *Evented) Off(event string) {
	delete(ev.listeners, event)
}

// OffTarget removes the handlers bound to event on behalf of target.
func (ev *Evented) OffTarget(event string, target *Evented) {
	ev.removeWhere(event, func(ln listener) bool { return ln.target == target })
}

// HasListeners reports whether any handler is bound to event.
func (ev *Evented) HasListeners(event string) bool {
	return len(ev.listeners[event]) > 0
}

// Debind removes every listener this object registered on other objects
// through OnTarget.
func (ev *Evented) Debind() {
	for _, b := range ev.binds {
		b.source.OffTarget(b.event, ev)
	}
	ev.binds = nil
}

// removeWhere rebuilds the listener slice without matching entries so an
// in-flight Trigger keeps iterating its own snapshot.
func (ev *Evented) removeWhere(event string, match func(listener) bool) {
	ls := ev.listeners[event]
	if len(ls) == 0 {
		return
	}
	kept := make([]listener, 0, len(ls))
	for _, ln := range ls {
		if !match(ln) {
			kept = append(kept, ln)
		}
	}
	if len(kept) == 0 {
		delete(ev.listeners, event)
		return
	}
	ev.listeners[event] = kept
}

func splitEvents(events string) []string {
	if !strings.Contains(events, ",") {
		return []string{strings.TrimSpace(events)}
	}
	parts := strings.Split(events, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
