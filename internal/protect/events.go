package protect

import "sync"

// EventKind identifies a class of viewer events
type EventKind int

const (
	EventVisibility EventKind = iota
	EventKeyDown
	EventContextMenu
	EventResize
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case EventVisibility:
		return "visibilitychange"
	case EventKeyDown:
		return "keydown"
	case EventContextMenu:
		return "contextmenu"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// KeyEvent is a key press with its modifiers
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
}

// Event is delivered to handlers. Only the field matching Kind is set.
type Event struct {
	Kind   EventKind
	Hidden bool     // EventVisibility
	Key    KeyEvent // EventKeyDown
	Width  int      // EventResize
}

// Verdict is a handler's answer. Cancel suppresses the default action;
// Notice, if set, must be shown to the viewer as a blocking message.
type Verdict struct {
	Cancel bool
	Notice string
}

// Handler reacts to an event
type Handler func(Event) Verdict

// EventSource delivers events to subscribed handlers. Every subscription
// returns the func that releases it.
type EventSource interface {
	Subscribe(kind EventKind, h Handler) (unsubscribe func())
}

// Dispatcher is an in-process EventSource. Front-ends translate their native
// events into Dispatch calls.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	handlers map[EventKind]map[int]Handler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind]map[int]Handler)}
}

// Subscribe registers h for kind
func (d *Dispatcher) Subscribe(kind EventKind, h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	if d.handlers[kind] == nil {
		d.handlers[kind] = make(map[int]Handler)
	}
	d.handlers[kind][id] = h

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[kind], id)
	}
}

// Dispatch delivers ev to every handler of its kind and merges the verdicts:
// the event is cancelled if any handler cancels it, and the first notice wins.
func (d *Dispatcher) Dispatch(ev Event) Verdict {
	d.mu.Lock()
	hs := make([]Handler, 0, len(d.handlers[ev.Kind]))
	for _, h := range d.handlers[ev.Kind] {
		hs = append(hs, h)
	}
	d.mu.Unlock()

	var out Verdict
	for _, h := range hs {
		v := h(ev)
		out.Cancel = out.Cancel || v.Cancel
		if out.Notice == "" {
			out.Notice = v.Notice
		}
	}
	return out
}

// Listeners returns the number of handlers registered for kind
func (d *Dispatcher) Listeners(kind EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[kind])
}
