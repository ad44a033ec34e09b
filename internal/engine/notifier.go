package engine

import (
	"sync"

	"github.com/roach88/haze/internal/ir"
)

// EventKind identifies a document lifecycle event.
type EventKind int

const (
	// EventAll subscribes to every kind. It is never the Kind of an Event.
	EventAll EventKind = iota
	// EventCreated is emitted after Create stores a new document.
	EventCreated
	// EventUpdated is emitted after a successful Update.
	EventUpdated
	// EventDestroyed is emitted after Destroy removes a document.
	EventDestroyed
	// EventIncremented is emitted after Increment changes a field.
	EventIncremented
)

var eventKindNames = [...]string{"all", "created", "updated", "destroyed", "incremented"}

// String returns the lowercase event name ("created", ...).
func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event carries the collection name and the affected document.
// Document is a private copy; listeners may keep or mutate it.
type Event struct {
	Kind       EventKind
	Collection string
	Document   ir.IRObject
}

// Listener receives events synchronously on the goroutine that performed
// the write.
type Listener func(Event)

type subscription struct {
	id   uint64
	kind EventKind
	fn   Listener
}

// Notifier is a synchronous publish/subscribe broadcaster.
//
// Delivery semantics:
//   - synchronous: Publish returns after every listener has run
//   - in registration order
//   - fire-and-forget: no queue, no retry, no replay for late subscribers
//
// Thread-safety: Subscribe, unsubscribe and Publish are safe for concurrent
// use. Listeners run outside the registry lock, so a listener may call back
// into the engine or subscribe further listeners.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// NewNotifier creates a notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn for events of kind (EventAll for every kind) and
// returns a function that removes the registration. Calling the returned
// function more than once is harmless.
func (n *Notifier) Subscribe(kind EventKind, fn Listener) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, kind: kind, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers fn for every event kind.
func (n *Notifier) SubscribeAll(fn Listener) (unsubscribe func()) {
	return n.Subscribe(EventAll, fn)
}

// Publish delivers ev to every matching listener. Each listener receives
// its own copy of the document.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	targets := make([]Listener, 0, len(n.subs))
	for _, s := range n.subs {
		if s.kind == EventAll || s.kind == ev.Kind {
			targets = append(targets, s.fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range targets {
		fn(Event{Kind: ev.Kind, Collection: ev.Collection, Document: ev.Document.Clone()})
	}
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
