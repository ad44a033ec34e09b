package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/haze/internal/ir"
)

func TestNotifier_KindFilter(t *testing.T) {
	n := NewNotifier()

	var created, all []EventKind
	n.Subscribe(EventCreated, func(ev Event) { created = append(created, ev.Kind) })
	n.SubscribeAll(func(ev Event) { all = append(all, ev.Kind) })

	n.Publish(Event{Kind: EventCreated, Collection: "c"})
	n.Publish(Event{Kind: EventDestroyed, Collection: "c"})

	assert.Equal(t, []EventKind{EventCreated}, created)
	assert.Equal(t, []EventKind{EventCreated, EventDestroyed}, all)
}

func TestNotifier_RegistrationOrder(t *testing.T) {
	n := NewNotifier()

	var order []int
	for i := range 3 {
		n.SubscribeAll(func(Event) { order = append(order, i) })
	}
	n.Publish(Event{Kind: EventUpdated})

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier()

	calls := 0
	unsubscribe := n.SubscribeAll(func(Event) { calls++ })
	other := n.SubscribeAll(func(Event) {})
	require.Equal(t, 2, n.Len())

	n.Publish(Event{Kind: EventCreated})
	unsubscribe()
	unsubscribe()
	n.Publish(Event{Kind: EventCreated})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, n.Len())
	other()
	assert.Equal(t, 0, n.Len())
}

func TestNotifier_NoReplayForLateSubscribers(t *testing.T) {
	n := NewNotifier()
	n.Publish(Event{Kind: EventCreated})

	calls := 0
	n.SubscribeAll(func(Event) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestNotifier_EachListenerGetsOwnCopy(t *testing.T) {
	n := NewNotifier()

	n.SubscribeAll(func(ev Event) { ev.Document["x"] = ir.IRInt(99) })
	var seen ir.IRValue
	n.SubscribeAll(func(ev Event) { seen = ev.Document["x"] })

	doc := ir.IRObject{"x": ir.IRInt(1)}
	n.Publish(Event{Kind: EventCreated, Document: doc})

	assert.Equal(t, ir.IRInt(1), seen)
	assert.Equal(t, ir.IRInt(1), doc["x"])
}

func TestNotifier_SubscribeDuringPublish(t *testing.T) {
	n := NewNotifier()

	late := 0
	n.SubscribeAll(func(Event) {
		n.SubscribeAll(func(Event) { late++ })
	})

	n.Publish(Event{Kind: EventCreated})
	assert.Equal(t, 0, late, "listeners added mid-publish wait for the next event")

	n.Publish(Event{Kind: EventCreated})
	assert.Equal(t, 1, late)
}

func TestNotifier_ConcurrentPublish(t *testing.T) {
	n := NewNotifier()

	var mu sync.Mutex
	count := 0
	n.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Publish(Event{Kind: EventIncremented})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "created", EventCreated.String())
	assert.Equal(t, "updated", EventUpdated.String())
	assert.Equal(t, "destroyed", EventDestroyed.String())
	assert.Equal(t, "incremented", EventIncremented.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
