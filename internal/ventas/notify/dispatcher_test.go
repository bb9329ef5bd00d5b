package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type recordingDeadLetter struct {
	mu     sync.Mutex
	events []Event
}

func (d *recordingDeadLetter) Push(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDeadLetter) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher([]Notifier{notifier}, nil, zap.NewNop(), 1, 8)

	d.Enqueue(Event{Type: EventDeliveryDispatched, EntityType: "delivery", EntityID: "d-1"})
	d.Enqueue(Event{Type: EventDeliveryDelivered, EntityType: "delivery", EntityID: "d-1"})
	d.Close()

	if notifier.count() != 2 {
		t.Fatalf("delivered %d events, want 2", notifier.count())
	}
}

func TestDispatcher_FailureSwallowedAndDeadLettered(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("webhook caído")}
	deadLetter := &recordingDeadLetter{}
	d := NewDispatcher([]Notifier{notifier}, deadLetter, zap.NewNop(), 1, 8)

	// Enqueue绝不返回错误，失败只进死信
	d.Enqueue(Event{Type: EventQuoteApproved, EntityType: "quote", EntityID: "q-1"})
	d.Close()

	if notifier.count() != 1 {
		t.Fatalf("notifier should have been attempted once, got %d", notifier.count())
	}
	if deadLetter.count() != 1 {
		t.Fatalf("failed event should be dead-lettered, got %d", deadLetter.count())
	}
}

func TestDispatcher_FullQueueGoesToDeadLetter(t *testing.T) {
	block := make(chan struct{})
	slow := &blockingNotifier{release: block}
	deadLetter := &recordingDeadLetter{}
	d := NewDispatcher([]Notifier{slow}, deadLetter, zap.NewNop(), 1, 1)

	// First event holds the worker, second fills the buffer, third overflows to dead letter
	d.Enqueue(Event{Type: EventPaymentConfirmed, EntityID: "p-1"})
	waitUntil(t, func() bool { return slow.started() })
	d.Enqueue(Event{Type: EventPaymentConfirmed, EntityID: "p-2"})
	d.Enqueue(Event{Type: EventPaymentConfirmed, EntityID: "p-3"})

	if deadLetter.count() != 1 {
		t.Fatalf("overflow event should be dead-lettered, got %d", deadLetter.count())
	}

	close(block)
	d.Close()
}

func TestDispatcher_SetsOccurredAt(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher([]Notifier{notifier}, nil, zap.NewNop(), 1, 8)

	d.Enqueue(Event{Type: EventClientBlocked, EntityID: "c-1"})
	d.Close()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.events) != 1 || notifier.events[0].OccurredAt.IsZero() {
		t.Fatal("dispatcher should stamp OccurredAt on enqueue")
	}
}

type blockingNotifier struct {
	mu      sync.Mutex
	running bool
	release chan struct{}
}

func (n *blockingNotifier) Notify(event Event) error {
	n.mu.Lock()
	n.running = true
	n.mu.Unlock()
	<-n.release
	return nil
}

func (n *blockingNotifier) started() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
