package events

import (
	"sync"
	"time"
)

// EventType represents the type of inbox event
type EventType string

const (
	// EventRefreshed fires after a poll cycle replaces the local cache
	EventRefreshed EventType = "inbox.refreshed"
	// EventMarkedRead fires after a single optimistic acknowledgment
	EventMarkedRead EventType = "notification.read"
	// EventAllRead fires after a mark-all-read mutation
	EventAllRead EventType = "inbox.read_all"
	// EventCleared fires after the local view is cleared
	EventCleared EventType = "inbox.cleared"
	// EventStopped fires when the owning session ends
	EventStopped EventType = "session.stopped"
)

// Event describes a change to a recipient's local inbox view
type Event struct {
	Type           EventType
	Timestamp      time.Time
	RecipientID    string
	NotificationID string // set for single-notification events
	Visible        int    // size of the visible set after the change
	Unread         int    // unread count after the change
}

// Subscriber is a channel that receives inbox events
type Subscriber chan *Event

// Broker distributes inbox events to subscribers. Publishing never
// blocks the sync engine: slow subscribers miss events rather than
// stalling a poll cycle.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new inbox event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 64),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 16)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[sub] {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Publish publishes an event to all subscribers
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	default:
		// Broker buffer full, drop rather than block the engine
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}
