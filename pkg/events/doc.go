/*
Package events provides an in-memory broker for inbox lifecycle events.

The sync engine publishes an event whenever the local view changes: after a
poll cycle replaces the cache, after an optimistic acknowledgment, after a
mark-all or clear, and when the owning session stops. UI layers subscribe to
drive badges and list re-renders instead of polling the facade.

# Delivery Semantics

Delivery is best-effort and non-blocking in both directions: Publish never
stalls the engine (a full broker buffer drops the event) and broadcast never
stalls on a slow subscriber (a full subscriber buffer skips it). Events carry
the post-change visible and unread counts, so a dropped event is corrected by
the next one rather than accumulating error.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for event := range sub {
		renderBadge(event.Unread)
	}
*/
package events
