package inbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/herald/pkg/config"
	"github.com/cuemby/herald/pkg/engine"
	"github.com/cuemby/herald/pkg/events"
	"github.com/cuemby/herald/pkg/identity"
	"github.com/cuemby/herald/pkg/service"
	"github.com/cuemby/herald/pkg/types"
)

// Inbox is the thin interface surfaced to callers: list, count and
// mutation triggers over one recipient session. It composes the sync
// engine with an identity provider and holds no business logic of its
// own.
type Inbox struct {
	svc    service.Service
	cfg    config.EngineConfig
	broker *events.Broker

	mu      sync.Mutex
	engine  *engine.Engine
	watchCh chan struct{}
}

// New creates an inbox backed by the given server of record
func New(svc service.Service, cfg config.EngineConfig) *Inbox {
	broker := events.NewBroker()
	broker.Start()
	return &Inbox{
		svc:    svc,
		cfg:    cfg,
		broker: broker,
	}
}

// Start wires an identity into a new sync engine and begins polling.
// The session ends when Stop is called or the provider's Done channel
// closes, whichever comes first.
func (i *Inbox) Start(provider identity.Provider) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.engine != nil {
		return fmt.Errorf("session already active for recipient %s", i.engine.Recipient().ID)
	}

	eng := engine.New(i.svc, provider.Recipient(), i.cfg, engine.WithBroker(i.broker))
	watchCh := make(chan struct{})
	i.engine = eng
	i.watchCh = watchCh

	eng.Start()
	go func() {
		select {
		case <-provider.Done():
			i.Stop()
		case <-watchCh:
		}
	}()
	return nil
}

// Stop ends the active session, cancelling the poll timer and
// discarding cached state. A stopped inbox can be started again with a
// new identity.
func (i *Inbox) Stop() {
	i.mu.Lock()
	eng := i.engine
	watchCh := i.watchCh
	i.engine = nil
	i.watchCh = nil
	i.mu.Unlock()

	if eng == nil {
		return
	}
	close(watchCh)
	eng.Stop()
}

// Close releases the inbox entirely, ending any active session and
// stopping event distribution
func (i *Inbox) Close() {
	i.Stop()
	i.broker.Stop()
}

// Notifications returns the visible set for the active session, or
// nil when no session is active
func (i *Inbox) Notifications() []*types.Notification {
	if eng := i.active(); eng != nil {
		return eng.Notifications()
	}
	return nil
}

// UnreadCount returns the unread count for the active session
func (i *Inbox) UnreadCount() int {
	if eng := i.active(); eng != nil {
		return eng.UnreadCount()
	}
	return 0
}

// Refresh triggers an immediate poll cycle
func (i *Inbox) Refresh(ctx context.Context) {
	if eng := i.active(); eng != nil {
		eng.Refresh(ctx)
	}
}

// MarkRead acknowledges a single notification
func (i *Inbox) MarkRead(ctx context.Context, notificationID string) {
	if eng := i.active(); eng != nil {
		eng.MarkRead(ctx, notificationID)
	}
}

// MarkAllRead acknowledges every unread notification
func (i *Inbox) MarkAllRead(ctx context.Context) {
	if eng := i.active(); eng != nil {
		eng.MarkAllRead(ctx)
	}
}

// ClearAll empties the local view
func (i *Inbox) ClearAll(ctx context.Context) {
	if eng := i.active(); eng != nil {
		eng.ClearAll(ctx)
	}
}

// Subscribe returns a channel of inbox events. Callers should
// Unsubscribe when done.
func (i *Inbox) Subscribe() events.Subscriber {
	return i.broker.Subscribe()
}

// Unsubscribe removes a subscription
func (i *Inbox) Unsubscribe(sub events.Subscriber) {
	i.broker.Unsubscribe(sub)
}

func (i *Inbox) active() *engine.Engine {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.engine
}
