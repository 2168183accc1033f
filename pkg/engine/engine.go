package engine

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/herald/pkg/config"
	"github.com/cuemby/herald/pkg/delivery"
	"github.com/cuemby/herald/pkg/events"
	"github.com/cuemby/herald/pkg/ingest"
	"github.com/cuemby/herald/pkg/log"
	"github.com/cuemby/herald/pkg/metrics"
	"github.com/cuemby/herald/pkg/service"
	"github.com/cuemby/herald/pkg/targeting"
	"github.com/cuemby/herald/pkg/types"
)

// Engine keeps one recipient's local inbox view synchronized with the
// server of record. One instance exists per active session; nothing is
// shared across sessions.
//
// The engine polls on a fixed interval, rebuilding the visible set
// wholesale each cycle, and applies mutations optimistically before
// server confirmation. Failed server calls degrade to drift that the
// next poll corrects; nothing here is fatal to the owning process.
type Engine struct {
	svc           service.Service
	recipient     types.Recipient
	interval      time.Duration
	fetchLimit    int
	fallbackLimit int
	broker        *events.Broker
	logger        zerolog.Logger

	mu            sync.RWMutex
	notifications []*types.Notification
	byID          map[string]*types.Notification
	unreadCount   int

	// fetching guards against overlapping refresh cycles. A refresh
	// invoked while one is in flight is dropped, not queued.
	fetching atomic.Bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option configures an Engine
type Option func(*Engine)

// WithBroker attaches an event broker the engine publishes inbox
// events to
func WithBroker(broker *events.Broker) Option {
	return func(e *Engine) { e.broker = broker }
}

// New creates a sync engine for one recipient session. A recipient
// with no role is treated as a regular user.
func New(svc service.Service, recipient types.Recipient, cfg config.EngineConfig, opts ...Option) *Engine {
	if recipient.Role == "" {
		recipient.Role = types.DefaultRole
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = config.DefaultFetchLimit
	}
	if cfg.FallbackBatchSize <= 0 {
		cfg.FallbackBatchSize = config.DefaultFallbackBatchSize
	}

	e := &Engine{
		svc:           svc,
		recipient:     recipient,
		interval:      cfg.PollInterval,
		fetchLimit:    cfg.FetchLimit,
		fallbackLimit: cfg.FallbackBatchSize,
		byID:          make(map[string]*types.Notification),
		stopCh:        make(chan struct{}),
		logger: log.WithComponent("engine").With().
			Str("recipient_id", recipient.ID).Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recipient returns the identity this engine synchronizes for
func (e *Engine) Recipient() types.Recipient {
	return e.recipient
}

// Start begins the poll loop: one immediate refresh, then one per
// interval until Stop
func (e *Engine) Start() {
	go func() {
		e.Refresh(context.Background())

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.Refresh(context.Background())
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop ends the session: the poll timer is cancelled and the cached
// view is discarded. In-flight refreshes complete but their results
// are thrown away. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)

		e.mu.Lock()
		e.notifications = nil
		e.byID = make(map[string]*types.Notification)
		e.unreadCount = 0
		e.mu.Unlock()

		metrics.VisibleNotifications.DeleteLabelValues(e.recipient.ID)
		metrics.UnreadNotifications.DeleteLabelValues(e.recipient.ID)

		e.publish(events.EventStopped, "")
		e.logger.Info().Msg("session stopped")
	})
}

func (e *Engine) stopped() bool {
	select {
	case <-e.stopCh:
		return true
	default:
		return false
	}
}

// Refresh performs one poll cycle: fetch, filter, normalize, replace.
// Invocations that overlap an in-flight cycle return immediately.
func (e *Engine) Refresh(ctx context.Context) {
	if !e.fetching.CompareAndSwap(false, true) {
		metrics.RefreshSkippedTotal.Inc()
		e.logger.Debug().Msg("refresh already in flight, dropping")
		return
	}
	defer e.fetching.Store(false)

	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.RefreshDuration)
		metrics.RefreshCyclesTotal.Inc()
	}()

	// Both fetches run concurrently and fail open independently: a
	// failed count degrades to 0, a failed list to empty.
	var (
		serverCount int
		raws        []*ingest.RawNotification
		wg          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		count, err := e.svc.FetchUnreadCount(ctx, e.recipient.ID)
		if err != nil {
			metrics.ServiceErrorsTotal.WithLabelValues("fetch_unread_count").Inc()
			e.logger.Warn().Err(err).Msg("unread count fetch failed, using 0")
			count = 0
		}
		serverCount = count
	}()
	go func() {
		defer wg.Done()
		list, err := e.svc.FetchNotifications(ctx, e.recipient.ID, e.fetchLimit)
		if err != nil {
			metrics.ServiceErrorsTotal.WithLabelValues("fetch_notifications").Inc()
			e.logger.Warn().Err(err).Msg("notification fetch failed, using empty list")
			list = nil
		}
		raws = list
	}()
	wg.Wait()

	now := time.Now()
	visible := make([]*types.Notification, 0, len(raws))
	byID := make(map[string]*types.Notification, len(raws))
	for _, raw := range raws {
		n := ingest.Normalize(raw, e.recipient)
		if !delivery.Released(n, now) {
			continue
		}
		if !targeting.Resolve(n, e.recipient) {
			continue
		}
		if targeting.Suppressed(n, e.recipient) {
			continue
		}
		visible = append(visible, n)
		byID[n.ID] = n
	}

	// Unread is recomputed from the surviving set; self-authored
	// items never count even when technically unread.
	unread := 0
	for _, n := range visible {
		if !n.IsRead && !n.AuthoredBy(e.recipient) {
			unread++
		}
	}
	if serverCount != unread {
		e.logger.Debug().
			Int("server_count", serverCount).
			Int("local_count", unread).
			Msg("server unread count differs from local computation")
	}

	// A session stopped mid-flight must not resurrect its cache.
	if e.stopped() {
		e.logger.Debug().Msg("session stopped during refresh, discarding results")
		return
	}

	e.mu.Lock()
	e.notifications = visible
	e.byID = byID
	e.unreadCount = unread
	e.mu.Unlock()

	metrics.VisibleNotifications.WithLabelValues(e.recipient.ID).Set(float64(len(visible)))
	metrics.UnreadNotifications.WithLabelValues(e.recipient.ID).Set(float64(unread))

	e.publish(events.EventRefreshed, "")
	e.logger.Debug().
		Int("visible", len(visible)).
		Int("unread", unread).
		Msg("refresh complete")
}

// Notifications returns a snapshot of the visible set, in the server's
// display order. The snapshot is stable: later mutations do not affect
// records already handed out.
func (e *Engine) Notifications() []*types.Notification {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*types.Notification, 0, len(e.notifications))
	for _, n := range e.notifications {
		copied := *n
		copied.ReadBy = append([]string(nil), n.ReadBy...)
		out = append(out, &copied)
	}
	return out
}

// UnreadCount returns the current unread count
func (e *Engine) UnreadCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unreadCount
}

// MarkRead acknowledges a single notification: the local record flips
// immediately, then the server is told. A failed server call leaves
// the optimistic state in place; the next poll reconciles. Calling
// twice for the same notification never double-decrements.
func (e *Engine) MarkRead(ctx context.Context, notificationID string) {
	metrics.MarkReadTotal.Inc()

	e.mu.Lock()
	if n, ok := e.byID[notificationID]; ok && !n.IsRead {
		n.MarkRead(e.recipient)
		if !n.AuthoredBy(e.recipient) && e.unreadCount > 0 {
			e.unreadCount--
		}
	}
	unread := e.unreadCount
	e.mu.Unlock()

	metrics.UnreadNotifications.WithLabelValues(e.recipient.ID).Set(float64(unread))

	if err := e.svc.MarkNotificationRead(ctx, e.recipient.ID, notificationID); err != nil {
		metrics.ServiceErrorsTotal.WithLabelValues("mark_read").Inc()
		e.logger.Warn().Err(err).
			Str("notification_id", notificationID).
			Msg("mark-read failed, keeping optimistic state until next poll")
	}

	e.publish(events.EventMarkedRead, notificationID)
}

// MarkAllRead acknowledges every unread notification. The unread
// subset is captured before mutating so that a failed bulk call can
// fall back to bounded per-item marks for exactly the records the
// recipient saw as unread.
func (e *Engine) MarkAllRead(ctx context.Context) {
	metrics.MarkAllReadTotal.Inc()

	type capturedItem struct {
		id        string
		createdAt time.Time
	}

	e.mu.Lock()
	var captured []capturedItem
	for _, n := range e.notifications {
		if !n.IsRead && !n.AuthoredBy(e.recipient) {
			captured = append(captured, capturedItem{id: n.ID, createdAt: n.CreatedAt})
		}
		n.MarkRead(e.recipient)
	}
	e.unreadCount = 0
	e.mu.Unlock()

	metrics.UnreadNotifications.WithLabelValues(e.recipient.ID).Set(0)

	ok, err := e.svc.MarkAllNotificationsRead(ctx, e.recipient.ID)
	if err != nil {
		metrics.ServiceErrorsTotal.WithLabelValues("mark_all_read").Inc()
		e.logger.Warn().Err(err).Msg("bulk mark-all-read failed, falling back to per-item marks")
	} else if !ok {
		e.logger.Warn().Msg("bulk mark-all-read reported failure, falling back to per-item marks")
	}
	if err != nil || !ok {
		// Oldest-first, bounded fan-out. Items beyond the bound stay
		// unread on the server and are retried on a later mark-all.
		sort.SliceStable(captured, func(i, j int) bool {
			return captured[i].createdAt.Before(captured[j].createdAt)
		})
		if len(captured) > e.fallbackLimit {
			metrics.FallbackDroppedTotal.Add(float64(len(captured) - e.fallbackLimit))
			e.logger.Warn().
				Int("captured", len(captured)).
				Int("bound", e.fallbackLimit).
				Msg("unread subset exceeds fallback bound, dropping newest items")
			captured = captured[:e.fallbackLimit]
		}

		var wg sync.WaitGroup
		for _, item := range captured {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				metrics.FallbackMarksTotal.Inc()
				if err := e.svc.MarkNotificationRead(ctx, e.recipient.ID, id); err != nil {
					metrics.ServiceErrorsTotal.WithLabelValues("mark_read").Inc()
					e.logger.Warn().Err(err).
						Str("notification_id", id).
						Msg("fallback mark-read failed")
				}
			}(item.id)
		}
		wg.Wait()
	}

	e.publish(events.EventAllRead, "")
}

// ClearAll empties the local view and zeroes the unread count, then
// best-effort marks everything read on the server. Clearing is "mark
// read and hide locally", not deletion; a failed server call is
// tolerated since the local UI has already cleared.
func (e *Engine) ClearAll(ctx context.Context) {
	e.mu.Lock()
	e.notifications = nil
	e.byID = make(map[string]*types.Notification)
	e.unreadCount = 0
	e.mu.Unlock()

	metrics.VisibleNotifications.WithLabelValues(e.recipient.ID).Set(0)
	metrics.UnreadNotifications.WithLabelValues(e.recipient.ID).Set(0)

	if ok, err := e.svc.MarkAllNotificationsRead(ctx, e.recipient.ID); err != nil {
		metrics.ServiceErrorsTotal.WithLabelValues("mark_all_read").Inc()
		e.logger.Warn().Err(err).Msg("clear-all server call failed, local view stays cleared")
	} else if !ok {
		e.logger.Warn().Msg("clear-all server call reported failure, local view stays cleared")
	}

	e.publish(events.EventCleared, "")
}

func (e *Engine) publish(eventType events.EventType, notificationID string) {
	if e.broker == nil {
		return
	}

	e.mu.RLock()
	visible := len(e.notifications)
	unread := e.unreadCount
	e.mu.RUnlock()

	e.broker.Publish(&events.Event{
		Type:           eventType,
		RecipientID:    e.recipient.ID,
		NotificationID: notificationID,
		Visible:        visible,
		Unread:         unread,
	})
}
