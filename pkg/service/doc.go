/*
Package service defines the server-of-record contract Herald consumes.

Herald never owns notification persistence. Everything it knows about the
outside world goes through the Service interface: two fail-open reads (unread
count and notification list) and two at-least-once writes (single and bulk
acknowledgment). The bulk write's boolean return carries the server's explicit
logical failure signal, which is what triggers the sync engine's bounded
per-item fallback.

# Implementations

	┌───────────────────────────────────────────────────────────┐
	│                                                           │
	│   engine.Engine ──► service.Service                       │
	│                        │                                  │
	│          ┌─────────────┴──────────────┐                   │
	│          ▼                            ▼                   │
	│   service.Client               store.BoltStore            │
	│   JSON over HTTP               in-process bbolt           │
	│   (remote server)              (reference server, tests)  │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

The HTTP client authenticates with a bearer token when the server requires
one, and otherwise identifies the recipient through X-Recipient-ID and
X-Recipient-Role headers. Every call carries a bounded timeout; callers are
expected to treat any error as a degraded-but-functional condition, not a
fatal one.

# Failure Semantics

  - FetchUnreadCount error → caller substitutes 0
  - FetchNotifications error → caller substitutes an empty list
  - MarkNotificationRead error → caller tolerates drift until next poll
  - MarkAllNotificationsRead (false, nil) → explicit logical failure,
    caller falls back to bounded per-item marks
*/
package service
