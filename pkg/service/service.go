package service

import (
	"context"

	"github.com/cuemby/herald/pkg/ingest"
)

// Service is the contract Herald requires from a server of record.
// Herald consumes these operations; it does not own the store behind
// them. Implementations: the HTTP client in this package and the
// in-process bbolt store in pkg/store.
//
// Reads are idempotent; writes are at-least-once. No locking contract
// is assumed from the server.
type Service interface {
	// FetchUnreadCount returns the server's unread count hint for a
	// recipient. Callers substitute 0 on error (fail open).
	FetchUnreadCount(ctx context.Context, recipientID string) (int, error)

	// FetchNotifications returns up to limit raw records for a
	// recipient, in the server's display order. Callers substitute an
	// empty list on error (fail open).
	FetchNotifications(ctx context.Context, recipientID string, limit int) ([]*ingest.RawNotification, error)

	// MarkNotificationRead acknowledges a single notification for the
	// recipient. Idempotent; failure is non-fatal.
	MarkNotificationRead(ctx context.Context, recipientID, notificationID string) error

	// MarkAllNotificationsRead acknowledges everything currently
	// released for the recipient. The boolean distinguishes explicit
	// logical failure (server responded but the operation did not
	// succeed) from transport failure (non-nil error); either outcome
	// triggers the caller's bounded per-item fallback.
	MarkAllNotificationsRead(ctx context.Context, recipientID string) (bool, error)
}
