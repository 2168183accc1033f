package types

import (
	"time"
)

// NotificationType classifies a notification for display purposes
type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeSuccess NotificationType = "success"
	TypeWarning NotificationType = "warning"
	TypeError   NotificationType = "error"
)

// ParseNotificationType maps a raw type string to a known type.
// Unknown or missing values default to info.
func ParseNotificationType(s string) NotificationType {
	switch NotificationType(s) {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return NotificationType(s)
	default:
		return TypeInfo
	}
}

// NotificationStatus represents the publication state of a notification
type NotificationStatus string

const (
	// StatusDraft notifications are never visible to any recipient
	StatusDraft NotificationStatus = "draft"
	// StatusActive notifications are eligible for delivery
	StatusActive NotificationStatus = "active"
)

// ParseNotificationStatus maps a raw status string to a known status.
// Unknown or missing values default to active so that ambiguous records
// favor delivery over suppression.
func ParseNotificationStatus(s string) NotificationStatus {
	if NotificationStatus(s) == StatusDraft {
		return StatusDraft
	}
	return StatusActive
}

// Recipient is the identity evaluating visibility of notifications
type Recipient struct {
	ID   string
	Role string
}

// DefaultRole is assumed when an identity carries no role
const DefaultRole = "user"

// Notification is the canonical in-memory notification record.
//
// Records enter this shape exactly once, at the ingestion boundary
// (pkg/ingest); no code downstream of ingestion branches on historical
// field-name variants again.
type Notification struct {
	ID      string
	Title   string
	Message string
	Type    NotificationType
	Status  NotificationStatus

	// ScheduledAt gates delivery until the given time. The zero value
	// means the notification is released immediately.
	ScheduledAt time.Time

	// CreatedAt is used for display ordering and relative-time rendering
	CreatedAt time.Time

	// CreatedBy is the recipient identifier of the author, if known
	CreatedBy string

	// Targeting fields, in precedence order. Exactly one path is
	// authoritative per notification: user IDs > roles > audience.
	TargetUserIDs  []string
	TargetRoles    []string
	TargetAudience string

	// ReadBy is the canonical set of recipient identifiers who have
	// acknowledged this notification. It only ever grows.
	ReadBy []string

	// IsRead is the normalized read state for the recipient the record
	// was ingested for. Caches are per-session, so this is safe to
	// carry on the record itself.
	IsRead bool
}

// AuthoredBy reports whether the notification was created by the given
// recipient. Comparison is by canonical string form.
func (n *Notification) AuthoredBy(r Recipient) bool {
	return n.CreatedBy != "" && n.CreatedBy == r.ID
}

// MarkRead records the recipient in the ReadBy set and flips IsRead.
// It is idempotent: marking an already-read record changes nothing.
func (n *Notification) MarkRead(r Recipient) {
	n.IsRead = true
	for _, id := range n.ReadBy {
		if id == r.ID {
			return
		}
	}
	n.ReadBy = append(n.ReadBy, r.ID)
}
