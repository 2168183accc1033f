package delivery

import (
	"time"

	"github.com/cuemby/herald/pkg/types"
)

// Released reports whether a notification is eligible for delivery at
// the given time. Drafts are never released; a scheduled time strictly
// in the future withholds the record from everyone until it passes.
//
// A zero ScheduledAt (absent or unparsable on the wire) counts as
// already released: ambiguous release data favors delivery.
func Released(n *types.Notification, now time.Time) bool {
	if n.Status == types.StatusDraft {
		return false
	}
	if !n.ScheduledAt.IsZero() && n.ScheduledAt.After(now) {
		return false
	}
	return true
}
