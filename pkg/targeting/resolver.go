package targeting

import (
	"strings"

	"github.com/cuemby/herald/pkg/types"
)

// AudienceAll matches every role when present in a role list or as the
// audience string
const AudienceAll = "all"

// NormalizeRole canonicalizes a role name for comparison: lower-cased
// with whitespace, underscore and hyphen variation stripped, so
// "Super Admin", "super_admin" and "SUPER-ADMIN" all compare equal.
func NormalizeRole(role string) string {
	role = strings.ToLower(role)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, role)
}

// Resolve reports whether a notification is visible to a recipient,
// evaluating the three targeting paths in strict precedence order:
//
//  1. explicit user ID list: membership wins immediately
//  2. role list: authoritative when non-empty; a miss rejects outright
//     and the audience string is never consulted
//  3. audience string: legacy fallback, "all" or a role match
//
// A notification with none of the three fields set is visible to
// nobody. Resolve is a pure targeting function; self-authorship
// suppression is the caller's concern (see ExplicitTarget).
func Resolve(n *types.Notification, r types.Recipient) bool {
	if ExplicitTarget(n, r) {
		return true
	}

	if len(n.TargetRoles) > 0 {
		role := NormalizeRole(r.Role)
		for _, target := range n.TargetRoles {
			normalized := NormalizeRole(target)
			if normalized == AudienceAll || (normalized != "" && normalized == role) {
				return true
			}
		}
		// Role list is authoritative: no fallback to audience.
		return false
	}

	if n.TargetAudience != "" {
		audience := NormalizeRole(n.TargetAudience)
		return audience == AudienceAll || (audience != "" && audience == NormalizeRole(r.Role))
	}

	return false
}

// ExplicitTarget reports whether the recipient appears in the
// notification's individual target list. An empty list is treated as
// "absent", not as "target nobody".
func ExplicitTarget(n *types.Notification, r types.Recipient) bool {
	for _, id := range n.TargetUserIDs {
		if id != "" && id == r.ID {
			return true
		}
	}
	return false
}

// Suppressed reports whether the notification should be hidden from
// its own author. Authors never see their broadcasts in their own
// inbox unless they are also an explicit individual target.
func Suppressed(n *types.Notification, r types.Recipient) bool {
	return n.AuthoredBy(r) && !ExplicitTarget(n, r)
}
