package ingest

import (
	"time"

	"github.com/cuemby/herald/pkg/log"
	"github.com/cuemby/herald/pkg/types"
)

// timeLayouts are tried in order when parsing wire timestamps. Older
// records predate the switch to RFC3339 and use a plain date-time form.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw wire record into the canonical notification
// shape for the given recipient. This is the only place in Herald that
// sees historical field-name variants; everything downstream works on
// the canonical record.
//
// The raw record is never mutated.
func Normalize(raw *RawNotification, r types.Recipient) *types.Notification {
	n := &types.Notification{
		ID:             string(raw.ID),
		Title:          raw.Title,
		Message:        raw.Message,
		Type:           types.ParseNotificationType(raw.Type),
		Status:         types.ParseNotificationStatus(raw.Status),
		ScheduledAt:    parseTime(firstNonEmpty(raw.ScheduledAt, raw.ScheduledAtSnake)),
		CreatedAt:      parseTime(firstNonEmpty(raw.CreatedAt, raw.CreatedAtSnake)),
		CreatedBy:      string(firstID(raw.CreatedBy, raw.CreatedBySnake)),
		TargetUserIDs:  idStrings(firstIDList(raw.TargetUserIDs, raw.TargetUserIDsSnake)),
		TargetRoles:    firstList(raw.TargetRoles, raw.TargetRolesSnake),
		TargetAudience: firstNonEmpty(raw.TargetAudience, raw.TargetAudienceSnake),
	}

	n.IsRead, n.ReadBy = ReadState(raw, r)
	return n
}

// ReadState derives the normalized read state of a raw record for a
// recipient. A record counts as read when any variant of the boolean
// read flag is set, or when the recipient's identifier appears in
// either variant of the read-by list.
//
// The returned set merges both read-by variants in order of first
// appearance. A record that is read but carries no list at all yields
// the recipient alone, so downstream consumers always have a list
// consistent with the flag.
func ReadState(raw *RawNotification, r types.Recipient) (bool, []string) {
	readBy := mergeIDs(raw.ReadBy, raw.ReadBySnake)

	isRead := flagged(raw.IsRead) || flagged(raw.IsReadSnake)
	for _, id := range readBy {
		if id == r.ID {
			isRead = true
			break
		}
	}

	if isRead && len(readBy) == 0 {
		readBy = []string{r.ID}
	}
	return isRead, readBy
}

func flagged(b *bool) bool {
	return b != nil && *b
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstID(a, b ID) ID {
	if a != "" {
		return a
	}
	return b
}

func firstList(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func firstIDList(a, b []ID) []ID {
	if len(a) > 0 {
		return a
	}
	return b
}

func idStrings(ids []ID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

// mergeIDs combines both read-by variants into one deduplicated set,
// preserving order of first appearance.
func mergeIDs(lists ...[]ID) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, id := range list {
			s := string(id)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// parseTime parses a wire timestamp, trying each known layout. An
// empty or unparsable value yields the zero time, which the delivery
// filter treats as already released.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	log.Logger.Debug().Str("value", s).Msg("unparsable timestamp, treating as released")
	return time.Time{}
}
