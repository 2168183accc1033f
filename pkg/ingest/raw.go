package ingest

import (
	"bytes"
	"encoding/json"
)

// ID is a recipient or notification identifier as it appears on the
// wire. Historical records carry identifiers as either JSON strings or
// JSON numbers; both decode to the same canonical string form.
type ID string

// UnmarshalJSON accepts "42", 42 and 42.0 as the identifier "42".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*id = ID(num.String())
	return nil
}

// RawNotification is a notification record exactly as the server of
// record returns it. The same semantic field may arrive under two
// names (camelCase from newer records, snake_case from older ones);
// both variants are declared here so a single decode captures either.
//
// Raw records never travel past the ingestion boundary: Normalize
// collapses the variants into one canonical types.Notification.
type RawNotification struct {
	ID      ID     `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Status  string `json:"status"`

	ScheduledAt      string `json:"scheduledAt,omitempty"`
	ScheduledAtSnake string `json:"scheduled_at,omitempty"`

	CreatedAt      string `json:"createdAt,omitempty"`
	CreatedAtSnake string `json:"created_at,omitempty"`

	CreatedBy      ID `json:"createdBy,omitempty"`
	CreatedBySnake ID `json:"created_by,omitempty"`

	TargetUserIDs      []ID `json:"targetUserIds,omitempty"`
	TargetUserIDsSnake []ID `json:"target_user_ids,omitempty"`

	TargetRoles      []string `json:"targetRoles,omitempty"`
	TargetRolesSnake []string `json:"target_roles,omitempty"`

	TargetAudience      string `json:"targetAudience,omitempty"`
	TargetAudienceSnake string `json:"target_audience,omitempty"`

	IsRead      *bool `json:"isRead,omitempty"`
	IsReadSnake *bool `json:"is_read,omitempty"`

	ReadBy      []ID `json:"readBy,omitempty"`
	ReadBySnake []ID `json:"read_by,omitempty"`
}
