package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/herald/pkg/ingest"
	"github.com/cuemby/herald/pkg/service"
)

// BoltStore doubles as an in-process server of record, which is what
// the reference server and the engine's tests run against.
var _ service.Service = (*BoltStore)(nil)

// FetchUnreadCount implements service.Service
func (s *BoltStore) FetchUnreadCount(_ context.Context, recipientID string) (int, error) {
	return s.UnreadCount(recipientID)
}

// FetchNotifications implements service.Service. Stored records round-
// trip through their JSON wire form so the caller receives exactly
// what a remote snake_case server would have sent.
func (s *BoltStore) FetchNotifications(_ context.Context, _ string, limit int) ([]*ingest.RawNotification, error) {
	records, err := s.ListNotifications(limit)
	if err != nil {
		return nil, err
	}

	raws := make([]*ingest.RawNotification, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
		}
		var raw ingest.RawNotification
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", rec.ID, err)
		}
		raws = append(raws, &raw)
	}
	return raws, nil
}

// MarkNotificationRead implements service.Service
func (s *BoltStore) MarkNotificationRead(_ context.Context, recipientID, notificationID string) error {
	return s.MarkRead(notificationID, recipientID)
}

// MarkAllNotificationsRead implements service.Service
func (s *BoltStore) MarkAllNotificationsRead(_ context.Context, recipientID string) (bool, error) {
	if _, err := s.MarkAllRead(recipientID); err != nil {
		return false, err
	}
	return true, nil
}
