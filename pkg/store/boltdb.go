package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketNotifications = []byte("notifications")

// Record is a notification as the server of record persists and serves
// it. The reference server speaks the legacy snake_case naming variant;
// client-side ingestion normalizes it together with camelCase records
// from newer servers.
type Record struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	Type           string   `json:"type,omitempty"`
	Status         string   `json:"status,omitempty"`
	ScheduledAt    string   `json:"scheduled_at,omitempty"`
	CreatedAt      string   `json:"created_at"`
	CreatedBy      string   `json:"created_by,omitempty"`
	TargetUserIDs  []string `json:"target_user_ids,omitempty"`
	TargetRoles    []string `json:"target_roles,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	ReadBy         []string `json:"read_by,omitempty"`
}

// released reports whether the record is past its draft/scheduled gate.
// Unparsable scheduled times count as released.
func (r *Record) released(now time.Time) bool {
	if r.Status == "draft" {
		return false
	}
	if r.ScheduledAt == "" {
		return true
	}
	scheduled, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return true
	}
	return !scheduled.After(now)
}

func (r *Record) readBy(recipientID string) bool {
	for _, id := range r.ReadBy {
		if id == recipientID {
			return true
		}
	}
	return false
}

// BoltStore is a bbolt-backed server of record for notifications
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the notification database in
// the given directory
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "herald.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNotifications)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// CreateNotification persists a new record, assigning an ID and
// creation time when absent
func (s *BoltStore) CreateNotification(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.ID), data)
	})
}

// GetNotification fetches one record by ID
func (s *BoltStore) GetNotification(id string) (*Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("notification not found: %s", id)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListNotifications returns up to limit records, newest first. A limit
// of 0 returns everything.
func (s *BoltStore) ListNotifications(limit int) ([]*Record, error) {
	var records []*Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// RFC3339 strings sort lexicographically, so string comparison
	// orders records by creation time.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// MarkRead adds a recipient to a record's read-by set. The set only
// grows; marking twice is a no-op.
func (s *BoltStore) MarkRead(notificationID, recipientID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		data := b.Get([]byte(notificationID))
		if data == nil {
			return fmt.Errorf("notification not found: %s", notificationID)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if rec.readBy(recipientID) {
			return nil
		}
		rec.ReadBy = append(rec.ReadBy, recipientID)
		updated, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(notificationID), updated)
	})
}

// MarkAllRead adds a recipient to the read-by set of every released
// record, returning how many records were newly marked
func (s *BoltStore) MarkAllRead(recipientID string) (int, error) {
	marked := 0
	now := time.Now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		cursor := b.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if !rec.released(now) || rec.readBy(recipientID) {
				continue
			}
			rec.ReadBy = append(rec.ReadBy, recipientID)
			updated, err := json.Marshal(&rec)
			if err != nil {
				return err
			}
			if err := b.Put(k, updated); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// UnreadCount counts released records the recipient has neither
// authored nor acknowledged. Targeting is not applied server-side; the
// count is a hint the client refines against its resolved visible set.
func (s *BoltStore) UnreadCount(recipientID string) (int, error) {
	count := 0
	now := time.Now()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.released(now) && rec.CreatedBy != recipientID && !rec.readBy(recipientID) {
				count++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteNotification removes a record entirely. Deletion is the only
// way a read-by set ever disappears.
func (s *BoltStore) DeleteNotification(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		return b.Delete([]byte(id))
	})
}
