package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/herald/pkg/config"
	"github.com/cuemby/herald/pkg/ingest"
	"github.com/cuemby/herald/pkg/log"
	"github.com/cuemby/herald/pkg/types"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

// fakeService is an in-memory service.Service with per-call hooks and
// counters, for driving the engine deterministically.
type fakeService struct {
	mu sync.Mutex

	count    int
	countErr error

	raws      []*ingest.RawNotification
	listErr   error
	listCalls int
	// listStarted is closed when the first list fetch begins; listBlock,
	// when non-nil, holds the fetch open until closed.
	listStarted chan struct{}
	listBlock   chan struct{}
	startOnce   sync.Once

	markErrs  map[string]error
	markCalls []string

	bulkOK    bool
	bulkErr   error
	bulkCalls int
}

func newFakeService() *fakeService {
	return &fakeService{bulkOK: true, markErrs: make(map[string]error)}
}

func (f *fakeService) FetchUnreadCount(ctx context.Context, recipientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.countErr
}

func (f *fakeService) FetchNotifications(ctx context.Context, recipientID string, limit int) ([]*ingest.RawNotification, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listStarted != nil {
		f.startOnce.Do(func() { close(f.listStarted) })
	}
	if f.listBlock != nil {
		<-f.listBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raws, f.listErr
}

func (f *fakeService) MarkNotificationRead(ctx context.Context, recipientID, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls = append(f.markCalls, notificationID)
	return f.markErrs[notificationID]
}

func (f *fakeService) MarkAllNotificationsRead(ctx context.Context, recipientID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls++
	return f.bulkOK, f.bulkErr
}

func (f *fakeService) markedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.markCalls...)
}

func testEngine(svc *fakeService, recipient types.Recipient) *Engine {
	return New(svc, recipient, config.EngineConfig{
		PollInterval:      time.Hour,
		FetchLimit:        100,
		FallbackBatchSize: 50,
	})
}

func rawActive(id string, mutate ...func(*ingest.RawNotification)) *ingest.RawNotification {
	raw := &ingest.RawNotification{
		ID:      ingest.ID(id),
		Title:   "title " + id,
		Message: "message " + id,
		Status:  "active",
	}
	for _, m := range mutate {
		m(raw)
	}
	return raw
}

// TestRefreshBuildsVisibleSet runs the full fetch-filter-normalize
// pipeline against a mixed batch of records
func TestRefreshBuildsVisibleSet(t *testing.T) {
	recipient := types.Recipient{ID: "user-1", Role: "dealer"}
	svc := newFakeService()
	svc.raws = []*ingest.RawNotification{
		// Broadcast, unread: visible and unread.
		rawActive("n-broadcast", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
		}),
		// Draft: withheld regardless of targeting.
		rawActive("n-draft", func(r *ingest.RawNotification) {
			r.Status = "draft"
			r.TargetAudience = "all"
		}),
		// Scheduled for the future: withheld.
		rawActive("n-future", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
			r.ScheduledAt = time.Now().Add(time.Hour).Format(time.RFC3339)
		}),
		// Role list excludes the recipient; audience must not rescue it.
		rawActive("n-admins", func(r *ingest.RawNotification) {
			r.TargetRoles = []string{"admin"}
			r.TargetAudience = "all"
		}),
		// Authored by the recipient without explicit self-targeting.
		rawActive("n-own", func(r *ingest.RawNotification) {
			r.CreatedBy = "user-1"
			r.TargetAudience = "all"
		}),
		// Authored by the recipient but explicitly addressed to them.
		rawActive("n-own-direct", func(r *ingest.RawNotification) {
			r.CreatedBy = "user-1"
			r.TargetUserIDs = []ingest.ID{"user-1"}
		}),
		// Already read by the recipient: visible, not unread.
		rawActive("n-read", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
			r.ReadBySnake = []ingest.ID{"user-1"}
		}),
		// Numeric targeting from a legacy record.
		rawActive("n-legacy", func(r *ingest.RawNotification) {
			r.TargetUserIDsSnake = []ingest.ID{"user-1"}
		}),
	}
	svc.count = 3

	e := testEngine(svc, recipient)
	e.Refresh(context.Background())

	var ids []string
	for _, n := range e.Notifications() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"n-broadcast", "n-own-direct", "n-read", "n-legacy"}, ids,
		"visible set must keep the server order")

	// n-own-direct is self-authored and never counts toward unread.
	assert.Equal(t, 2, e.UnreadCount())
}

// TestRefreshFailOpen verifies fetch failures degrade to an empty view
func TestRefreshFailOpen(t *testing.T) {
	svc := newFakeService()
	svc.countErr = errors.New("count endpoint down")
	svc.listErr = errors.New("list endpoint down")
	svc.count = 99
	svc.raws = []*ingest.RawNotification{rawActive("n-1")}

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())

	assert.Empty(t, e.Notifications())
	assert.Equal(t, 0, e.UnreadCount())
}

// TestRefreshPartialFailure verifies a failed count does not block the
// list fetch, and vice versa
func TestRefreshPartialFailure(t *testing.T) {
	svc := newFakeService()
	svc.countErr = errors.New("count endpoint down")
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())

	assert.Len(t, e.Notifications(), 1)
	assert.Equal(t, 1, e.UnreadCount(), "unread is recomputed locally, not taken from the server")
}

// TestRefreshGuard verifies overlapping refresh cycles are dropped
func TestRefreshGuard(t *testing.T) {
	svc := newFakeService()
	svc.listStarted = make(chan struct{})
	svc.listBlock = make(chan struct{})
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, types.Recipient{ID: "user-1"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Refresh(context.Background())
	}()
	<-svc.listStarted

	// While the first cycle is in flight, further refreshes return
	// immediately without touching the service.
	e.Refresh(context.Background())
	e.Refresh(context.Background())

	close(svc.listBlock)
	<-done

	svc.mu.Lock()
	calls := svc.listCalls
	svc.mu.Unlock()
	assert.Equal(t, 1, calls, "overlapping refreshes must not reach the service")
	assert.Len(t, e.Notifications(), 1, "the in-flight cycle still completes")
}

// TestMarkReadIdempotent verifies repeated acknowledgement of the same
// notification decrements the unread count exactly once
func TestMarkReadIdempotent(t *testing.T) {
	recipient := types.Recipient{ID: "user-1", Role: "user"}
	svc := newFakeService()
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		rawActive("n-2", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, recipient)
	e.Refresh(context.Background())
	require.Equal(t, 2, e.UnreadCount())

	e.MarkRead(context.Background(), "n-1")
	assert.Equal(t, 1, e.UnreadCount())

	e.MarkRead(context.Background(), "n-1")
	assert.Equal(t, 1, e.UnreadCount(), "second acknowledgement must not double-decrement")

	for _, n := range e.Notifications() {
		if n.ID == "n-1" {
			assert.True(t, n.IsRead)
			assert.Equal(t, []string{"user-1"}, n.ReadBy)
		}
	}
}

// TestMarkReadOptimisticOnServerFailure verifies the local flip
// survives a failed server call
func TestMarkReadOptimisticOnServerFailure(t *testing.T) {
	svc := newFakeService()
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}
	svc.markErrs["n-1"] = errors.New("server down")

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())
	e.MarkRead(context.Background(), "n-1")

	assert.Equal(t, 0, e.UnreadCount(), "optimistic state is kept, no rollback")
	assert.True(t, e.Notifications()[0].IsRead)
}

// TestMarkReadUnknownID verifies acknowledging a vanished notification
// is a no-op locally but still reaches the server
func TestMarkReadUnknownID(t *testing.T) {
	svc := newFakeService()
	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())

	e.MarkRead(context.Background(), "n-gone")

	assert.Equal(t, 0, e.UnreadCount())
	assert.Equal(t, []string{"n-gone"}, svc.markedIDs())
}

// TestMarkAllReadBulkSuccess verifies a successful bulk call makes no
// per-item requests
func TestMarkAllReadBulkSuccess(t *testing.T) {
	svc := newFakeService()
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		rawActive("n-2", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		rawActive("n-3", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())
	e.MarkAllRead(context.Background())

	assert.Equal(t, 0, e.UnreadCount())
	assert.Equal(t, 1, svc.bulkCalls)
	assert.Empty(t, svc.markedIDs(), "bulk success must not trigger per-item marks")
	for _, n := range e.Notifications() {
		assert.True(t, n.IsRead)
	}
}

// TestMarkAllReadFallback verifies an explicit bulk failure falls back
// to one independent per-item mark per captured unread record
func TestMarkAllReadFallback(t *testing.T) {
	svc := newFakeService()
	svc.bulkOK = false
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		rawActive("n-2", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		rawActive("n-3", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		// Already read, must not be part of the fallback.
		rawActive("n-read", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
			r.ReadBy = []ingest.ID{"user-1"}
		}),
	}
	// One failing item must not prevent the others.
	svc.markErrs["n-2"] = errors.New("flaky")

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())
	e.MarkAllRead(context.Background())

	assert.Equal(t, 0, e.UnreadCount())
	assert.ElementsMatch(t, []string{"n-1", "n-2", "n-3"}, svc.markedIDs())
}

// TestMarkAllReadFallbackBound verifies the fallback fan-out is bounded
// and prefers the oldest records
func TestMarkAllReadFallbackBound(t *testing.T) {
	svc := newFakeService()
	svc.bulkErr = errors.New("bulk endpoint down")
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	svc.raws = []*ingest.RawNotification{
		rawActive("n-newest", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
			r.CreatedAt = base.Add(3 * time.Hour).Format(time.RFC3339)
		}),
		rawActive("n-oldest", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
			r.CreatedAt = base.Format(time.RFC3339)
		}),
		rawActive("n-middle", func(r *ingest.RawNotification) {
			r.TargetAudience = "all"
			r.CreatedAt = base.Add(time.Hour).Format(time.RFC3339)
		}),
	}

	e := New(svc, types.Recipient{ID: "user-1"}, config.EngineConfig{
		PollInterval:      time.Hour,
		FetchLimit:        100,
		FallbackBatchSize: 2,
	})
	e.Refresh(context.Background())
	e.MarkAllRead(context.Background())

	assert.ElementsMatch(t, []string{"n-oldest", "n-middle"}, svc.markedIDs(),
		"fan-out beyond the bound drops the newest records")
}

// TestClearAll verifies clearing empties the view immediately and
// tolerates a failed server call
func TestClearAll(t *testing.T) {
	svc := newFakeService()
	svc.bulkErr = errors.New("server down")
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
		rawActive("n-2", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())
	e.ClearAll(context.Background())

	assert.Empty(t, e.Notifications())
	assert.Equal(t, 0, e.UnreadCount())
	assert.Equal(t, 1, svc.bulkCalls)
	assert.Empty(t, svc.markedIDs(), "clearing never falls back to per-item marks")
}

// TestStopDiscardsInFlightRefresh verifies results from a cycle that
// outlives its session never resurrect the cache
func TestStopDiscardsInFlightRefresh(t *testing.T) {
	svc := newFakeService()
	svc.listStarted = make(chan struct{})
	svc.listBlock = make(chan struct{})
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, types.Recipient{ID: "user-1"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Refresh(context.Background())
	}()
	<-svc.listStarted

	e.Stop()
	close(svc.listBlock)
	<-done

	assert.Empty(t, e.Notifications())
	assert.Equal(t, 0, e.UnreadCount())
}

// TestStopIsIdempotent
func TestStopIsIdempotent(t *testing.T) {
	e := testEngine(newFakeService(), types.Recipient{ID: "user-1"})
	e.Stop()
	e.Stop()
}

// TestNewDefaultsRole verifies an empty role becomes the regular user role
func TestNewDefaultsRole(t *testing.T) {
	e := testEngine(newFakeService(), types.Recipient{ID: "user-1"})
	assert.Equal(t, types.DefaultRole, e.Recipient().Role)
}

// TestNotificationsSnapshotIsStable verifies handed-out records are not
// affected by later mutations
func TestNotificationsSnapshotIsStable(t *testing.T) {
	svc := newFakeService()
	svc.raws = []*ingest.RawNotification{
		rawActive("n-1", func(r *ingest.RawNotification) { r.TargetAudience = "all" }),
	}

	e := testEngine(svc, types.Recipient{ID: "user-1"})
	e.Refresh(context.Background())

	before := e.Notifications()
	e.MarkRead(context.Background(), "n-1")

	assert.False(t, before[0].IsRead, "snapshot taken before the mutation must not change")
	assert.Empty(t, before[0].ReadBy)
}
