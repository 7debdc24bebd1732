package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/pkg/logger"
)

// fakeCursor serves ids in pages of pageSize, like the storage-backed cursor.
type fakeCursor struct {
	ids      []string
	pageSize int
	offset   int
	hasMore  bool
}

func newFakeCursor(ids []string, pageSize int) *fakeCursor {
	return &fakeCursor{ids: ids, pageSize: pageSize, hasMore: true}
}

func (c *fakeCursor) NextPage(ctx context.Context) ([]string, error) {
	end := c.offset + c.pageSize
	if end > len(c.ids) {
		end = len(c.ids)
	}
	page := c.ids[c.offset:end]
	c.offset = end
	if len(page) < c.pageSize {
		c.hasMore = false
	}
	return page, nil
}

func (c *fakeCursor) HasMore() bool { return c.hasMore }

type mockCallRepo struct {
	ice      map[string][]string
	pageSize int
	stale    []string
	deleted  []string
	batches  map[string][][]string
}

func newMockCallRepo(pageSize int) *mockCallRepo {
	return &mockCallRepo{
		ice:      make(map[string][]string),
		pageSize: pageSize,
		batches:  make(map[string][][]string),
	}
}

func (m *mockCallRepo) ListTerminalBefore(ctx context.Context, cutoff time.Time, limitPerStatus int) ([]string, error) {
	return m.stale, nil
}

func (m *mockCallRepo) IceCursor(callID string, pageSize int) interfaces.PageCursor {
	return newFakeCursor(m.ice[callID], m.pageSize)
}

func (m *mockCallRepo) DeleteIceCandidates(ctx context.Context, callID string, candidateIDs []string) error {
	m.batches[callID] = append(m.batches[callID], candidateIDs)
	return nil
}

func (m *mockCallRepo) Delete(ctx context.Context, callID string) error {
	m.deleted = append(m.deleted, callID)
	return nil
}

type mockUserRepo struct {
	interfaces.UserRepository
	scheduled []*models.User
	deleted   []string
}

func (m *mockUserRepo) ListScheduledForDeletion(ctx context.Context, now time.Time, limit int) ([]*models.User, error) {
	return m.scheduled, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, uid string) error {
	m.deleted = append(m.deleted, uid)
	return nil
}

type mockOrderRepo struct {
	interfaces.OrderRepository
	completed []string
	messages  map[string][]string
	pageSize  int
	deleted   map[string][]string
}

func (m *mockOrderRepo) ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return m.completed, nil
}

func (m *mockOrderRepo) MessagesCursor(orderID string, pageSize int) interfaces.PageCursor {
	return newFakeCursor(m.messages[orderID], m.pageSize)
}

func (m *mockOrderRepo) DeleteMessages(ctx context.Context, orderID string, messageIDs []string) error {
	if m.deleted == nil {
		m.deleted = make(map[string][]string)
	}
	m.deleted[orderID] = append(m.deleted[orderID], messageIDs...)
	return nil
}

type mockAccountDeleter struct {
	deleted []string
	fail    map[string]bool
}

func (m *mockAccountDeleter) DeleteUser(ctx context.Context, uid string) error {
	if m.fail[uid] {
		return errors.New("auth unavailable")
	}
	m.deleted = append(m.deleted, uid)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return log
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a'+i%26)) + "-" + string(rune('0'+i/26))
	}
	return out
}

func TestCleanupVoiceCallDrainsInBatches(t *testing.T) {
	calls := newMockCallRepo(3)
	calls.ice["c1"] = ids(7)

	s := NewSweeper(&mockUserRepo{}, &mockOrderRepo{}, calls, &mockAccountDeleter{}, testLogger(t))
	s.pageSize = 3

	if err := s.CleanupVoiceCall(context.Background(), "c1"); err != nil {
		t.Fatalf("CleanupVoiceCall: %v", err)
	}

	// ceil(7/3) = 3 batches, then the call doc.
	if got := len(calls.batches["c1"]); got != 3 {
		t.Errorf("batches = %d, want 3", got)
	}
	total := 0
	for _, b := range calls.batches["c1"] {
		if len(b) > 3 {
			t.Errorf("batch of %d exceeds page size 3", len(b))
		}
		total += len(b)
	}
	if total != 7 {
		t.Errorf("deleted %d candidates, want 7", total)
	}
	if len(calls.deleted) != 1 || calls.deleted[0] != "c1" {
		t.Errorf("call doc deletions = %v", calls.deleted)
	}
}

func TestCleanupVoiceCallEmptyIce(t *testing.T) {
	calls := newMockCallRepo(3)

	s := NewSweeper(&mockUserRepo{}, &mockOrderRepo{}, calls, &mockAccountDeleter{}, testLogger(t))
	s.pageSize = 3

	if err := s.CleanupVoiceCall(context.Background(), "c1"); err != nil {
		t.Fatalf("CleanupVoiceCall: %v", err)
	}
	if len(calls.batches["c1"]) != 0 {
		t.Errorf("batches = %v, want none", calls.batches["c1"])
	}
	if len(calls.deleted) != 1 {
		t.Errorf("call doc deletions = %v", calls.deleted)
	}
}

func TestSweepScheduledAccounts(t *testing.T) {
	now := time.Now()
	users := &mockUserRepo{scheduled: []*models.User{
		{UID: "u1", DeletedAt: &now, ScheduledDeletionAt: &now},
		{UID: "u2", ScheduledDeletionAt: &now}, // deletedAt missing, must survive
		{UID: "u3", DeletedAt: &now, ScheduledDeletionAt: &now},
	}}
	accounts := &mockAccountDeleter{fail: map[string]bool{"u3": true}}

	s := NewSweeper(users, &mockOrderRepo{}, newMockCallRepo(3), accounts, testLogger(t))

	if err := s.SweepScheduledAccounts(context.Background()); err != nil {
		t.Fatalf("SweepScheduledAccounts: %v", err)
	}

	if len(users.deleted) != 1 || users.deleted[0] != "u1" {
		t.Errorf("profile deletions = %v, want only u1", users.deleted)
	}
	// u3's auth delete failed, so its profile stays for the next pass.
	if len(accounts.deleted) != 1 || accounts.deleted[0] != "u1" {
		t.Errorf("auth deletions = %v, want only u1", accounts.deleted)
	}
}

func TestPurgeCompletedOrderChatsKeepsOrderDocs(t *testing.T) {
	orders := &mockOrderRepo{
		completed: []string{"o1", "o2"},
		messages: map[string][]string{
			"o1": ids(5),
			"o2": {},
		},
		pageSize: 2,
	}

	s := NewSweeper(&mockUserRepo{}, orders, newMockCallRepo(2), &mockAccountDeleter{}, testLogger(t))
	s.pageSize = 2

	if err := s.PurgeCompletedOrderChats(context.Background()); err != nil {
		t.Fatalf("PurgeCompletedOrderChats: %v", err)
	}

	if len(orders.deleted["o1"]) != 5 {
		t.Errorf("o1 deleted %d messages, want 5", len(orders.deleted["o1"]))
	}
	if len(orders.deleted["o2"]) != 0 {
		t.Errorf("o2 deleted %d messages, want 0", len(orders.deleted["o2"]))
	}
}

func TestSweepStaleVoiceCallsIsolatesFailures(t *testing.T) {
	calls := newMockCallRepo(3)
	calls.stale = []string{"c1", "c2"}
	calls.ice["c1"] = ids(2)
	calls.ice["c2"] = ids(4)

	s := NewSweeper(&mockUserRepo{}, &mockOrderRepo{}, calls, &mockAccountDeleter{}, testLogger(t))
	s.pageSize = 3

	if err := s.SweepStaleVoiceCalls(context.Background()); err != nil {
		t.Fatalf("SweepStaleVoiceCalls: %v", err)
	}
	if len(calls.deleted) != 2 {
		t.Errorf("deleted calls = %v, want both", calls.deleted)
	}
}
