package triggers

import (
	"context"
	"testing"
	"time"

	"traka/internal/dispatch"
	"traka/internal/feed"
	"traka/internal/ledger"
	"traka/internal/models"
	"traka/internal/otp"
	"traka/internal/repositories/interfaces"
	"traka/internal/retention"
	"traka/internal/utils"
	"traka/pkg/billing"
	"traka/pkg/logger"
	"traka/pkg/push"
)

// docSnapshot is an in-memory stand-in for a Firestore document snapshot.
type docSnapshot struct {
	order *models.Order
	msg   *models.ChatMessage
	code  *models.VerificationCode
	call  *models.VoiceCall
}

func (s *docSnapshot) Exists() bool {
	return s != nil && (s.order != nil || s.msg != nil || s.code != nil || s.call != nil)
}

func (s *docSnapshot) DataTo(v interface{}) error {
	switch dst := v.(type) {
	case *models.Order:
		*dst = *s.order
	case *models.ChatMessage:
		*dst = *s.msg
	case *models.VerificationCode:
		*dst = *s.code
	case *models.VoiceCall:
		*dst = *s.call
	}
	return nil
}

type mockUserRepo struct {
	interfaces.UserRepository
	users      map[string]*models.User
	increments map[string]int64
}

func (m *mockUserRepo) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	if u, ok := m.users[uid]; ok {
		return u, nil
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, interfaces.ErrNotFound
}

func (m *mockUserRepo) IncrementTotalServed(ctx context.Context, uid string, n int64) error {
	m.increments[uid] += n
	return nil
}

type mockOrderRepo struct {
	interfaces.OrderRepository
	orders map[string]*models.Order
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockOrderRepo) RecordChatPreview(ctx context.Context, orderID, senderUID, preview string, markNotified bool) error {
	return nil
}

type mockProvider struct {
	sent []*push.NotificationRequest
}

func (m *mockProvider) SendNotification(ctx context.Context, req *push.NotificationRequest) (*push.NotificationResponse, error) {
	m.sent = append(m.sent, req)
	return &push.NotificationResponse{Success: true}, nil
}

type mockCodeRepo struct {
	interfaces.CodeRepository
}

type mockVerifier struct{}

func (mockVerifier) Verify(ctx context.Context, p *billing.Purchase) (bool, error) { return true, nil }

type mockMailer struct {
	sent []string
}

func (m *mockMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	m.sent = append(m.sent, to)
	return nil
}

type mockMinter struct{}

func (mockMinter) CustomToken(ctx context.Context, uid string) (string, error) { return "tok", nil }

type mockCallRepo struct {
	interfaces.VoiceCallRepository
	deleted []string
}

func (m *mockCallRepo) IceCursor(callID string, pageSize int) interfaces.PageCursor {
	return emptyCursor{}
}

func (m *mockCallRepo) Delete(ctx context.Context, callID string) error {
	m.deleted = append(m.deleted, callID)
	return nil
}

type emptyCursor struct{}

func (emptyCursor) NextPage(ctx context.Context) ([]string, error) { return nil, nil }
func (emptyCursor) HasMore() bool                                  { return false }

type fixture struct {
	users    *mockUserRepo
	orders   *mockOrderRepo
	provider *mockProvider
	mailer   *mockMailer
	calls    *mockCallRepo
	router   *feed.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	f := &fixture{
		users:    &mockUserRepo{users: make(map[string]*models.User), increments: make(map[string]int64)},
		orders:   &mockOrderRepo{orders: make(map[string]*models.Order)},
		provider: &mockProvider{},
		mailer:   &mockMailer{},
		calls:    &mockCallRepo{},
	}

	dispatcher := dispatch.NewDispatcher(f.users, f.orders, f.provider, log)
	accountant := ledger.NewAccountant(f.users, f.orders, nil, nil, mockVerifier{}, "id.traka.app", log)
	otpService := otp.NewService(otp.NewStore(&mockCodeRepo{}, utils.OTPExpiry), f.users, f.mailer, mockMinter{}, log)
	sweeper := retention.NewSweeper(f.users, f.orders, f.calls, nil, log)

	f.router = feed.NewRouter(log)
	New(dispatcher, accountant, otpService, sweeper, log).Register(f.router)
	return f
}

func TestAgreementUpdateNotifiesOnceAndReplaySilent(t *testing.T) {
	f := newFixture(t)
	f.users.users["d1"] = &models.User{UID: "d1", FCMToken: "tok-d"}

	before := &docSnapshot{order: &models.Order{Status: models.OrderStatusPending, DriverUID: "d1", PassengerName: "Sari"}}
	after := &docSnapshot{order: &models.Order{Status: models.OrderStatusAgreed, DriverUID: "d1", PassengerAgreed: true, PassengerName: "Sari"}}

	f.router.Dispatch(context.Background(), &feed.Event{
		Path: "orders/o1", ID: "o1", Kind: feed.KindUpdate, Before: before, After: after,
	})
	if len(f.provider.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.provider.sent))
	}

	// A later write on the already-agreed order must stay silent.
	later := &docSnapshot{order: &models.Order{Status: models.OrderStatusAgreed, DriverUID: "d1", PassengerAgreed: true, PassengerName: "Sari", LastMessageText: "x"}}
	f.router.Dispatch(context.Background(), &feed.Event{
		Path: "orders/o1", ID: "o1", Kind: feed.KindUpdate, Before: after, After: later,
	})
	if len(f.provider.sent) != 1 {
		t.Errorf("sent = %d after unrelated write, want still 1", len(f.provider.sent))
	}
}

func TestPassengerScanCreditsDriverContribution(t *testing.T) {
	f := newFixture(t)
	f.users.users["d1"] = &models.User{UID: "d1", FCMToken: "tok-d"}
	now := time.Now()

	base := models.Order{Status: models.OrderStatusActive, OrderType: models.OrderTypeTravel, DriverUID: "d1", PassengerUID: "p1", JumlahKerabat: 1}
	afterOrder := base
	afterOrder.PassengerScannedAt = &now

	f.router.Dispatch(context.Background(), &feed.Event{
		Path:   "orders/o1",
		ID:     "o1",
		Kind:   feed.KindUpdate,
		Before: &docSnapshot{order: &base},
		After:  &docSnapshot{order: &afterOrder},
	})

	if f.users.increments["d1"] != 2 {
		t.Errorf("driver credit = %d, want 2 (passenger + kerabat)", f.users.increments["d1"])
	}
	if len(f.provider.sent) != 1 {
		t.Errorf("sent = %d, want arrival notification", len(f.provider.sent))
	}
}

func TestChatMessageCreateRoutesThroughSubcollectionPattern(t *testing.T) {
	f := newFixture(t)
	f.users.users["d1"] = &models.User{UID: "d1", FCMToken: "tok-d"}
	f.orders.orders["o1"] = &models.Order{ID: "o1", DriverUID: "d1", PassengerUID: "p1", PassengerName: "Sari"}

	f.router.Dispatch(context.Background(), &feed.Event{
		Path: "orders/o1/messages/m1",
		ID:   "m1",
		Kind: feed.KindCreate,
		After: &docSnapshot{msg: &models.ChatMessage{
			SenderUID: "p1", Type: models.MessageTypeText, Text: "halo",
		}},
	})

	if len(f.provider.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.provider.sent))
	}
	if f.provider.sent[0].Data["type"] != "chat" {
		t.Errorf("data = %v", f.provider.sent[0].Data)
	}
}

func TestSignupCodeCreateSendsEmail(t *testing.T) {
	f := newFixture(t)

	f.router.Dispatch(context.Background(), &feed.Event{
		Path: "verification_codes/new@b.com",
		ID:   "new@b.com",
		Kind: feed.KindCreate,
		After: &docSnapshot{code: &models.VerificationCode{
			Code:      "123456",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}},
	})

	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "new@b.com" {
		t.Errorf("mails = %v, want one to new@b.com", f.mailer.sent)
	}
}

func TestVoiceCallTerminalUpdateTearsDownCall(t *testing.T) {
	f := newFixture(t)

	f.router.Dispatch(context.Background(), &feed.Event{
		Path:   "voice_calls/o1",
		ID:     "o1",
		Kind:   feed.KindUpdate,
		Before: &docSnapshot{call: &models.VoiceCall{Status: models.VoiceCallStatusActive}},
		After:  &docSnapshot{call: &models.VoiceCall{Status: models.VoiceCallStatusEnded}},
	})

	if len(f.calls.deleted) != 1 || f.calls.deleted[0] != "o1" {
		t.Errorf("deleted calls = %v, want o1", f.calls.deleted)
	}

	// Terminal-to-terminal replays must not re-run the teardown.
	f.router.Dispatch(context.Background(), &feed.Event{
		Path:   "voice_calls/o1",
		ID:     "o1",
		Kind:   feed.KindUpdate,
		Before: &docSnapshot{call: &models.VoiceCall{Status: models.VoiceCallStatusEnded}},
		After:  &docSnapshot{call: &models.VoiceCall{Status: models.VoiceCallStatusRejected}},
	})
	if len(f.calls.deleted) != 1 {
		t.Errorf("deleted calls = %v, want still one entry", f.calls.deleted)
	}
}
