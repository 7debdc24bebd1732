package ledger

import (
	"context"
	"testing"

	"traka/internal/apperrors"
	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/pkg/billing"
	"traka/pkg/logger"
)

type mockVerifier struct {
	ok    bool
	err   error
	calls int
	last  *billing.Purchase
}

func (m *mockVerifier) Verify(ctx context.Context, purchase *billing.Purchase) (bool, error) {
	m.calls++
	m.last = purchase
	return m.ok, m.err
}

type mockUserRepo struct {
	interfaces.UserRepository
	users       map[string]*models.User
	increments  map[string]int64
	paidUpTo    map[string]int64
	exemptUIDs  []string
	exemptFails map[string]bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:       make(map[string]*models.User),
		increments:  make(map[string]int64),
		paidUpTo:    make(map[string]int64),
		exemptFails: make(map[string]bool),
	}
}

func (m *mockUserRepo) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	if u, ok := m.users[uid]; ok {
		return u, nil
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockUserRepo) IncrementTotalServed(ctx context.Context, uid string, n int64) error {
	m.increments[uid] += n
	return nil
}

func (m *mockUserRepo) SetContributionPaid(ctx context.Context, uid string, paidUpToCount int64) error {
	m.paidUpTo[uid] = paidUpToCount
	return nil
}

func (m *mockUserRepo) SetContributionExempt(ctx context.Context, uid string, value int64) error {
	if m.exemptFails[uid] {
		return interfaces.ErrNotFound
	}
	m.exemptUIDs = append(m.exemptUIDs, uid)
	return nil
}

type markCall struct {
	orderID string
	payer   models.LacakBarangPayer
}

type mockOrderRepo struct {
	interfaces.OrderRepository
	orders           map[string]*models.Order
	trackPaid        []string
	lacakBarangCalls []markCall
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockOrderRepo) MarkTrackDriverPaid(ctx context.Context, orderID string) error {
	m.trackPaid = append(m.trackPaid, orderID)
	return nil
}

func (m *mockOrderRepo) MarkLacakBarangPaid(ctx context.Context, orderID string, payer models.LacakBarangPayer) error {
	m.lacakBarangCalls = append(m.lacakBarangCalls, markCall{orderID, payer})
	return nil
}

type settlement struct {
	uid, recordID    string
	newFee, newCount int64
}

type mockViolationRepo struct {
	record      *models.ViolationRecord
	settlements []settlement
}

func (m *mockViolationRepo) OldestUnpaid(ctx context.Context, userID string, vtype models.ViolationType) (*models.ViolationRecord, error) {
	if m.record == nil {
		return nil, interfaces.ErrNotFound
	}
	return m.record, nil
}

func (m *mockViolationRepo) ApplySettlement(ctx context.Context, uid, recordID string, newFee, newCount int64) error {
	m.settlements = append(m.settlements, settlement{uid, recordID, newFee, newCount})
	return nil
}

type mockAppConfigRepo struct {
	uids []string
}

func (m *mockAppConfigRepo) ContributionExemptDrivers(ctx context.Context) ([]string, error) {
	return m.uids, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return log
}

type fixture struct {
	users      *mockUserRepo
	orders     *mockOrderRepo
	violations *mockViolationRepo
	appConfig  *mockAppConfigRepo
	verifier   *mockVerifier
	accountant *Accountant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:      newMockUserRepo(),
		orders:     &mockOrderRepo{orders: make(map[string]*models.Order)},
		violations: &mockViolationRepo{},
		appConfig:  &mockAppConfigRepo{},
		verifier:   &mockVerifier{ok: true},
	}
	f.accountant = NewAccountant(f.users, f.orders, f.violations, f.appConfig, f.verifier, "id.traka.app", testLogger(t))
	return f
}

func TestRecordPassengerDropoff(t *testing.T) {
	f := newFixture(t)

	order := &models.Order{ID: "o1", OrderType: models.OrderTypeTravel, DriverUID: "d1", JumlahKerabat: 2}
	if err := f.accountant.RecordPassengerDropoff(context.Background(), order); err != nil {
		t.Fatalf("RecordPassengerDropoff: %v", err)
	}
	if f.users.increments["d1"] != 3 {
		t.Errorf("increment = %d, want 3 (passenger + 2 kerabat)", f.users.increments["d1"])
	}
}

func TestRecordPassengerDropoffSkipsDelivery(t *testing.T) {
	f := newFixture(t)

	order := &models.Order{ID: "o1", OrderType: models.OrderTypeKirimBarang, DriverUID: "d1"}
	if err := f.accountant.RecordPassengerDropoff(context.Background(), order); err != nil {
		t.Fatalf("RecordPassengerDropoff: %v", err)
	}
	if len(f.users.increments) != 0 {
		t.Errorf("delivery order must not contribute, got %v", f.users.increments)
	}
}

func TestRecordPassengerDropoffClampsNegativeKerabat(t *testing.T) {
	f := newFixture(t)

	order := &models.Order{ID: "o1", OrderType: models.OrderTypeTravel, DriverUID: "d1", JumlahKerabat: -5}
	if err := f.accountant.RecordPassengerDropoff(context.Background(), order); err != nil {
		t.Fatalf("RecordPassengerDropoff: %v", err)
	}
	if f.users.increments["d1"] != 1 {
		t.Errorf("increment = %d, want 1", f.users.increments["d1"])
	}
}

func TestConfirmContributionPaymentSnapshotsServedCount(t *testing.T) {
	f := newFixture(t)
	f.users.users["d1"] = &models.User{UID: "d1", TotalPenumpangServed: 17}

	paidUpTo, err := f.accountant.ConfirmContributionPayment(context.Background(), "d1", "tok", "o1", "")
	if err != nil {
		t.Fatalf("ConfirmContributionPayment: %v", err)
	}
	if paidUpTo != 17 {
		t.Errorf("paidUpTo = %d, want 17", paidUpTo)
	}
	if f.users.paidUpTo["d1"] != 17 {
		t.Errorf("stored watermark = %d, want 17", f.users.paidUpTo["d1"])
	}
	if f.verifier.calls != 1 || f.verifier.last.ProductID != "traka_contribution_once" {
		t.Errorf("verifier calls = %d, last = %+v", f.verifier.calls, f.verifier.last)
	}
}

func TestConfirmContributionPaymentRejectsInvalidPurchase(t *testing.T) {
	f := newFixture(t)
	f.users.users["d1"] = &models.User{UID: "d1", TotalPenumpangServed: 17}
	f.verifier.ok = false

	_, err := f.accountant.ConfirmContributionPayment(context.Background(), "d1", "tok", "o1", "")
	if apperrors.CodeOf(err) != apperrors.CodeFailedPrecondition {
		t.Fatalf("got %v, want failed precondition", err)
	}
	if len(f.users.paidUpTo) != 0 {
		t.Error("watermark must not move on a rejected purchase")
	}
}

func TestConfirmContributionPaymentRequiresToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.accountant.ConfirmContributionPayment(context.Background(), "d1", "", "o1", "")
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Errorf("got %v, want invalid argument", err)
	}
}

func TestConfirmTrackDriverPaymentChecksPassenger(t *testing.T) {
	f := newFixture(t)
	f.orders.orders["o1"] = &models.Order{ID: "o1", PassengerUID: "p1"}

	err := f.accountant.ConfirmTrackDriverPayment(context.Background(), "someone-else", "tok", "o1", "")
	if apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("got %v, want permission denied", err)
	}

	if err := f.accountant.ConfirmTrackDriverPayment(context.Background(), "p1", "tok", "o1", ""); err != nil {
		t.Fatalf("ConfirmTrackDriverPayment: %v", err)
	}
	if len(f.orders.trackPaid) != 1 || f.orders.trackPaid[0] != "o1" {
		t.Errorf("trackPaid = %v", f.orders.trackPaid)
	}
}

func TestConfirmLacakBarangPayment(t *testing.T) {
	f := newFixture(t)
	f.orders.orders["o1"] = &models.Order{
		ID:           "o1",
		OrderType:    models.OrderTypeKirimBarang,
		PassengerUID: "sender-1",
		ReceiverUID:  "receiver-1",
	}

	// Wrong payer type.
	err := f.accountant.ConfirmLacakBarangPayment(context.Background(), "sender-1", "tok", "o1", "kurir", "")
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("bad payer: got %v", err)
	}

	// Receiver paying but uid is the sender.
	err = f.accountant.ConfirmLacakBarangPayment(context.Background(), "sender-1", "tok", "o1", models.LacakBarangPayerReceiver, "")
	if apperrors.CodeOf(err) != apperrors.CodePermissionDenied {
		t.Fatalf("wrong party: got %v", err)
	}

	if err := f.accountant.ConfirmLacakBarangPayment(context.Background(), "receiver-1", "tok", "o1", models.LacakBarangPayerReceiver, ""); err != nil {
		t.Fatalf("ConfirmLacakBarangPayment: %v", err)
	}
	if len(f.orders.lacakBarangCalls) != 1 || f.orders.lacakBarangCalls[0].payer != models.LacakBarangPayerReceiver {
		t.Errorf("calls = %+v", f.orders.lacakBarangCalls)
	}
}

func TestConfirmLacakBarangPaymentRejectsTravelOrder(t *testing.T) {
	f := newFixture(t)
	f.orders.orders["o1"] = &models.Order{ID: "o1", OrderType: models.OrderTypeTravel, PassengerUID: "p1"}

	err := f.accountant.ConfirmLacakBarangPayment(context.Background(), "p1", "tok", "o1", models.LacakBarangPayerPassenger, "")
	if apperrors.CodeOf(err) != apperrors.CodeFailedPrecondition {
		t.Errorf("got %v, want failed precondition", err)
	}
}

func TestSettleViolationPayment(t *testing.T) {
	f := newFixture(t)
	f.users.users["p1"] = &models.User{UID: "p1", OutstandingViolationFee: 10000, OutstandingViolationCount: 2}
	f.violations.record = &models.ViolationRecord{ID: "v1", UserID: "p1", Amount: 5000}

	result, err := f.accountant.SettleViolationPayment(context.Background(), "p1", "tok", "")
	if err != nil {
		t.Fatalf("SettleViolationPayment: %v", err)
	}
	if result.DeductedAmount != 5000 || result.RemainingOutstanding != 5000 {
		t.Errorf("result = %+v", result)
	}
	if len(f.violations.settlements) != 1 {
		t.Fatalf("settlements = %+v", f.violations.settlements)
	}
	s := f.violations.settlements[0]
	if s.recordID != "v1" || s.newFee != 5000 || s.newCount != 1 {
		t.Errorf("settlement = %+v", s)
	}
}

func TestSettleViolationPaymentFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	f.users.users["p1"] = &models.User{UID: "p1", OutstandingViolationFee: 3000, OutstandingViolationCount: 1}
	f.violations.record = &models.ViolationRecord{ID: "v1", UserID: "p1", Amount: 5000}

	result, err := f.accountant.SettleViolationPayment(context.Background(), "p1", "tok", "")
	if err != nil {
		t.Fatalf("SettleViolationPayment: %v", err)
	}
	// Deduct caps at the outstanding fee.
	if result.DeductedAmount != 3000 || result.RemainingOutstanding != 0 {
		t.Errorf("result = %+v", result)
	}
	s := f.violations.settlements[0]
	if s.newFee != 0 || s.newCount != 0 {
		t.Errorf("settlement = %+v", s)
	}
}

func TestSettleViolationPaymentNothingOutstanding(t *testing.T) {
	f := newFixture(t)
	f.users.users["p1"] = &models.User{UID: "p1"}

	_, err := f.accountant.SettleViolationPayment(context.Background(), "p1", "tok", "")
	if apperrors.CodeOf(err) != apperrors.CodeFailedPrecondition {
		t.Errorf("got %v, want failed precondition", err)
	}
}

func TestSettleViolationPaymentInconsistentLedger(t *testing.T) {
	f := newFixture(t)
	f.users.users["p1"] = &models.User{UID: "p1", OutstandingViolationFee: 5000, OutstandingViolationCount: 1}
	// No unpaid record despite the positive outstanding fee.

	_, err := f.accountant.SettleViolationPayment(context.Background(), "p1", "tok", "")
	if apperrors.CodeOf(err) != apperrors.CodeFailedPrecondition {
		t.Errorf("got %v, want failed precondition", err)
	}
	if len(f.violations.settlements) != 0 {
		t.Error("no settlement should be written")
	}
}

func TestRunExemptionSweepSkipsFailures(t *testing.T) {
	f := newFixture(t)
	f.appConfig.uids = []string{"d1", "", "d2", "d3"}
	f.users.exemptFails["d2"] = true

	updated, err := f.accountant.RunExemptionSweep(context.Background())
	if err != nil {
		t.Fatalf("RunExemptionSweep: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	if len(f.users.exemptUIDs) != 2 {
		t.Errorf("exempted = %v", f.users.exemptUIDs)
	}
}

func TestRunExemptionSweepEmptyList(t *testing.T) {
	f := newFixture(t)

	updated, err := f.accountant.RunExemptionSweep(context.Background())
	if err != nil || updated != 0 {
		t.Errorf("got (%d, %v), want (0, nil)", updated, err)
	}
}
