package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"traka/internal/apperrors"
	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
)

type mockCodeRepo struct {
	records map[string]*models.VerificationCode
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{records: make(map[string]*models.VerificationCode)}
}

func codeKey(scope models.CodeScope, key string) string {
	return string(scope) + "/" + key
}

func (m *mockCodeRepo) Get(ctx context.Context, scope models.CodeScope, key string) (*models.VerificationCode, error) {
	if rec, ok := m.records[codeKey(scope, key)]; ok {
		return rec, nil
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockCodeRepo) Replace(ctx context.Context, scope models.CodeScope, key string, code *models.VerificationCode) error {
	m.records[codeKey(scope, key)] = code
	return nil
}

func (m *mockCodeRepo) Delete(ctx context.Context, scope models.CodeScope, key string) error {
	delete(m.records, codeKey(scope, key))
	return nil
}

func newTestStore(repo *mockCodeRepo, now time.Time) *Store {
	s := NewStore(repo, utils.OTPExpiry)
	s.now = func() time.Time { return now }
	s.generate = func() string { return "123456" }
	return s
}

func TestNewStoreHonorsConfiguredExpiry(t *testing.T) {
	repo := newMockCodeRepo()
	now := time.Now()
	s := NewStore(repo, time.Minute)
	s.now = func() time.Time { return now }
	s.generate = func() string { return "123456" }

	rec, err := s.Issue(context.Background(), models.CodeScopeSignup, "a@b.com", Payload{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got := rec.ExpiresAt.Sub(now); got != time.Minute {
		t.Errorf("expiry window = %v, want 1m", got)
	}

	if d := NewStore(repo, 0); d.expiry != utils.OTPExpiry {
		t.Errorf("zero expiry fell back to %v, want %v", d.expiry, utils.OTPExpiry)
	}
}

func TestIssueReplacesPriorCode(t *testing.T) {
	repo := newMockCodeRepo()
	now := time.Now()
	s := newTestStore(repo, now)

	first, err := s.Issue(context.Background(), models.CodeScopeSignup, "a@b.com", Payload{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s.generate = func() string { return "654321" }
	second, err := s.Issue(context.Background(), models.CodeScopeSignup, "a@b.com", Payload{})
	if err != nil {
		t.Fatalf("Issue again: %v", err)
	}
	if first.Code == second.Code {
		t.Fatal("second issue should replace the code")
	}

	// The old code is gone; only the latest validates.
	if _, err := s.Validate(context.Background(), models.CodeScopeSignup, "a@b.com", "123456"); apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Errorf("stale code: got %v, want invalid argument", err)
	}
	if _, err := s.Validate(context.Background(), models.CodeScopeSignup, "a@b.com", "654321"); err != nil {
		t.Errorf("fresh code: %v", err)
	}
}

func TestValidateMissingCode(t *testing.T) {
	s := newTestStore(newMockCodeRepo(), time.Now())

	_, err := s.Validate(context.Background(), models.CodeScopeLogin, "uid-1", "123456")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("got %v, want not found", err)
	}
}

func TestValidateMismatchKeepsRecord(t *testing.T) {
	repo := newMockCodeRepo()
	now := time.Now()
	s := newTestStore(repo, now)

	if _, err := s.Issue(context.Background(), models.CodeScopeLogin, "uid-1", Payload{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err := s.Validate(context.Background(), models.CodeScopeLogin, "uid-1", "000000")
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("got %v, want invalid argument", err)
	}

	// A wrong guess must not burn the code.
	if _, err := s.Validate(context.Background(), models.CodeScopeLogin, "uid-1", "123456"); err != nil {
		t.Errorf("correct code after wrong guess: %v", err)
	}
}

func TestValidateExpiredDeletesRecord(t *testing.T) {
	repo := newMockCodeRepo()
	now := time.Now()
	s := newTestStore(repo, now)

	if _, err := s.Issue(context.Background(), models.CodeScopeLogin, "uid-1", Payload{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s.now = func() time.Time { return now.Add(11 * time.Minute) }

	_, err := s.Validate(context.Background(), models.CodeScopeLogin, "uid-1", "123456")
	if apperrors.CodeOf(err) != apperrors.CodeFailedPrecondition {
		t.Fatalf("got %v, want failed precondition", err)
	}

	// Expiry consumed the record.
	_, err = s.Validate(context.Background(), models.CodeScopeLogin, "uid-1", "123456")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("got %v, want not found after expiry delete", err)
	}
}

func TestValidateSuccessIsSingleUse(t *testing.T) {
	repo := newMockCodeRepo()
	now := time.Now()
	s := newTestStore(repo, now)

	if _, err := s.Issue(context.Background(), models.CodeScopeForgotPassword, "a@b.com", Payload{UID: "uid-9"}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	record, err := s.Validate(context.Background(), models.CodeScopeForgotPassword, "a@b.com", "123456")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if record.UID != "uid-9" {
		t.Errorf("record uid = %q, want uid-9", record.UID)
	}

	_, err = s.Validate(context.Background(), models.CodeScopeForgotPassword, "a@b.com", "123456")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Errorf("second use: got %v, want not found", err)
	}
}

func TestValidateMismatchBeatsExpiry(t *testing.T) {
	repo := newMockCodeRepo()
	now := time.Now()
	s := newTestStore(repo, now)

	if _, err := s.Issue(context.Background(), models.CodeScopeLogin, "uid-1", Payload{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	s.now = func() time.Time { return now.Add(time.Hour) }

	// Wrong code on an expired record reports the mismatch and keeps it.
	_, err := s.Validate(context.Background(), models.CodeScopeLogin, "uid-1", "000000")
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("got %v, want invalid argument", err)
	}
	if _, getErr := repo.Get(context.Background(), models.CodeScopeLogin, "uid-1"); errors.Is(getErr, interfaces.ErrNotFound) {
		t.Error("record should survive a mismatch even when expired")
	}
}
