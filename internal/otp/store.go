package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"traka/internal/apperrors"
	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
)

// Store is the single-use code state machine over the per-scope code
// collections. Issue replaces any outstanding code; Validate consumes on
// success, deletes on expiry, and leaves the record alone on a wrong guess
// so the user can retry until the window closes.
type Store struct {
	codes    interfaces.CodeRepository
	expiry   time.Duration
	now      func() time.Time
	generate func() string
}

func NewStore(codes interfaces.CodeRepository, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = utils.OTPExpiry
	}
	return &Store{
		codes:    codes,
		expiry:   expiry,
		now:      time.Now,
		generate: utils.GenerateOTPCode,
	}
}

// Payload carries the scope-specific fields stored with a code.
type Payload struct {
	UID   string
	Email string
}

// Issue mints a fresh code at scope/key, replacing any prior one. The
// replace resets the expiry window, and for the signup scope it re-fires
// the creation trigger that emails the code.
func (s *Store) Issue(ctx context.Context, scope models.CodeScope, key string, payload Payload) (*models.VerificationCode, error) {
	code := &models.VerificationCode{
		Code:      s.generate(),
		ExpiresAt: s.now().Add(s.expiry),
		UID:       payload.UID,
		Email:     payload.Email,
	}

	if err := s.codes.Replace(ctx, scope, key, code); err != nil {
		return nil, apperrors.Internal("Gagal membuat kode verifikasi.", fmt.Errorf("failed to issue code: %w", err))
	}

	return code, nil
}

// Validate checks a supplied code against the record at scope/key.
func (s *Store) Validate(ctx context.Context, scope models.CodeScope, key, supplied string) (*models.VerificationCode, error) {
	record, err := s.codes.Get(ctx, scope, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("Kode tidak ditemukan atau sudah dipakai. Kirim ulang kode.")
		}
		return nil, apperrors.Internal("Gagal memeriksa kode verifikasi.", err)
	}

	if strings.TrimSpace(supplied) != record.Code {
		return nil, apperrors.InvalidArgument("Kode verifikasi tidak sesuai.")
	}

	if record.Expired(s.now()) {
		if err := s.codes.Delete(ctx, scope, key); err != nil {
			return nil, apperrors.Internal("Gagal menghapus kode kedaluwarsa.", err)
		}
		return nil, apperrors.FailedPrecondition("Kode sudah kedaluwarsa. Kirim ulang kode.")
	}

	if err := s.codes.Delete(ctx, scope, key); err != nil {
		return nil, apperrors.Internal("Gagal menandai kode terpakai.", err)
	}

	return record, nil
}
