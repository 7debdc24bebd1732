package otp

import (
	"context"
	"errors"
	"fmt"

	"traka/internal/apperrors"
	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
	"traka/pkg/logger"
	"traka/pkg/mailer"
)

// TokenMinter mints a sign-in token for a recovered account. The Firebase
// auth client satisfies it directly.
type TokenMinter interface {
	CustomToken(ctx context.Context, uid string) (string, error)
}

// Service implements the three email-code flows: signup, forgot-password
// and first-login device verification. Signup mail goes out through the
// change feed when the code document is created; the other two flows mail
// inline and fail the request when the mail does.
type Service struct {
	store  *Store
	users  interfaces.UserRepository
	mailer mailer.Mailer
	tokens TokenMinter
	logger *logger.Logger
}

func NewService(store *Store, users interfaces.UserRepository, m mailer.Mailer, tokens TokenMinter, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		users:  users,
		mailer: m,
		tokens: tokens,
		logger: log,
	}
}

// RequestSignupCode issues a code for a not-yet-registered email. The email
// itself is sent by the feed handler watching the signup code collection.
func (s *Service) RequestSignupCode(ctx context.Context, email string) error {
	normalized, err := normalizeEmailArg(email)
	if err != nil {
		return err
	}

	_, err = s.users.FindByEmail(ctx, normalized)
	if err == nil {
		return apperrors.AlreadyExists("Email sudah terdaftar. Gunakan email lainnya yang aktif.")
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return apperrors.Internal("Gagal memeriksa email.", err)
	}

	_, err = s.store.Issue(ctx, models.CodeScopeSignup, normalized, Payload{})
	return err
}

// RequestForgotPasswordCode issues a code for a registered email and mails
// it immediately.
func (s *Service) RequestForgotPasswordCode(ctx context.Context, email string) error {
	normalized, err := normalizeEmailArg(email)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Email tidak terdaftar.")
		}
		return apperrors.Internal("Gagal memeriksa email.", err)
	}

	code, err := s.store.Issue(ctx, models.CodeScopeForgotPassword, normalized, Payload{UID: user.UID})
	if err != nil {
		return err
	}

	msg := mailer.ForgotPasswordCodeEmail(code.Code)
	if err := s.mailer.Send(ctx, normalized, msg.Subject, msg.Text, msg.HTML); err != nil {
		s.logger.WithError(err).Error("Failed to send forgot password email")
		return apperrors.Internal("Gagal mengirim email. Coba lagi.", err)
	}

	return nil
}

// RequestLoginCode issues a device-verification code for an authenticated
// user and mails it. The supplied email must match the account.
func (s *Service) RequestLoginCode(ctx context.Context, uid, email string) error {
	normalized, err := normalizeEmailArg(email)
	if err != nil {
		return err
	}

	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("User tidak ditemukan.")
		}
		return apperrors.Internal("Gagal memuat user.", err)
	}
	if utils.NormalizeEmail(user.Email) != normalized {
		return apperrors.PermissionDenied("Email tidak sesuai dengan akun Anda.")
	}

	code, err := s.store.Issue(ctx, models.CodeScopeLogin, uid, Payload{Email: normalized})
	if err != nil {
		return err
	}

	msg := mailer.LoginCodeEmail(code.Code)
	if err := s.mailer.Send(ctx, normalized, msg.Subject, msg.Text, msg.HTML); err != nil {
		s.logger.WithError(err).WithUID(uid).Error("Failed to send login verification email")
		return apperrors.Internal("Gagal mengirim email. Coba lagi.", err)
	}

	return nil
}

// VerifySignupCode consumes a signup code for the email.
func (s *Service) VerifySignupCode(ctx context.Context, email, code string) error {
	normalized, err := normalizeEmailArg(email)
	if err != nil {
		return err
	}
	if code == "" {
		return apperrors.InvalidArgument("Kode wajib diisi.")
	}
	_, err = s.store.Validate(ctx, models.CodeScopeSignup, normalized, code)
	return err
}

// VerifyLoginCode consumes the device-verification code for the uid.
func (s *Service) VerifyLoginCode(ctx context.Context, uid, code string) error {
	if code == "" {
		return apperrors.InvalidArgument("Kode wajib diisi.")
	}
	_, err := s.store.Validate(ctx, models.CodeScopeLogin, uid, code)
	return err
}

// VerifyForgotPasswordCode consumes the code and returns a custom sign-in
// token for the account it was issued to.
func (s *Service) VerifyForgotPasswordCode(ctx context.Context, email, code string) (string, error) {
	normalized, err := normalizeEmailArg(email)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", apperrors.InvalidArgument("Email dan kode wajib diisi.")
	}

	record, err := s.store.Validate(ctx, models.CodeScopeForgotPassword, normalized, code)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.CustomToken(ctx, record.UID)
	if err != nil {
		return "", apperrors.Internal("Gagal membuat token masuk.", fmt.Errorf("failed to mint custom token: %w", err))
	}

	return token, nil
}

// HandleSignupCodeCreated mails a freshly written signup code. It runs off
// the change feed, so failures are logged and swallowed; the user can always
// request a re-send.
func (s *Service) HandleSignupCodeCreated(ctx context.Context, email string, code *models.VerificationCode) error {
	msg := mailer.SignupCodeEmail(code.Code)
	if err := s.mailer.Send(ctx, email, msg.Subject, msg.Text, msg.HTML); err != nil {
		s.logger.WithError(err).WithField("email", utils.MaskEmail(email)).Error("Failed to send signup code email")
	}
	return nil
}

func normalizeEmailArg(email string) (string, error) {
	if email == "" {
		return "", apperrors.InvalidArgument("Email wajib diisi.")
	}
	normalized := utils.NormalizeEmail(email)
	if !utils.IsValidEmail(normalized) {
		return "", apperrors.InvalidArgument("Format email tidak valid.")
	}
	return normalized, nil
}
