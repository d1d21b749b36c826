package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/smtp"
	"github.com/marketplace-api/internal/infrastructure/sns"
	pkgidentity "github.com/marketplace-api/internal/pkg/identity"
)

// Policy carries the deployment-configured OTP knobs.
type Policy struct {
	Digits         int
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
	// DevCode, when non-empty, replaces the random code (development only).
	DevCode string
}

type SendInput struct {
	Identity string `json:"identity" validate:"required"`
	Role     string `json:"-"`
	Purpose  string `json:"purpose" validate:"required"`
}

type VerifyInput struct {
	Identity string
	Role     string
	Purpose  string
	Code     string
}

type Service interface {
	// Send issues a fresh code for (identity, role, purpose) and dispatches it
	// out-of-band. A fresh send replaces any pending code for the same triple.
	Send(ctx context.Context, in SendInput) error
	// Verify consumes the pending code. The record is single-use: success
	// deletes it, each mismatch burns one attempt.
	Verify(ctx context.Context, in VerifyInput) error
}

type otpStore interface {
	Put(ctx context.Context, o *domain.OTP) error
	Get(ctx context.Context, identityKey, purpose string) (*domain.OTP, error)
	DecrementAttempts(ctx context.Context, identityKey, purpose string) error
	Delete(ctx context.Context, identityKey, purpose string) error
}

type accountStore interface {
	GetByPhone(ctx context.Context, role, phone string) (*domain.Account, error)
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
}

type service struct {
	otps      otpStore
	accounts  accountStore
	mailer    smtp.Mailer
	smsSender sns.SMSSender
	policy    Policy
}

type ServiceDeps struct {
	OTPRepo     otpStore
	AccountRepo accountStore
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	Policy      Policy
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otps:      deps.OTPRepo,
		accounts:  deps.AccountRepo,
		mailer:    deps.Mailer,
		smsSender: deps.SMSSender,
		policy:    deps.Policy,
	}
}

func (s *service) Send(ctx context.Context, in SendInput) error {
	if !domain.ValidRole(in.Role) {
		return fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrBadRequest)
	}
	if !domain.ValidPurpose(in.Purpose) {
		return fmt.Errorf("unknown purpose %q: %w", in.Purpose, domain.ErrBadRequest)
	}
	kind, norm, err := pkgidentity.Classify(in.Identity)
	if err != nil {
		return err
	}

	exists := s.identityExists(ctx, kind, in.Role, norm)
	if in.Purpose == domain.PurposeRegister {
		if exists {
			return fmt.Errorf("identity already registered for role %s: %w", in.Role, domain.ErrDuplicateIdentity)
		}
	} else if !exists {
		return fmt.Errorf("no account for identity: %w", domain.ErrNotFound)
	}

	key := domain.IdentityKey(in.Role, norm)
	now := time.Now()
	if prev, err := s.otps.Get(ctx, key, in.Purpose); err == nil {
		if now.Unix()-prev.IssuedAt < int64(s.policy.ResendCooldown.Seconds()) {
			return fmt.Errorf("code requested too recently: %w", domain.ErrResendCooldown)
		}
	}

	code, err := s.generateCode()
	if err != nil {
		return err
	}
	rec := &domain.OTP{
		IdentityKey:       key,
		Purpose:           in.Purpose,
		Code:              code,
		ExpiresAt:         now.Add(s.policy.TTL).Unix(),
		AttemptsRemaining: s.policy.MaxAttempts,
		IssuedAt:          now.Unix(),
	}
	if err := s.otps.Put(ctx, rec); err != nil {
		return err
	}

	// The code travels out-of-band only; it never appears in an HTTP response.
	return s.dispatch(ctx, kind, norm, code)
}

func (s *service) Verify(ctx context.Context, in VerifyInput) error {
	if !domain.ValidRole(in.Role) {
		return fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrBadRequest)
	}
	if !domain.ValidPurpose(in.Purpose) {
		return fmt.Errorf("unknown purpose %q: %w", in.Purpose, domain.ErrBadRequest)
	}
	_, norm, err := pkgidentity.Classify(in.Identity)
	if err != nil {
		return err
	}
	key := domain.IdentityKey(in.Role, norm)

	rec, err := s.otps.Get(ctx, key, in.Purpose)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no pending code: %w", domain.ErrOTPExpired)
		}
		return err
	}
	if rec.AttemptsRemaining <= 0 {
		return fmt.Errorf("attempt budget exhausted, request a new code: %w", domain.ErrTooManyAttempts)
	}
	if rec.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("code expired: %w", domain.ErrOTPExpired)
	}
	if rec.Code != in.Code {
		if err := s.otps.DecrementAttempts(ctx, key, in.Purpose); err != nil {
			slog.Warn("failed to burn otp attempt", "identity_key", key, "err", err)
		}
		return fmt.Errorf("code does not match: %w", domain.ErrOTPMismatch)
	}
	if err := s.otps.Delete(ctx, key, in.Purpose); err != nil {
		slog.Warn("failed to delete consumed otp", "identity_key", key, "err", err)
	}
	return nil
}

func (s *service) identityExists(ctx context.Context, kind pkgidentity.Kind, role, norm string) bool {
	var err error
	if kind == pkgidentity.KindPhone {
		_, err = s.accounts.GetByPhone(ctx, role, norm)
	} else {
		_, err = s.accounts.GetByEmail(ctx, role, norm)
	}
	return err == nil
}

func (s *service) dispatch(ctx context.Context, kind pkgidentity.Kind, norm, code string) error {
	msg := "Your verification code: " + code
	if kind == pkgidentity.KindPhone {
		if s.smsSender == nil {
			return fmt.Errorf("sms sender not configured: %w", domain.ErrUnavailable)
		}
		if err := s.smsSender.SendSMS(ctx, norm, msg); err != nil {
			return fmt.Errorf("send sms: %w", domain.ErrUpstream)
		}
		return nil
	}
	if s.mailer == nil {
		return fmt.Errorf("mailer not configured: %w", domain.ErrUnavailable)
	}
	if err := s.mailer.SendEmail(norm, "Your verification code", msg); err != nil {
		return fmt.Errorf("send email: %w", domain.ErrUpstream)
	}
	return nil
}

func (s *service) generateCode() (string, error) {
	if s.policy.DevCode != "" {
		return s.policy.DevCode, nil
	}
	digits := s.policy.Digits
	if digits < 4 {
		digits = 6
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
